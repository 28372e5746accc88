package alert

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/voice-concierge/internal/models"
	"github.com/example/voice-concierge/internal/storage"
	"github.com/example/voice-concierge/internal/track"
)

// Fixed fixture around DFW gate B22 (32.8986, -97.0363). The reference
// passenger point at (32.8958, -97.0385) is 373m away, 7 minutes at the
// conservative walking pace.
var testClock = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store *storage.MemoryStore
	track *track.Service
	eval  *Evaluator
}

func newFixture() *fixture {
	store := storage.NewMemoryStore()
	svc := track.NewService(store, testLogger())
	eval := NewEvaluator(store, svc)
	eval.now = func() time.Time { return testClock }
	return &fixture{store: store, track: svc, eval: eval}
}

func (f *fixture) seedSession(id, gate, language string, departure time.Time) *models.Session {
	s := &models.Session{
		ID:    id,
		State: "viewing",
		Reservation: &models.Reservation{
			ID:               "res-" + id,
			ConfirmationCode: "XYZ789",
			Passenger: &models.Passenger{
				ID:                 "pax-" + id,
				FirstName:          "Maria",
				LastName:           "Gonzalez",
				Email:              "maria@example.com",
				Phone:              "+15559876543",
				LanguagePreference: language,
			},
			Segments: []models.FlightSegment{{
				ID: "seg-" + id,
				Flight: &models.Flight{
					ID:            "flt-" + id,
					FlightNumber:  "AA2456",
					Origin:        "DFW",
					Destination:   "LGA",
					DepartureTime: departure,
					Gate:          gate,
					Status:        "scheduled",
				},
			}},
			Status: "confirmed",
		},
		HelperLink: "link-" + id,
		CreatedAt:  testClock,
		ExpiresAt:  testClock.Add(24 * time.Hour),
	}
	f.store.PutSession(s)
	return s
}

func (f *fixture) pushFix(t *testing.T, sessionID string, lat, lng float64) {
	t.Helper()
	if _, err := f.track.UpdateLocation(context.Background(), sessionID, lat, lng, nil); err != nil {
		t.Fatal(err)
	}
}

func TestCheckUrgent(t *testing.T) {
	f := newFixture()
	f.seedSession("s1", "B22", "en", testClock.Add(20*time.Minute))
	f.pushFix(t, "s1", 32.8958, -97.0385)

	report := f.eval.Check(context.Background(), "s1")
	if report.Status != models.StatusUrgent {
		t.Fatalf("expected urgent, got %s (%s)", report.Status, report.Message)
	}
	if *report.DistanceMeters != 373 {
		t.Errorf("distance = %d, want 373", *report.DistanceMeters)
	}
	if *report.WalkingTimeMinutes != 7 {
		t.Errorf("walking = %d, want 7", *report.WalkingTimeMinutes)
	}
	if *report.TimeToDepartureMinutes != 20 {
		t.Errorf("ttd = %d, want 20", *report.TimeToDepartureMinutes)
	}
	if report.Message != "Urgent: You may miss your flight! Gate closes in 5 minutes." {
		t.Errorf("unexpected message %q", report.Message)
	}
	if report.Directions == "" {
		t.Error("expected directions")
	}
}

func TestCheckWarning(t *testing.T) {
	f := newFixture()
	f.seedSession("s1", "B22", "en", testClock.Add(30*time.Minute))
	f.pushFix(t, "s1", 32.8958, -97.0385)

	report := f.eval.Check(context.Background(), "s1")
	if report.Status != models.StatusWarning {
		t.Fatalf("expected warning, got %s (%s)", report.Status, report.Message)
	}
	if report.Message != "Please head to your gate now. It's about 7 minutes away." {
		t.Errorf("unexpected message %q", report.Message)
	}
}

func TestCheckSafe(t *testing.T) {
	f := newFixture()
	f.seedSession("s1", "B22", "en", testClock.Add(60*time.Minute))
	// ~200m from the gate, a 4 minute walk
	f.pushFix(t, "s1", 32.8986+0.0018, -97.0363)

	report := f.eval.Check(context.Background(), "s1")
	if report.Status != models.StatusSafe {
		t.Fatalf("expected safe, got %s (%s)", report.Status, report.Message)
	}
	if *report.WalkingTimeMinutes != 4 {
		t.Errorf("walking = %d, want 4", *report.WalkingTimeMinutes)
	}
}

func TestCheckArrivedOverridesTime(t *testing.T) {
	f := newFixture()
	// departure already passed: arrival still wins
	f.seedSession("s1", "B22", "en", testClock.Add(-5*time.Minute))
	// ~40m from the gate
	f.pushFix(t, "s1", 32.8986+0.00036, -97.0363)

	report := f.eval.Check(context.Background(), "s1")
	if report.Status != models.StatusArrived {
		t.Fatalf("expected arrived, got %s (%s)", report.Status, report.Message)
	}
	if report.Message != "You've arrived at gate B22!" {
		t.Errorf("unexpected message %q", report.Message)
	}
	if *report.TimeToDepartureMinutes != 0 {
		t.Errorf("ttd = %d, want clamp to 0", *report.TimeToDepartureMinutes)
	}
}

func TestCheckSpanish(t *testing.T) {
	f := newFixture()
	f.seedSession("s1", "B22", "es", testClock.Add(20*time.Minute))
	f.pushFix(t, "s1", 32.8958, -97.0385)

	report := f.eval.Check(context.Background(), "s1")
	if report.Message != "Urgente: Puede perder su vuelo! La puerta cierra en 5 minutos." {
		t.Errorf("unexpected message %q", report.Message)
	}
}

func TestCheckPreconditions(t *testing.T) {
	f := newFixture()

	report := f.eval.Check(context.Background(), "missing")
	if report.Message != "Session not found" || report.DistanceMeters != nil {
		t.Fatalf("unexpected report %+v", report)
	}

	f.seedSession("s1", "B22", "en", testClock.Add(20*time.Minute))
	report = f.eval.Check(context.Background(), "s1")
	if report.Message != "No location data available" {
		t.Fatalf("unexpected message %q", report.Message)
	}

	f.seedSession("s2", "", "en", testClock.Add(20*time.Minute))
	f.pushFix(t, "s2", 32.8958, -97.0385)
	report = f.eval.Check(context.Background(), "s2")
	if report.Message != "Gate information not available" {
		t.Fatalf("unexpected message %q", report.Message)
	}
}

func TestMetricsBundle(t *testing.T) {
	f := newFixture()
	f.seedSession("s1", "B22", "en", testClock.Add(20*time.Minute))
	f.pushFix(t, "s1", 32.8958, -97.0385)

	bundle := f.eval.Metrics(context.Background(), "s1")
	if bundle.PassengerLocation == nil || bundle.GateLocation == nil {
		t.Fatalf("incomplete bundle %+v", bundle)
	}
	if bundle.GateLocation.Gate != "B22" {
		t.Errorf("gate = %q, want B22", bundle.GateLocation.Gate)
	}
	if bundle.Report.Status != models.StatusUrgent {
		t.Errorf("status = %s, want urgent", bundle.Report.Status)
	}
	if bundle.Alert != nil {
		t.Error("no alert was dispatched yet")
	}

	dist := 373.0
	walk := 7
	ttd := 20
	if err := f.store.SaveAlert(context.Background(), &models.LocationAlert{
		ID:                   "a1",
		SessionID:            "s1",
		AlertType:            models.AlertUrgent,
		Message:              bundle.Report.Message,
		DistanceToGate:       &dist,
		EstimatedWalkingTime: &walk,
		TimeToDeparture:      &ttd,
		CreatedAt:            testClock,
	}); err != nil {
		t.Fatal(err)
	}
	bundle = f.eval.Metrics(context.Background(), "s1")
	if bundle.Alert == nil || bundle.Alert.ID != "a1" {
		t.Fatalf("expected unacknowledged alert, got %+v", bundle.Alert)
	}
}
