package track

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/voice-concierge/internal/models"
	"github.com/example/voice-concierge/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedSession(store *storage.MemoryStore, id, gate string) *models.Session {
	s := &models.Session{
		ID:    id,
		State: "viewing",
		Reservation: &models.Reservation{
			ID:               "res-" + id,
			ConfirmationCode: "ABC123",
			Passenger: &models.Passenger{
				ID:                 "pax-" + id,
				FirstName:          "Rosa",
				LastName:           "Martinez",
				Email:              "rosa@example.com",
				Phone:              "+15551234567",
				LanguagePreference: "en",
			},
			Segments: []models.FlightSegment{{
				ID: "seg-" + id,
				Flight: &models.Flight{
					ID:            "flt-" + id,
					FlightNumber:  "AA1234",
					Origin:        "DFW",
					Destination:   "MIA",
					DepartureTime: time.Now().Add(2 * time.Hour),
					Gate:          gate,
					Status:        "scheduled",
				},
				Seat: "14A",
			}},
			Status: "confirmed",
		},
		HelperLink: "link-" + id,
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(24 * time.Hour),
	}
	store.PutSession(s)
	return s
}

func TestUpdateLocationUnknownSession(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewService(store, testLogger())
	_, err := svc.UpdateLocation(context.Background(), "nope", 32.89, -97.03, nil)
	if !errors.Is(err, storage.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestUpdateLocationMovementThreshold(t *testing.T) {
	store := storage.NewMemoryStore()
	seedSession(store, "s1", "B22")
	svc := NewService(store, testLogger())
	ctx := context.Background()

	fix, err := svc.UpdateLocation(ctx, "s1", 32.8958, -97.0385, nil)
	if err != nil || fix == nil {
		t.Fatalf("first fix must be stored, got fix=%v err=%v", fix, err)
	}

	// identical point: no significant movement, nothing written
	fix, err = svc.UpdateLocation(ctx, "s1", 32.8958, -97.0385, nil)
	if err != nil {
		t.Fatal(err)
	}
	if fix != nil {
		t.Fatal("identical fix should be discarded")
	}
	if n := store.FixCount("s1"); n != 1 {
		t.Fatalf("expected 1 stored fix, got %d", n)
	}

	// ~22m north: still under the 50m threshold
	if fix, _ := svc.UpdateLocation(ctx, "s1", 32.8958+0.0002, -97.0385, nil); fix != nil {
		t.Fatal("22m move should be discarded")
	}

	// ~51m north: significant, stored
	fix, err = svc.UpdateLocation(ctx, "s1", 32.8958+0.00046, -97.0385, nil)
	if err != nil || fix == nil {
		t.Fatalf("51m move must be stored, got fix=%v err=%v", fix, err)
	}
	if n := store.FixCount("s1"); n != 2 {
		t.Fatalf("expected 2 stored fixes, got %d", n)
	}
}

func TestCurrentLocation(t *testing.T) {
	store := storage.NewMemoryStore()
	seedSession(store, "s1", "B22")
	svc := NewService(store, testLogger())
	ctx := context.Background()

	loc, err := svc.CurrentLocation(ctx, "s1")
	if err != nil || loc != nil {
		t.Fatalf("expected nil before any fix, got %v err=%v", loc, err)
	}

	acc := 12.5
	if _, err := svc.UpdateLocation(ctx, "s1", 32.8958, -97.0385, &acc); err != nil {
		t.Fatal(err)
	}
	loc, err = svc.CurrentLocation(ctx, "s1")
	if err != nil || loc == nil {
		t.Fatalf("expected location, got %v err=%v", loc, err)
	}
	if loc.Lat != 32.8958 || loc.Lng != -97.0385 || loc.Accuracy == nil || *loc.Accuracy != 12.5 {
		t.Fatalf("unexpected location %+v", loc)
	}
}

func TestGateLocationForSession(t *testing.T) {
	store := storage.NewMemoryStore()
	seedSession(store, "s1", "B22")
	svc := NewService(store, testLogger())
	ctx := context.Background()

	gate, err := svc.GateLocationForSession(ctx, "s1")
	if err != nil || gate == nil {
		t.Fatalf("expected gate, got %v err=%v", gate, err)
	}
	if gate.Gate != "B22" || gate.Terminal != "B" || gate.Approximate {
		t.Fatalf("unexpected gate %+v", gate)
	}

	// no gate assigned
	s := seedSession(store, "s2", "")
	if gate, _ := svc.GateLocationForSession(ctx, "s2"); gate != nil {
		t.Fatalf("expected nil for unassigned gate, got %+v", gate)
	}

	// no reservation at all
	s.Reservation = nil
	store.PutSession(s)
	if gate, _ := svc.GateLocationForSession(ctx, "s2"); gate != nil {
		t.Fatal("expected nil for session without reservation")
	}
}

type recordingPublisher struct{ fixes []*models.LocationFix }

func (p *recordingPublisher) PublishFix(_ context.Context, fix *models.LocationFix) error {
	p.fixes = append(p.fixes, fix)
	return nil
}

type failingLive struct{}

func (failingLive) SetLatest(context.Context, *models.LocationFix) error {
	return errors.New("redis down")
}

func TestUpdateLocationDownstreamBestEffort(t *testing.T) {
	store := storage.NewMemoryStore()
	seedSession(store, "s1", "B22")
	svc := NewService(store, testLogger())
	pub := &recordingPublisher{}
	svc.Publisher = pub
	svc.Live = failingLive{}

	fix, err := svc.UpdateLocation(context.Background(), "s1", 32.8958, -97.0385, nil)
	if err != nil || fix == nil {
		t.Fatalf("live cache failure must not block the store, got fix=%v err=%v", fix, err)
	}
	if len(pub.fixes) != 1 {
		t.Fatalf("expected 1 published fix, got %d", len(pub.fixes))
	}
}

func TestIsInAirport(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewService(store, testLogger())
	if !svc.IsInAirport(32.8968, -97.0380, "DFW") {
		t.Fatal("geofence center must be inside")
	}
	if svc.IsInAirport(33.9425, -118.4081, "DFW") {
		t.Fatal("LAX is not inside the DFW geofence")
	}
	if svc.IsInAirport(32.8968, -97.0380, "XXX") {
		t.Fatal("unknown airport is never inside")
	}
}
