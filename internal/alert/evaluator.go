// Package alert turns location fixes into status classifications and
// multi-channel notifications.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/example/voice-concierge/internal/airports"
	"github.com/example/voice-concierge/internal/geo"
	"github.com/example/voice-concierge/internal/models"
	"github.com/example/voice-concierge/internal/storage"
	"github.com/example/voice-concierge/internal/track"
)

const (
	// GateArrivalMeters is the radius around the gate that counts as arrived.
	GateArrivalMeters = 100.0
	// SafeBufferMinutes and WarningBufferMinutes are the fixed walking-time
	// buffers before departure that separate SAFE, WARNING and URGENT.
	SafeBufferMinutes    = 30
	WarningBufferMinutes = 15
)

// Evaluator recomputes a session's alert status on every call. Nothing is
// cached: both the passenger's position and the time to departure move.
type Evaluator struct {
	Store storage.Store
	Track *track.Service

	now func() time.Time // test hook
}

func NewEvaluator(store storage.Store, trackSvc *track.Service) *Evaluator {
	return &Evaluator{Store: store, Track: trackSvc, now: time.Now}
}

// Check classifies the session. Preconditions short-circuit in order with
// an explanatory message and no numeric fields: session, fix, gate, then
// flight segment.
func (e *Evaluator) Check(ctx context.Context, sessionID string) models.StatusReport {
	report := models.StatusReport{Status: models.StatusSafe}

	session, err := e.Store.GetSession(ctx, sessionID)
	if err != nil {
		report.Message = "Session not found"
		return report
	}

	loc, err := e.Track.CurrentLocation(ctx, sessionID)
	if err != nil || loc == nil {
		report.Message = "No location data available"
		return report
	}

	gate, err := e.Track.GateLocationForSession(ctx, sessionID)
	if err != nil || gate == nil {
		report.Message = "Gate information not available"
		return report
	}

	seg := session.Reservation.FirstSegment()
	if seg == nil || seg.Flight == nil {
		report.Message = "Flight information not available"
		return report
	}

	lang := language(session)
	distance := geo.Haversine(loc.Lat, loc.Lng, gate.Lat, gate.Lng)
	walking := geo.WalkingTimeMinutes(distance, geo.PaceElderly)
	now := time.Now()
	if e.now != nil {
		now = e.now()
	}
	ttd := int(seg.Flight.DepartureTime.Sub(now) / time.Minute)
	if ttd < 0 {
		ttd = 0
	}

	rounded := int(distance + 0.5)
	report.DistanceMeters = &rounded
	report.WalkingTimeMinutes = &walking
	report.TimeToDepartureMinutes = &ttd

	switch {
	case distance <= GateArrivalMeters:
		report.Status = models.StatusArrived
		report.Message = statusMessage(lang, models.StatusArrived, gate.Gate, walking, ttd)
	case walking > ttd-WarningBufferMinutes:
		report.Status = models.StatusUrgent
		report.Message = statusMessage(lang, models.StatusUrgent, gate.Gate, walking, ttd)
	case walking > ttd-SafeBufferMinutes:
		report.Status = models.StatusWarning
		report.Message = statusMessage(lang, models.StatusWarning, gate.Gate, walking, ttd)
	default:
		report.Status = models.StatusSafe
		report.Message = statusMessage(lang, models.StatusSafe, gate.Gate, walking, ttd)
	}

	report.Directions = airports.Directions(loc.Lat, loc.Lng, gate.Gate, seg.Flight.Origin, lang)
	return report
}

// MetricsBundle is everything the helper dashboard needs in one poll.
type MetricsBundle struct {
	PassengerLocation *track.CurrentLocation `json:"passenger_location"`
	GateLocation      *track.GateForSession  `json:"gate_location"`
	Report            models.StatusReport    `json:"report"`
	Alert             *models.LocationAlert  `json:"alert,omitempty"`
}

// Metrics assembles the dashboard bundle: latest fix, resolved gate, the
// fresh status report, and the newest unacknowledged alert if any.
func (e *Evaluator) Metrics(ctx context.Context, sessionID string) MetricsBundle {
	out := MetricsBundle{Report: e.Check(ctx, sessionID)}
	if loc, err := e.Track.CurrentLocation(ctx, sessionID); err == nil {
		out.PassengerLocation = loc
	}
	if gate, err := e.Track.GateLocationForSession(ctx, sessionID); err == nil {
		out.GateLocation = gate
	}
	if a, err := e.Store.LatestUnacknowledged(ctx, sessionID); err == nil {
		out.Alert = a
	}
	return out
}

func language(s *models.Session) string {
	if s.Reservation != nil && s.Reservation.Passenger != nil && s.Reservation.Passenger.LanguagePreference != "" {
		return s.Reservation.Passenger.LanguagePreference
	}
	if s.Context.DetectedLanguage != "" {
		return s.Context.DetectedLanguage
	}
	return "en"
}

// statusMessage is the real-time display line; the dispatcher builds its
// own notification text separately.
func statusMessage(lang string, status models.AlertStatus, gate string, walking, ttd int) string {
	if lang == "es" {
		switch status {
		case models.StatusArrived:
			return fmt.Sprintf("Ha llegado a la puerta %s!", gate)
		case models.StatusUrgent:
			return fmt.Sprintf("Urgente: Puede perder su vuelo! La puerta cierra en %d minutos.", ttd-WarningBufferMinutes)
		case models.StatusWarning:
			return fmt.Sprintf("Por favor dirijase a su puerta ahora. Esta a unos %d minutos.", walking)
		default:
			return fmt.Sprintf("Tiene tiempo de sobra. La puerta %s esta a unos %d minutos.", gate, walking)
		}
	}
	switch status {
	case models.StatusArrived:
		return fmt.Sprintf("You've arrived at gate %s!", gate)
	case models.StatusUrgent:
		return fmt.Sprintf("Urgent: You may miss your flight! Gate closes in %d minutes.", ttd-WarningBufferMinutes)
	case models.StatusWarning:
		return fmt.Sprintf("Please head to your gate now. It's about %d minutes away.", walking)
	default:
		return fmt.Sprintf("You have plenty of time. Gate %s is about %d minutes away.", gate, walking)
	}
}
