package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/voice-concierge/internal/models"
	"github.com/example/voice-concierge/internal/notify"
	"github.com/example/voice-concierge/internal/observability"
	"github.com/example/voice-concierge/internal/storage"
)

// Cooldowns between alerts of the same type for one session. A rapid burst
// of location updates must not turn into a notification storm; the cost is
// at most one redundant notification per window under concurrent updates.
const (
	RunningLateCooldown = 10 * time.Minute
	UrgentCooldown      = 5 * time.Minute
)

// VoiceCaller places an outbound reminder call and returns the call id.
type VoiceCaller interface {
	CreateReminderCall(phone, passengerName string, info notify.FlightInfo, kind, language string) (string, error)
}

// EmailSender delivers one HTML message and returns the provider id.
type EmailSender interface {
	SendHTML(to, subject, htmlBody string) (string, error)
}

// DashboardPusher pushes an alert summary to a live helper dashboard.
type DashboardPusher interface {
	Push(helperLink string, summary models.AlertSummary) error
}

// Dispatcher creates alert records and fans out to the passenger (voice),
// the family helper (email, dashboard) on WARNING/URGENT transitions.
// Channel sends are independent and best-effort: a failed call never
// blocks the email, and failures only leave the *_sent flag false.
type Dispatcher struct {
	Store     storage.Store
	Evaluator *Evaluator
	Voice     VoiceCaller     // optional
	Email     EmailSender     // optional
	Dashboard DashboardPusher // optional
	Logger    *slog.Logger

	now func() time.Time // test hook
}

func NewDispatcher(store storage.Store, ev *Evaluator, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{Store: store, Evaluator: ev, Logger: logger, now: time.Now}
}

// CheckAndSend evaluates the session and routes to the matching alert:
// URGENT sends an urgent alert, WARNING a running-late one, SAFE and
// ARRIVED do nothing.
func (d *Dispatcher) CheckAndSend(ctx context.Context, sessionID string) (*models.DispatchResult, error) {
	report := d.Evaluator.Check(ctx, sessionID)
	switch report.Status {
	case models.StatusUrgent:
		return d.SendUrgentAlert(ctx, sessionID, false)
	case models.StatusWarning:
		return d.SendRunningLateAlert(ctx, sessionID, false)
	}
	return nil, nil
}

// SendRunningLateAlert notifies passenger and helper that the gate walk is
// eating into the departure buffer. Suppressed inside the 10-minute
// cooldown unless force is set. Returns nil when nothing was sent.
func (d *Dispatcher) SendRunningLateAlert(ctx context.Context, sessionID string, force bool) (*models.DispatchResult, error) {
	return d.send(ctx, sessionID, models.AlertRunningLate, RunningLateCooldown, force)
}

// SendUrgentAlert notifies that the passenger may miss the flight, on the
// tighter 5-minute cooldown.
func (d *Dispatcher) SendUrgentAlert(ctx context.Context, sessionID string, force bool) (*models.DispatchResult, error) {
	return d.send(ctx, sessionID, models.AlertUrgent, UrgentCooldown, force)
}

func (d *Dispatcher) send(ctx context.Context, sessionID, alertType string, cooldown time.Duration, force bool) (*models.DispatchResult, error) {
	session, err := d.Store.GetSession(ctx, sessionID)
	if err != nil {
		d.Logger.Warn("session not found for location alert", "session_id", sessionID)
		return nil, nil
	}
	if session.Reservation == nil {
		d.Logger.Warn("no reservation for session", "session_id", sessionID)
		return nil, nil
	}
	seg := session.Reservation.FirstSegment()
	if seg == nil || seg.Flight == nil {
		return nil, nil
	}

	if !force {
		recent, err := d.Store.LatestAlert(ctx, sessionID, alertType)
		if err != nil {
			return nil, err
		}
		if recent != nil && d.now().Sub(recent.CreatedAt) < cooldown {
			d.Logger.Info("alert cooldown active", "session_id", sessionID, "alert_type", alertType)
			observability.AlertsSuppressed.Inc()
			return nil, nil
		}
	}

	report := d.Evaluator.Check(ctx, sessionID)
	metrics := models.Metrics{}
	if report.DistanceMeters != nil {
		metrics.DistanceMeters = *report.DistanceMeters
	}
	if report.WalkingTimeMinutes != nil {
		metrics.WalkingTimeMinutes = *report.WalkingTimeMinutes
	}
	if report.TimeToDepartureMinutes != nil {
		metrics.TimeToDepartureMinutes = *report.TimeToDepartureMinutes
	}

	passenger := session.Reservation.Passenger
	flight := seg.Flight
	lang := language(session)
	gate := flight.Gate
	if gate == "" {
		gate = "your gate"
	}
	message := alertMessage(alertType, lang, passenger.FirstName, gate, metrics.WalkingTimeMinutes, metrics.TimeToDepartureMinutes)

	distance := float64(metrics.DistanceMeters)
	walking := metrics.WalkingTimeMinutes
	ttd := metrics.TimeToDepartureMinutes
	record := &models.LocationAlert{
		ID:                   uuid.NewString(),
		SessionID:            sessionID,
		AlertType:            alertType,
		Message:              message,
		DistanceToGate:       &distance,
		EstimatedWalkingTime: &walking,
		TimeToDeparture:      &ttd,
		CreatedAt:            d.now(),
	}
	if err := d.Store.SaveAlert(ctx, record); err != nil {
		return nil, err
	}
	observability.AlertsCreated.WithLabelValues(alertType).Inc()

	result := &models.DispatchResult{
		AlertID:   record.ID,
		AlertType: alertType,
		Message:   message,
	}

	// 1. voice call to the passenger
	if passenger.Phone != "" && d.Voice != nil {
		info := notify.FlightInfo{
			FlightNumber:  flight.FlightNumber,
			Origin:        flight.Origin,
			Destination:   flight.Destination,
			DepartureTime: flight.DepartureTime.Format(time.RFC3339),
			Gate:          gate,
			Seat:          seg.Seat,
		}
		callID, err := d.Voice.CreateReminderCall(passenger.Phone, passenger.FullName(), info, alertType, lang)
		if err != nil {
			d.Logger.Warn("voice call failed", "session_id", sessionID, "error", err)
			observability.NotifyFailures.WithLabelValues("voice").Inc()
		} else {
			record.VoiceCallSent = true
			result.VoiceCallSent = true
			result.CallID = callID
			d.Logger.Info("voice call sent", "session_id", sessionID, "alert_type", alertType, "call_id", callID)
		}
	}

	// 2. email to the family helper
	if helperEmail := session.Context.HelperEmail; helperEmail != "" && d.Email != nil {
		subject := fmt.Sprintf("Alert: %s may be running late for flight %s", passenger.FullName(), flight.FlightNumber)
		body := helperEmailBody(passenger.FullName(), flight, gate, metrics, report.Directions)
		if _, err := d.Email.SendHTML(helperEmail, subject, body); err != nil {
			d.Logger.Warn("helper email failed", "session_id", sessionID, "error", err)
			observability.NotifyFailures.WithLabelValues("email").Inc()
		} else {
			record.EmailSent = true
			result.EmailSent = true
			d.Logger.Info("helper email sent", "session_id", sessionID, "to", helperEmail)
		}
	}

	// 3. dashboard: session context for polling, plus live push when a
	// helper is connected
	summary := models.AlertSummary{
		Type:      alertType,
		Message:   message,
		Timestamp: d.now(),
		Metrics:   metrics,
	}
	sc := session.Context
	sc.LastAlert = &summary
	if err := d.Store.UpdateSessionContext(ctx, sessionID, sc); err != nil {
		d.Logger.Warn("session context update failed", "session_id", sessionID, "error", err)
	}
	if d.Dashboard != nil && session.HelperLink != "" {
		if err := d.Dashboard.Push(session.HelperLink, summary); err != nil && err != notify.ErrNoDashboard {
			d.Logger.Warn("dashboard push failed", "session_id", sessionID, "error", err)
		}
	}

	if err := d.Store.UpdateAlertFlags(ctx, record); err != nil {
		d.Logger.Warn("alert flag update failed", "alert_id", record.ID, "error", err)
	}
	return result, nil
}

// Acknowledge flips the acknowledged flag on an alert. Re-acknowledging is
// harmless; an unknown id returns false.
func (d *Dispatcher) Acknowledge(ctx context.Context, alertID string) bool {
	a, err := d.Store.GetAlert(ctx, alertID)
	if err != nil {
		return false
	}
	a.Acknowledged = true
	if err := d.Store.UpdateAlertFlags(ctx, a); err != nil {
		d.Logger.Warn("acknowledge failed", "alert_id", alertID, "error", err)
		return false
	}
	return true
}

// alertMessage is the notification payload text, distinct from the
// evaluator's display message.
func alertMessage(alertType, lang, firstName, gate string, walking, ttd int) string {
	if alertType == models.AlertUrgent {
		if lang == "es" {
			return fmt.Sprintf(
				"URGENTE: %s, puede perder su vuelo! La puerta %s cierra en %d minutos y usted esta a %d minutos de distancia. Por favor corra a su puerta inmediatamente!",
				firstName, gate, ttd-WarningBufferMinutes, walking)
		}
		return fmt.Sprintf(
			"URGENT: %s, you may miss your flight! Gate %s closes in %d minutes and you are %d minutes away. Please hurry to your gate immediately!",
			firstName, gate, ttd-WarningBufferMinutes, walking)
	}
	if lang == "es" {
		return fmt.Sprintf(
			"%s, puede estar llegando tarde a su puerta. La puerta %s esta a aproximadamente %d minutos caminando, y su vuelo sale en %d minutos. Por favor dirijase a la puerta ahora.",
			firstName, gate, walking, ttd)
	}
	return fmt.Sprintf(
		"%s, you may be running late for your gate. Gate %s is about %d minutes away, and your flight departs in %d minutes. Please head to your gate now.",
		firstName, gate, walking, ttd)
}
