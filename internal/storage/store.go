package storage

import (
	"context"
	"errors"

	"github.com/example/voice-concierge/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrAlertNotFound   = errors.New("alert not found")
)

// Store defines the persistence operations the alerting subsystem needs.
// Sessions (and the reservation graph hanging off them) are read-only here;
// only the context blob is written back. Fixes are append-only, alerts are
// appended and then mutated only through their ack/sent flags.
type Store interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	UpdateSessionContext(ctx context.Context, id string, sc models.SessionContext) error

	SaveFix(ctx context.Context, fix *models.LocationFix) error
	// LatestFix returns the newest fix for a session, or nil when none exist.
	LatestFix(ctx context.Context, sessionID string) (*models.LocationFix, error)

	SaveAlert(ctx context.Context, a *models.LocationAlert) error
	// UpdateAlertFlags persists the acknowledged/voice_call_sent/email_sent
	// flags of an existing alert.
	UpdateAlertFlags(ctx context.Context, a *models.LocationAlert) error
	GetAlert(ctx context.Context, id string) (*models.LocationAlert, error)
	// LatestAlert returns the newest alert of the given type for a session,
	// or nil when none exist. Used for the cooldown check.
	LatestAlert(ctx context.Context, sessionID, alertType string) (*models.LocationAlert, error)
	// LatestUnacknowledged returns the newest unacknowledged alert of any
	// type for a session, or nil.
	LatestUnacknowledged(ctx context.Context, sessionID string) (*models.LocationAlert, error)
}
