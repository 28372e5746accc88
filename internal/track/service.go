// Package track ingests passenger GPS fixes and answers location queries
// for the alerting flow and the helper dashboard.
package track

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/voice-concierge/internal/airports"
	"github.com/example/voice-concierge/internal/geo"
	"github.com/example/voice-concierge/internal/models"
	"github.com/example/voice-concierge/internal/observability"
	"github.com/example/voice-concierge/internal/storage"
)

// MinMovementMeters is the significant-movement threshold: fixes closer
// than this to the previous one are dropped to keep GPS jitter out of the
// history and to bound storage growth.
const MinMovementMeters = 50.0

// GateForSession is a resolved gate for a session's first flight segment.
type GateForSession struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Gate        string  `json:"gate"`
	Terminal    string  `json:"terminal"`
	Approximate bool    `json:"approximate"`
}

// CurrentLocation is the latest fix in dashboard shape.
type CurrentLocation struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// FixPublisher streams accepted fixes to downstream consumers; the Kafka
// producer implements it, tests use fakes.
type FixPublisher interface {
	PublishFix(ctx context.Context, fix *models.LocationFix) error
}

// LiveUpdater mirrors the latest accepted fix into a fast read path.
type LiveUpdater interface {
	SetLatest(ctx context.Context, fix *models.LocationFix) error
}

type Service struct {
	Store     storage.Store
	Publisher FixPublisher // optional
	Live      LiveUpdater  // optional
	Logger    *slog.Logger

	now func() time.Time // test hook
}

func NewService(store storage.Store, logger *slog.Logger) *Service {
	return &Service{Store: store, Logger: logger, now: time.Now}
}

// UpdateLocation records a fix for a session. The fix is persisted only
// when it is the session's first, or at least MinMovementMeters from the
// previous one; otherwise nil is returned and nothing is written.
func (s *Service) UpdateLocation(ctx context.Context, sessionID string, lat, lng float64, accuracy *float64) (*models.LocationFix, error) {
	if _, err := s.Store.GetSession(ctx, sessionID); err != nil {
		s.Logger.Warn("session not found for location update", "session_id", sessionID)
		return nil, err
	}

	last, err := s.Store.LatestFix(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if last != nil {
		moved := geo.Haversine(last.Latitude, last.Longitude, lat, lng)
		if moved < MinMovementMeters {
			observability.FixesDiscarded.Inc()
			return nil, nil
		}
	}

	fix := &models.LocationFix{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Latitude:   lat,
		Longitude:  lng,
		Accuracy:   accuracy,
		CapturedAt: s.clock()(),
	}
	if err := s.Store.SaveFix(ctx, fix); err != nil {
		return nil, err
	}
	observability.FixesStored.Inc()
	s.Logger.Info("location stored", "session_id", sessionID, "lat", lat, "lng", lng)

	// downstream mirrors are best-effort
	if s.Publisher != nil {
		if err := s.Publisher.PublishFix(ctx, fix); err != nil {
			s.Logger.Warn("fix publish failed", "session_id", sessionID, "error", err)
		}
	}
	if s.Live != nil {
		if err := s.Live.SetLatest(ctx, fix); err != nil {
			s.Logger.Warn("live cache update failed", "session_id", sessionID, "error", err)
		}
	}
	return fix, nil
}

// CurrentLocation returns the most recent fix for a session, or nil when
// none has been recorded. An unknown session also yields nil.
func (s *Service) CurrentLocation(ctx context.Context, sessionID string) (*CurrentLocation, error) {
	fix, err := s.Store.LatestFix(ctx, sessionID)
	if err != nil || fix == nil {
		return nil, err
	}
	return &CurrentLocation{Lat: fix.Latitude, Lng: fix.Longitude, Accuracy: fix.Accuracy, Timestamp: fix.CapturedAt}, nil
}

// GateLocationForSession resolves the gate of the session's first flight
// segment. Returns nil when the session has no reservation, no segment,
// no assigned gate, or the gate cannot be located.
func (s *Service) GateLocationForSession(ctx context.Context, sessionID string) (*GateForSession, error) {
	session, err := s.Store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	seg := session.Reservation.FirstSegment()
	if seg == nil || seg.Flight == nil || seg.Flight.Gate == "" {
		return nil, nil
	}
	loc, ok := airports.LookupGate(seg.Flight.Origin, seg.Flight.Gate)
	if !ok {
		return nil, nil
	}
	return &GateForSession{
		Lat:         loc.Lat,
		Lng:         loc.Lng,
		Gate:        seg.Flight.Gate,
		Terminal:    loc.Terminal,
		Approximate: loc.Approximate,
	}, nil
}

// IsInAirport reports whether a point falls inside an airport's geofence.
func (s *Service) IsInAirport(lat, lng float64, airportCode string) bool {
	g, ok := airports.LookupGeofence(airportCode)
	if !ok {
		return false
	}
	km := geo.Haversine(lat, lng, g.Lat, g.Lng) / 1000
	return km <= g.RadiusKm
}

func (s *Service) clock() func() time.Time {
	if s.now != nil {
		return s.now
	}
	return time.Now
}
