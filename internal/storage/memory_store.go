package storage

import (
	"context"
	"sync"

	"github.com/example/voice-concierge/internal/models"
)

// MemoryStore keeps everything in process. It backs tests and local runs
// without Postgres, the same way the server falls back when PG_DSN is unset.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	fixes    map[string][]*models.LocationFix   // session id -> newest first
	alerts   map[string][]*models.LocationAlert // session id -> newest first
	byID     map[string]*models.LocationAlert
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		fixes:    make(map[string][]*models.LocationFix),
		alerts:   make(map[string][]*models.LocationAlert),
		byID:     make(map[string]*models.LocationAlert),
	}
}

// PutSession seeds a session; used by tests and local fixtures.
func (m *MemoryStore) PutSession(s *models.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) UpdateSessionContext(_ context.Context, id string, sc models.SessionContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.Context = sc
	return nil
}

func (m *MemoryStore) SaveFix(_ context.Context, fix *models.LocationFix) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixes[fix.SessionID] = append([]*models.LocationFix{fix}, m.fixes[fix.SessionID]...)
	return nil
}

func (m *MemoryStore) LatestFix(_ context.Context, sessionID string) (*models.LocationFix, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fixes := m.fixes[sessionID]
	if len(fixes) == 0 {
		return nil, nil
	}
	return fixes[0], nil
}

func (m *MemoryStore) SaveAlert(_ context.Context, a *models.LocationAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[a.SessionID] = append([]*models.LocationAlert{a}, m.alerts[a.SessionID]...)
	m.byID[a.ID] = a
	return nil
}

func (m *MemoryStore) UpdateAlertFlags(_ context.Context, a *models.LocationAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[a.ID]
	if !ok {
		return ErrAlertNotFound
	}
	stored.Acknowledged = a.Acknowledged
	stored.VoiceCallSent = a.VoiceCallSent
	stored.EmailSent = a.EmailSent
	return nil
}

func (m *MemoryStore) GetAlert(_ context.Context, id string) (*models.LocationAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrAlertNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) LatestAlert(_ context.Context, sessionID, alertType string) (*models.LocationAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.alerts[sessionID] {
		if a.AlertType == alertType {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) LatestUnacknowledged(_ context.Context, sessionID string) (*models.LocationAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.alerts[sessionID] {
		if !a.Acknowledged {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// AlertCount reports how many alerts a session has accumulated; test helper.
func (m *MemoryStore) AlertCount(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.alerts[sessionID])
}

// FixCount reports how many fixes a session has accumulated; test helper.
func (m *MemoryStore) FixCount(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.fixes[sessionID])
}
