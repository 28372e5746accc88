package notify

import (
	"errors"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/example/voice-concierge/internal/models"
)

var ErrNoDashboard = errors.New("no dashboard session")

// WSSession is one connected helper dashboard.
type WSSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *WSSession) Send(summary models.AlertSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(summary)
}

// WSRegistry holds dashboard connections keyed by helper link, so an alert
// for a session reaches whichever family member is currently watching.
type WSRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*WSSession
}

func NewWSRegistry() *WSRegistry { return &WSRegistry{sessions: make(map[string]*WSSession)} }

// Add registers a dashboard connection for a helper link. A reconnect
// for the same link displaces the old connection, which is closed.
func (r *WSRegistry) Add(helperLink string, conn *websocket.Conn) {
	r.mu.Lock()
	old := r.sessions[helperLink]
	r.sessions[helperLink] = &WSSession{conn: conn}
	r.mu.Unlock()
	if old != nil {
		_ = old.conn.Close()
	}
}

// Remove drops the registration for conn. A stale connection's reader
// noticing its own error must not evict a newer replacement, so the
// entry is removed only if it still belongs to conn.
func (r *WSRegistry) Remove(helperLink string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[helperLink]; ok && s.conn == conn {
		delete(r.sessions, helperLink)
	}
}

// Push delivers an alert summary to the dashboard watching helperLink.
func (r *WSRegistry) Push(helperLink string, summary models.AlertSummary) error {
	r.mu.RLock()
	s, ok := r.sessions[helperLink]
	r.mu.RUnlock()
	if !ok {
		return ErrNoDashboard
	}
	if err := s.Send(summary); err != nil {
		log.Printf("ws send error: %v", err)
		return err
	}
	return nil
}
