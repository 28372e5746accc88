package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/voice-concierge/internal/alert"
	"github.com/example/voice-concierge/internal/config"
	"github.com/example/voice-concierge/internal/models"
	"github.com/example/voice-concierge/internal/notify"
	"github.com/example/voice-concierge/internal/storage"
	"github.com/example/voice-concierge/internal/track"
)

type Server struct {
	Store      storage.Store
	Track      *track.Service
	Evaluator  *alert.Evaluator
	Dispatcher *alert.Dispatcher
	WSReg      *notify.WSRegistry

	logger *slog.Logger
	mux    *mux.Router
}

// NewServer wires the subsystem from config with sensible fallbacks:
// memory store without PG_DSN, no live cache without REDIS_ADDR, no fix
// stream without KAFKA_BROKERS, and silent channels without provider keys.
func NewServer(cfg config.ServerConfig, logger *slog.Logger) *Server {
	var store storage.Store
	if cfg.PGDSN != "" {
		if ps, err := storage.NewPostgresStore(cfg.PGDSN); err == nil {
			store = ps
		} else {
			logger.Warn("postgres unavailable, falling back to memory store", "error", err)
		}
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}

	trackSvc := track.NewService(store, logger)
	if cfg.RedisAddr != "" {
		trackSvc.Live = track.NewLiveCache(cfg.RedisAddr, cfg.RedisPassword, cfg.LiveCacheTTL)
	}
	if len(cfg.KafkaBrokers) > 0 {
		trackSvc.Publisher = track.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	ev := alert.NewEvaluator(store, trackSvc)
	wsreg := notify.NewWSRegistry()

	disp := alert.NewDispatcher(store, ev, logger)
	disp.Dashboard = wsreg
	if voice := notify.NewVoiceClient(cfg.VoiceEndpoint, cfg.VoiceAPIKey, cfg.VoiceAgentID, cfg.VoiceFromNumber); voice.Configured() {
		disp.Voice = voice
	}
	if email := notify.NewEmailClient(cfg.EmailEndpoint, cfg.EmailAPIKey, cfg.EmailFrom); email.Configured() {
		disp.Email = email
	}

	s := &Server{
		Store:      store,
		Track:      trackSvc,
		Evaluator:  ev,
		Dispatcher: disp,
		WSReg:      wsreg,
		logger:     logger,
		mux:        mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/v1/location/update", s.handleLocationUpdate).Methods("POST")
	s.mux.HandleFunc("/api/v1/location/{session_id}/metrics", s.handleLocationMetrics).Methods("GET")
	s.mux.HandleFunc("/api/v1/location/alerts/acknowledge", s.handleAcknowledge).Methods("POST")
	s.mux.HandleFunc("/api/v1/location/alerts/trigger", s.handleTrigger).Methods("POST")
	s.mux.HandleFunc("/ws/helper/{link_id}", s.handleHelperWS)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

type locationUpdateRequest struct {
	SessionID string   `json:"session_id"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

func (s *Server) handleLocationUpdate(w http.ResponseWriter, r *http.Request) {
	var req locationUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.SessionID == "" || req.Lat == nil || req.Lng == nil {
		http.Error(w, "session_id, lat and lng are required", http.StatusBadRequest)
		return
	}
	if *req.Lat < -90 || *req.Lat > 90 || *req.Lng < -180 || *req.Lng > 180 {
		http.Error(w, "coordinates out of range", http.StatusBadRequest)
		return
	}

	fix, err := s.Track.UpdateLocation(r.Context(), req.SessionID, *req.Lat, *req.Lng, req.Accuracy)
	if errors.Is(err, storage.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("location update failed", "session_id", req.SessionID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	result, err := s.Dispatcher.CheckAndSend(r.Context(), req.SessionID)
	if err != nil {
		s.logger.Error("alert dispatch failed", "session_id", req.SessionID, "error", err)
	}

	writeJSON(w, map[string]any{
		"stored":  fix != nil,
		"metrics": s.Evaluator.Check(r.Context(), req.SessionID),
		"alert":   result,
	})
}

func (s *Server) handleLocationMetrics(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	if _, err := s.Store.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, s.Evaluator.Metrics(r.Context(), sessionID))
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AlertID string `json:"alert_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AlertID == "" {
		http.Error(w, "alert_id is required", http.StatusBadRequest)
		return
	}
	if !s.Dispatcher.Acknowledge(r.Context(), req.AlertID) {
		http.Error(w, "alert not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"acknowledged": true})
}

// handleTrigger is the manual/test override; it always bypasses cooldown.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		AlertType string `json:"alert_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	if req.AlertType != models.AlertRunningLate && req.AlertType != models.AlertUrgent {
		http.Error(w, "alert_type must be running_late or urgent", http.StatusBadRequest)
		return
	}
	if _, err := s.Store.GetSession(r.Context(), req.SessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var result *models.DispatchResult
	var err error
	if req.AlertType == models.AlertUrgent {
		result, err = s.Dispatcher.SendUrgentAlert(r.Context(), req.SessionID, true)
	} else {
		result, err = s.Dispatcher.SendRunningLateAlert(r.Context(), req.SessionID, true)
	}
	if err != nil {
		s.logger.Error("manual alert trigger failed", "session_id", req.SessionID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"alert": result})
}

var upgrader = websocket.Upgrader{}

func (s *Server) handleHelperWS(w http.ResponseWriter, r *http.Request) {
	linkID := mux.Vars(r)["link_id"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		s.logger.Warn("websocket upgrade failed", "link_id", linkID, "error", err)
		return
	}
	s.WSReg.Add(linkID, conn)
	// drain reads so we notice the dashboard going away
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.WSReg.Remove(linkID, conn)
				_ = conn.Close()
				return
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
