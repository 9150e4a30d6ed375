package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/emastro/vitalia/internal/config"
	"github.com/emastro/vitalia/internal/consult"
	"github.com/emastro/vitalia/internal/observability"
	"github.com/emastro/vitalia/internal/profile"
	"github.com/emastro/vitalia/internal/protocol"
	"github.com/emastro/vitalia/internal/session"
	"github.com/emastro/vitalia/internal/triage"
)

// Orchestrator is the turn pipeline as the transport sees it.
type Orchestrator interface {
	HandleTurn(ctx context.Context, req consult.Request) (*consult.Response, error)
	HandleTurnObserved(ctx context.Context, req consult.Request, obs consult.StageObserver) (*consult.Response, error)
}

type Server struct {
	cfg          config.Config
	sessions     *session.Manager
	orchestrator Orchestrator
	store        profile.Store
	metrics      *observability.Metrics
	upgrader     websocket.Upgrader
}

func New(cfg config.Config, sessions *session.Manager, orchestrator Orchestrator, store profile.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:          cfg,
		sessions:     sessions,
		orchestrator: orchestrator,
		store:        store,
		metrics:      metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browser connections unless explicitly opened
				// up. Another site must not be able to drive an intake session.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/stages", s.handlePerfStages)

	r.Post("/v1/consult/session", s.handleCreateSession)
	r.Post("/v1/consult/session/{id}/end", s.handleEndSession)
	r.Get("/v1/consult/session/{id}", s.handleGetSession)
	r.Post("/v1/consult/message", s.handleMessage)
	r.Get("/v1/consult/ws", s.handleConsultWS)
	r.Get("/v1/consult/patients/{id}/history", s.handlePatientHistory)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"persistence_enabled": s.cfg.PersistenceEnabled,
		"translation_enabled": s.cfg.TranslationEnabled,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ready",
		"active_sessions": s.sessions.ActiveCount(),
	})
}

func (s *Server) handlePerfStages(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.StageSnapshot())
}

type createSessionRequest struct {
	PatientID string `json:"patient_id,omitempty"`
	Language  string `json:"language,omitempty"`
}

type createSessionResponse struct {
	SessionID       string         `json:"session_id"`
	PatientID       string         `json:"patient_id,omitempty"`
	Status          session.Status `json:"status"`
	Language        string         `json:"language"`
	StartedAt       time.Time      `json:"started_at"`
	InactivityTTLMS int64          `json:"inactivity_ttl_ms"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Language) == "" {
		req.Language = s.cfg.DefaultLanguage
	}

	conv := s.sessions.Create(strings.TrimSpace(req.PatientID), req.Language)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("created").Inc()

	respondJSON(w, http.StatusCreated, createSessionResponse{
		SessionID:       conv.ID,
		PatientID:       conv.PatientID,
		Status:          conv.Status,
		Language:        conv.Language,
		StartedAt:       conv.StartedAt,
		InactivityTTLMS: s.cfg.SessionInactivityTimeout.Milliseconds(),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}

	conv, err := s.sessions.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("ended").Inc()
	respondJSON(w, http.StatusOK, conv)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conv, err := s.sessions.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, conv)
}

func (s *Server) handlePatientHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil || !s.cfg.PersistenceEnabled {
		respondError(w, http.StatusNotImplemented, "persistence_disabled", "consultation history is not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	history, err := s.store.History(r.Context(), id, 50)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "history_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"patient_id":    id,
		"consultations": history,
	})
}

type messageRequest struct {
	SessionID      string                `json:"session_id"`
	Message        string                `json:"message"`
	TargetLanguage string                `json:"target_language,omitempty"`
	Vitals         triage.Vitals         `json:"vitals,omitzero"`
	AgeGroup       triage.AgeGroup       `json:"age_group,omitempty"`
	Duration       triage.DurationBucket `json:"duration,omitempty"`
	HasImage       bool                  `json:"has_image,omitempty"`
}

type messageResponse struct {
	*consult.Response
	ComponentsUsed   []string `json:"components_used"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "session_id and message are required")
		return
	}

	resp, err := s.orchestrator.HandleTurn(r.Context(), consult.Request{
		ConversationID: req.SessionID,
		Text:           req.Message,
		Language:       req.TargetLanguage,
		Vitals:         req.Vitals,
		Age:            req.AgeGroup,
		Duration:       req.Duration,
		HasImage:       req.HasImage,
	})
	if err != nil {
		s.respondTurnError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{
		Response:         resp,
		ComponentsUsed:   componentsUsed(resp.Stages),
		ProcessingTimeMs: resp.ProcessingTime.Milliseconds(),
	})
}

func (s *Server) respondTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", "unknown session; start a new session")
	case errors.Is(err, session.ErrEnded):
		respondError(w, http.StatusConflict, "session_ended", "this session has ended; start a new session")
	case errors.Is(err, session.ErrTurnInProgress):
		respondError(w, http.StatusConflict, "turn_in_progress", "a previous message is still being processed")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func (s *Server) handleConsultWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "query parameter session_id is required")
		return
	}
	if _, err := s.sessions.Get(sessionID); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbound := make(chan any, 256)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-outbound:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	send := func(msg any) {
		select {
		case outbound <- msg:
		default:
			// Writes stay single-threaded; drop when the queue is saturated.
		}
	}

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

readLoop:
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		if msgType != websocket.TextMessage {
			continue
		}
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			send(protocol.ErrorEvent{
				Type:           protocol.TypeErrorEvent,
				ConversationID: sessionID,
				Code:           "invalid_client_message",
				Detail:         err.Error(),
			})
			continue
		}

		switch msg := parsed.(type) {
		case protocol.ClientMessage:
			s.runWSTurn(ctx, send, sessionID, msg)
		case protocol.ClientControl:
			if msg.Action == "end" {
				if _, err := s.sessions.End(sessionID); err == nil {
					s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
					s.metrics.SessionEvents.WithLabelValues("ended").Inc()
					send(protocol.SystemEvent{
						Type:           protocol.TypeSystemEvent,
						ConversationID: sessionID,
						Code:           "session_ended",
					})
				}
				break readLoop
			}
		}

		select {
		case <-ctx.Done():
			break readLoop
		default:
		}
	}

	cancel()
	<-writerDone
	s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()
}

// runWSTurn runs one turn and streams its stage records as they are written.
func (s *Server) runWSTurn(ctx context.Context, send func(any), sessionID string, msg protocol.ClientMessage) {
	req := consult.Request{
		ConversationID: sessionID,
		Text:           msg.Text,
		Language:       msg.Language,
		Age:            triage.AgeGroup(msg.AgeGroup),
		Duration:       triage.DurationBucket(msg.Duration),
		HasImage:       msg.HasImage,
	}

	resp, err := s.orchestrator.HandleTurnObserved(ctx, req, func(conversationID, turnID string, rec consult.StageRecord) {
		send(protocol.StageEvent{
			Type:           protocol.TypeStageEvent,
			ConversationID: conversationID,
			TurnID:         turnID,
			Stage:          rec.Stage,
			Ran:            rec.Ran,
			ElapsedMs:      float64(rec.Elapsed.Milliseconds()),
		})
	})
	if err != nil {
		send(protocol.ErrorEvent{
			Type:           protocol.TypeErrorEvent,
			ConversationID: sessionID,
			Code:           turnErrorCode(err),
			Retryable:      errors.Is(err, session.ErrTurnInProgress),
			Detail:         err.Error(),
		})
		return
	}

	reply := resp.TranslatedReply
	if reply == "" {
		reply = resp.Reply
	}
	send(protocol.TurnResult{
		Type:           protocol.TypeTurnResult,
		ConversationID: resp.ConversationID,
		TurnID:         resp.TurnID,
		Reply:          reply,
		Language:       resp.Language,
		TriageLevel:    string(resp.Triage.Level),
		TriageScore:    float64(resp.Triage.Score),
		SafetyAction:   string(resp.Safety.Action),
		Escalated:      resp.Escalated,
		Symptoms:       resp.Symptoms,
	})
}

func turnErrorCode(err error) string {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return "session_not_found"
	case errors.Is(err, session.ErrEnded):
		return "session_ended"
	case errors.Is(err, session.ErrTurnInProgress):
		return "turn_in_progress"
	default:
		return "internal_error"
	}
}

func componentsUsed(stages []consult.StageRecord) []string {
	out := make([]string, 0, len(stages))
	for _, rec := range stages {
		if rec.Ran {
			out = append(out, rec.Stage)
		}
	}
	return out
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
