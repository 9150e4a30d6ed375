package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/emastro/vitalia/internal/config"
	"github.com/emastro/vitalia/internal/consult"
	"github.com/emastro/vitalia/internal/observability"
	"github.com/emastro/vitalia/internal/profile"
	"github.com/emastro/vitalia/internal/safety"
	"github.com/emastro/vitalia/internal/session"
	"github.com/emastro/vitalia/internal/triage"
)

type stubOrchestrator struct {
	resp *consult.Response
	err  error
}

func (s stubOrchestrator) HandleTurn(ctx context.Context, req consult.Request) (*consult.Response, error) {
	return s.HandleTurnObserved(ctx, req, nil)
}

func (s stubOrchestrator) HandleTurnObserved(ctx context.Context, req consult.Request, obs consult.StageObserver) (*consult.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	if obs != nil {
		for _, rec := range s.resp.Stages {
			obs(req.ConversationID, s.resp.TurnID, rec)
		}
	}
	return s.resp, nil
}

func newTestServer(t *testing.T, orch Orchestrator) (*Server, *session.Manager) {
	t.Helper()
	cfg := config.Config{
		SessionInactivityTimeout: 2 * time.Minute,
		DefaultLanguage:          "en",
		PersistenceEnabled:       true,
	}
	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	metrics := observability.NewMetrics("test_httpapi_" + strconv.FormatInt(time.Now().UnixNano(), 10))
	return New(cfg, sessions, orch, profile.NewInMemoryStore(), metrics), sessions
}

func TestCreateAndEndSession(t *testing.T) {
	srv, _ := newTestServer(t, stubOrchestrator{})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	body, _ := json.Marshal(map[string]string{"patient_id": "p1", "language": "es"})
	res, err := http.Post(ts.URL+"/v1/consult/session", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create session request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", res.StatusCode, http.StatusCreated)
	}

	var created map[string]any
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	sessionID, _ := created["session_id"].(string)
	if sessionID == "" {
		t.Fatalf("missing session_id in create response: %+v", created)
	}
	if lang, _ := created["language"].(string); lang != "es" {
		t.Fatalf("language = %q, want es", lang)
	}

	endRes, err := http.Post(ts.URL+"/v1/consult/session/"+sessionID+"/end", "application/json", nil)
	if err != nil {
		t.Fatalf("end session request error = %v", err)
	}
	defer endRes.Body.Close()
	if endRes.StatusCode != http.StatusOK {
		t.Fatalf("end status = %d, want %d", endRes.StatusCode, http.StatusOK)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	srv, _ := newTestServer(t, stubOrchestrator{})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/consult/session/nope")
	if err != nil {
		t.Fatalf("get session request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
}

func TestMessageEndpoint(t *testing.T) {
	stub := stubOrchestrator{resp: &consult.Response{
		ConversationID: "c1",
		TurnID:         "t1",
		Reply:          "rest and fluids usually help",
		Language:       "en",
		Triage:         triage.Result{Level: triage.LevelSelfCare, Score: 12},
		Safety:         safety.Verdict{Action: safety.ActionAllow},
		Stages: []consult.StageRecord{
			{Stage: consult.StageIntake, Ran: true},
			{Stage: consult.StageTriage, Ran: true},
			{Stage: consult.StageTranslation, Ran: false},
		},
		ProcessingTime: 42 * time.Millisecond,
	}}
	srv, _ := newTestServer(t, stub)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	body, _ := json.Marshal(map[string]any{"session_id": "c1", "message": "I have a cold"})
	res, err := http.Post(ts.URL+"/v1/consult/message", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("message request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var got map[string]any
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["reply"] != "rest and fluids usually help" {
		t.Fatalf("reply = %v", got["reply"])
	}
	if got["processing_time_ms"] != float64(42) {
		t.Fatalf("processing_time_ms = %v, want 42", got["processing_time_ms"])
	}
	components, _ := got["components_used"].([]any)
	if len(components) != 2 {
		t.Fatalf("components_used = %v, want the two stages that ran", got["components_used"])
	}
}

func TestMessageEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t, stubOrchestrator{})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	body, _ := json.Marshal(map[string]any{"message": "no session"})
	res, err := http.Post(ts.URL+"/v1/consult/message", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("message request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestMessageEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", session.ErrNotFound, http.StatusNotFound},
		{"ended", session.ErrEnded, http.StatusConflict},
		{"turn in progress", session.ErrTurnInProgress, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, stubOrchestrator{err: tc.err})
			ts := httptest.NewServer(srv.Router())
			defer ts.Close()

			body, _ := json.Marshal(map[string]any{"session_id": "c1", "message": "hello"})
			res, err := http.Post(ts.URL+"/v1/consult/message", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("message request error = %v", err)
			}
			defer res.Body.Close()
			if res.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", res.StatusCode, tc.want)
			}
		})
	}
}

func TestHealthAndPerfEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, stubOrchestrator{})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	for _, path := range []string{"/healthz", "/readyz", "/v1/perf/stages", "/metrics"} {
		res, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d", path, res.StatusCode, http.StatusOK)
		}
	}
}

func TestConsultWSStreamsStages(t *testing.T) {
	stub := stubOrchestrator{resp: &consult.Response{
		ConversationID: "ignored",
		TurnID:         "t1",
		Reply:          "rest and fluids usually help",
		Language:       "en",
		Triage:         triage.Result{Level: triage.LevelSelfCare, Score: 12},
		Safety:         safety.Verdict{Action: safety.ActionAllow},
		Stages: []consult.StageRecord{
			{Stage: consult.StageIntake, Ran: true},
			{Stage: consult.StageTriage, Ran: true},
		},
	}}
	srv, sessions := newTestServer(t, stub)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	conv := sessions.Create("", "en")

	wsURL := "ws" + ts.URL[len("http"):] + "/v1/consult/ws?session_id=" + conv.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial error = %v", err)
	}
	defer conn.Close()

	msg := map[string]string{"type": "client_message", "conversation_id": conv.ID, "text": "I have a cold"}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("ws write error = %v", err)
	}

	var stageEvents int
	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var got map[string]any
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("ws read error = %v (after %d stage events)", err, stageEvents)
		}
		switch got["type"] {
		case "stage_event":
			stageEvents++
		case "turn_result":
			if stageEvents != 2 {
				t.Fatalf("stage events before turn_result = %d, want 2", stageEvents)
			}
			if got["reply"] != "rest and fluids usually help" {
				t.Fatalf("reply = %v", got["reply"])
			}
			return
		default:
			t.Fatalf("unexpected message type %v: %+v", got["type"], got)
		}
	}
}

func TestPatientHistoryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, stubOrchestrator{})

	err := srv.store.RecordConsultation(context.Background(), profile.Consultation{
		PatientID:   "p1",
		TriageLevel: "ROUTINE",
		Summary:     "patient reported a mild fever",
	})
	if err != nil {
		t.Fatalf("RecordConsultation() error = %v", err)
	}

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/consult/patients/p1/history")
	if err != nil {
		t.Fatalf("history request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var got struct {
		PatientID     string                 `json:"patient_id"`
		Consultations []profile.Consultation `json:"consultations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.PatientID != "p1" || len(got.Consultations) != 1 {
		t.Fatalf("unexpected history payload: %+v", got)
	}
}
