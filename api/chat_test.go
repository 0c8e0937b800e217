package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jchen2215/promptforge/auth"
	"github.com/jchen2215/promptforge/conversation"
	"github.com/jchen2215/promptforge/domain"
	"github.com/jchen2215/promptforge/index"
	"github.com/jchen2215/promptforge/policy"
	"github.com/jchen2215/promptforge/protocol"
	"github.com/jchen2215/promptforge/tests/helpers"
)

const testReply = `{"status":"collecting","question_text":"What tone?","ui_elements":[],"final_prompt":""}`

type scriptedLLM struct {
	reply string
	err   error
}

func (s *scriptedLLM) NextTurn(context.Context, []domain.Turn) (string, error) {
	return s.reply, s.err
}

func (s *scriptedLLM) GenerateTitle(context.Context, string) (string, error) {
	return "Scripted Title", nil
}

func newTestHandler(t *testing.T, llm conversation.LLMClient) *Handler {
	t.Helper()

	st := helpers.NewTestFileStore(t)
	idx, err := index.New(filepath.Join(t.TempDir(), "index.json"))
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create policy engine: %v", err)
	}

	svc := conversation.New(st, llm, idx)
	authSvc := auth.NewService("test-secret", time.Hour)
	return NewHandler(svc, authSvc, policyEngine)
}

func postJSON(t *testing.T, e *echo.Echo, h echo.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestChatHappyPath(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &scriptedLLM{reply: testReply})

	rec := postJSON(t, e, h.Chat, "/chat", ChatRequest{SessionID: "abc123", UserInput: "Build me a marketing prompt"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp protocol.StructuredResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != protocol.StatusCollecting || resp.QuestionText != "What tone?" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestChatMissingSessionID(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &scriptedLLM{reply: testReply})

	rec := postJSON(t, e, h.Chat, "/chat", ChatRequest{UserInput: "hi"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatPolicyBlocksEmptyInput(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &scriptedLLM{reply: testReply})

	rec := postJSON(t, e, h.Chat, "/chat", ChatRequest{SessionID: "s1", UserInput: "   "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestChatUpstreamFailure(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &scriptedLLM{err: context.DeadlineExceeded})

	rec := postJSON(t, e, h.Chat, "/chat", ChatRequest{SessionID: "s1", UserInput: "hi"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] == "" {
		t.Fatal("expected a human-readable error message")
	}
}

func TestResetFlow(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &scriptedLLM{reply: testReply})

	rec := postJSON(t, e, h.Reset, "/reset", SessionRequest{SessionID: "s1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["reset"] != false {
		t.Fatalf("expected reset=false for unknown session, got %+v", body)
	}

	postJSON(t, e, h.Chat, "/chat", ChatRequest{SessionID: "s1", UserInput: "hi"})

	rec = postJSON(t, e, h.Reset, "/reset", SessionRequest{SessionID: "s1"})
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["reset"] != true {
		t.Fatalf("expected reset=true, got %+v", body)
	}

	// History is empty after reset.
	req := httptest.NewRequest(http.MethodGet, "/history/s1", nil)
	getRec := httptest.NewRecorder()
	c := e.NewContext(req, getRec)
	c.SetParamNames("session_id")
	c.SetParamValues("s1")
	if err := h.GetHistory(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var turns []domain.Turn
	json.Unmarshal(getRec.Body.Bytes(), &turns)
	if len(turns) != 0 {
		t.Fatalf("expected empty history after reset, got %d", len(turns))
	}
}

func TestHistoryAndSummary(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &scriptedLLM{reply: testReply})

	postJSON(t, e, h.Chat, "/chat", ChatRequest{SessionID: "s1", UserInput: "first answer"})
	postJSON(t, e, h.Chat, "/chat", ChatRequest{SessionID: "s1", UserInput: "second answer"})

	req := httptest.NewRequest(http.MethodGet, "/history/s1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("s1")
	if err := h.GetHistory(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var turns []domain.Turn
	if err := json.Unmarshal(rec.Body.Bytes(), &turns); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}

	req = httptest.NewRequest(http.MethodGet, "/summary/s1", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("s1")
	if err := h.GetSummary(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var summary struct {
		SessionID   string   `json:"session_id"`
		UserAnswers []string `json:"user_answers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if len(summary.UserAnswers) != 2 || summary.UserAnswers[0] != "first answer" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestListSessions(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &scriptedLLM{reply: testReply})

	postJSON(t, e, h.Chat, "/chat", ChatRequest{SessionID: "s1", UserInput: "hello"})

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.ListSessions(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var sessions []domain.SessionMeta
	if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "s1" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
	if sessions[0].Title != "Scripted Title" {
		t.Fatalf("unexpected title: %q", sessions[0].Title)
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t, &scriptedLLM{reply: testReply})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
