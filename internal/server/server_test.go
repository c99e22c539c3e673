package server

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/szaher/kontra/internal/conversation"
	"github.com/szaher/kontra/internal/debate"
	"github.com/szaher/kontra/internal/store"
	"github.com/szaher/kontra/internal/telemetry"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	cs := conversation.NewStore(store.NewMemory(), time.Hour)
	engine := debate.NewEngine(cs,
		debate.WithFallback(debate.NewFallback(rand.New(rand.NewSource(1)))),
	)
	return NewServer(engine, opts...)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type chatResponse struct {
	ConversationID string `json:"conversation_id"`
	Messages       []struct {
		Role    string `json:"role"`
		Message string `json:"message"`
	} `json:"messages"`
}

func TestChatNewConversation(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodPost, "/chat", `{"message":"explain why pepsi is better than coke"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resp.ConversationID, "conv_") {
		t.Errorf("conversation_id = %q", resp.ConversationID)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(resp.Messages))
	}
	if resp.Messages[0].Role != "user" || resp.Messages[1].Role != "bot" {
		t.Errorf("roles = %q, %q", resp.Messages[0].Role, resp.Messages[1].Role)
	}
	if !strings.Contains(resp.Messages[1].Message, "Coca-Cola") {
		t.Errorf("bot reply = %q, should defend the stance", resp.Messages[1].Message)
	}
}

func TestChatContinuesConversation(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodPost, "/chat", `{"message":"pepsi is better than coke"}`)
	var first chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}

	rec = doJSON(t, h, http.MethodPost, "/chat",
		`{"conversation_id":"`+first.ConversationID+`","message":"young people prefer pepsi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var second chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	if second.ConversationID != first.ConversationID {
		t.Error("conversation id changed between turns")
	}
	if len(second.Messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(second.Messages))
	}
}

func TestChatValidation(t *testing.T) {
	h := newTestServer(t, WithMaxMessageLength(20)).Handler()

	tests := []struct {
		name string
		body string
	}{
		{"malformed body", `{"message":`},
		{"empty message", `{"message":""}`},
		{"oversized message", `{"message":"` + strings.Repeat("x", 21) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/chat", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestDeleteConversation(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodPost, "/chat", `{"message":"pepsi is better than coke"}`)
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	rec = doJSON(t, h, http.MethodDelete, "/chat/"+resp.ConversationID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/chat/"+resp.ConversationID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestDeleteUnknownConversation(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodDelete, "/chat/conv_nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestStats(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doJSON(t, h, http.MethodGet, "/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "max_turns") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestMetricsExposition(t *testing.T) {
	m := telemetry.NewMetrics()
	cs := conversation.NewStore(store.NewMemory(), time.Hour)
	engine := debate.NewEngine(cs,
		debate.WithFallback(debate.NewFallback(rand.New(rand.NewSource(1)))),
		debate.WithMetrics(m),
	)
	h := NewServer(engine, WithMetrics(m)).Handler()

	doJSON(t, h, http.MethodPost, "/chat", `{"message":"pepsi is better than coke"}`)

	rec := doJSON(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "kontra_turns_total") {
		t.Error("exposition should include the turns counter after a chat")
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}
