package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codechat/internal/domain"
	"codechat/internal/service/relay"
)

// fakeStreamer scripts the relay service behavior.
type fakeStreamer struct {
	streamErr   error
	streamCalls int
	events      []relay.StreamEvent
	candidates  []string
	resolveErr  error
	fetchedAt   time.Time
}

func (f *fakeStreamer) Stream(ctx context.Context, req *relay.ChatRequest) (<-chan relay.StreamEvent, error) {
	f.streamCalls++
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	ch := make(chan relay.StreamEvent, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func (f *fakeStreamer) ResolveCandidates(ctx context.Context) ([]string, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.candidates, nil
}

func (f *fakeStreamer) CacheFetchedAt() time.Time { return f.fetchedAt }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Completion(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response %q is not an error object: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func TestCompletionRejectsBadTranscript(t *testing.T) {
	streamer := &fakeStreamer{}
	h := NewChatHandler(streamer, testLogger())

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"messages": [`},
		{"empty array", `{"messages": []}`},
		{"missing field", `{}`},
		{"wrong type", `{"messages": "hello"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(t, h, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if got := errorBody(t, rec); got != InvalidTranscriptMessage {
				t.Errorf("error = %q, want %q", got, InvalidTranscriptMessage)
			}
		})
	}

	if streamer.streamCalls != 0 {
		t.Errorf("relay calls = %d, want 0 for rejected transcripts", streamer.streamCalls)
	}
}

func TestCompletionErrorMapping(t *testing.T) {
	body := `{"messages": [{"id": "1", "role": "user", "content": "hi"}]}`

	tests := []struct {
		name       string
		streamErr  error
		wantStatus int
	}{
		{"missing credential", domain.ErrMissingCredential, http.StatusInternalServerError},
		{"upstream unavailable", fmt.Errorf("%w: refused", domain.ErrUpstreamUnavailable), http.StatusInternalServerError},
		{"no eligible model", domain.ErrNoEligibleModel, http.StatusInternalServerError},
		{"all exhausted", fmt.Errorf("%w: quota", domain.ErrAllModelsExhausted), http.StatusServiceUnavailable},
		{"validation", fmt.Errorf("%w: bad role", domain.ErrValidation), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewChatHandler(&fakeStreamer{streamErr: tt.streamErr}, testLogger())
			rec := postChat(t, h, body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestCompletionStreamsChunks(t *testing.T) {
	h := NewChatHandler(&fakeStreamer{
		events: []relay.StreamEvent{
			{Text: "Here is the plan.\n"},
			{Text: "```python\nprint('hi')\n```"},
		},
	}, testLogger())

	rec := postChat(t, h, `{"messages": [{"id": "1", "role": "user", "content": "hi"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
	if !rec.Flushed {
		t.Errorf("response was never flushed")
	}

	want := "Here is the plan.\n```python\nprint('hi')\n```"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestCompletionMidStreamErrorTruncatesBody(t *testing.T) {
	h := NewChatHandler(&fakeStreamer{
		events: []relay.StreamEvent{
			{Text: "partial answer"},
			{Err: fmt.Errorf("upstream reset")},
			{Text: "never sent"},
		},
	}, testLogger())

	rec := postChat(t, h, `{"messages": [{"id": "1", "role": "user", "content": "hi"}]}`)

	// Status already committed; the body just stops.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "partial answer" {
		t.Errorf("body = %q, want the text before the failure only", rec.Body.String())
	}
}

func TestModelsList(t *testing.T) {
	fetched := time.Now().Truncate(time.Second)
	h := NewModelsHandler(&fakeStreamer{
		candidates: []string{"gemini-1.5-pro", "gemini-1.5-flash"},
		fetchedAt:  fetched,
	}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp ModelListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Models) != 2 || resp.Models[0] != "gemini-1.5-pro" {
		t.Errorf("models = %v, want the candidate list", resp.Models)
	}
	if !resp.FetchedAt.Equal(fetched) {
		t.Errorf("fetchedAt = %v, want %v", resp.FetchedAt, fetched)
	}
}

func TestModelsListError(t *testing.T) {
	h := NewModelsHandler(&fakeStreamer{resolveErr: domain.ErrNoEligibleModel}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	h := NewModelsHandler(&fakeStreamer{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q, want status ok", rec.Body.String())
	}
}
