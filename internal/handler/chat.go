package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"codechat/internal/httputil"
	"codechat/internal/service/relay"
)

// InvalidTranscriptMessage is the 400 body for a missing, empty or
// malformed transcript.
const InvalidTranscriptMessage = "Invalid request. 'messages' must be a non-empty array."

// Streamer is the slice of the relay service the handlers depend on.
type Streamer interface {
	Stream(ctx context.Context, req *relay.ChatRequest) (<-chan relay.StreamEvent, error)
	ResolveCandidates(ctx context.Context) ([]string, error)
	CacheFetchedAt() time.Time
}

// ChatHandler handles the streaming completion endpoint.
type ChatHandler struct {
	relay  Streamer
	logger *slog.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(relay Streamer, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{relay: relay, logger: logger}
}

// Completion proxies one transcript to the upstream and relays the token
// stream as it arrives.
// POST /api/chat
//
// The response commits to 200 the moment a candidate's stream opens.
// A mid-stream upstream failure after that point cannot change the status;
// the caller sees a stream that ends early instead of completing cleanly.
func (h *ChatHandler) Completion(w http.ResponseWriter, r *http.Request) {
	var req relay.ChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, InvalidTranscriptMessage)
		return
	}
	if len(req.Messages) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, InvalidTranscriptMessage)
		return
	}

	events, err := h.relay.Stream(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	for ev := range events {
		if ev.Err != nil {
			// Headers are long gone; the truncated body is the signal.
			h.logger.Error("stream failed mid-flight", "error", ev.Err)
			return
		}

		if _, err := io.WriteString(w, ev.Text); err != nil {
			h.logger.Debug("client disconnected", "error", err)
			return
		}
		flusher.Flush()
	}
}
