package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"codechat/internal/service/relay"
)

// EventKind tags stream events delivered to the reducer.
type EventKind int

const (
	// EventChunk carries decoded text to fold into the placeholder.
	EventChunk EventKind = iota
	// EventFailure is terminal; Text holds the fixed failure string.
	EventFailure
	// EventComplete is terminal; the stream ended cleanly.
	EventComplete
)

// Event is one reducer input from the network. Events carry the identity of
// their target message so they apply to the right session regardless of
// which session is active when they arrive.
type Event struct {
	SessionID string
	MessageID string
	Kind      EventKind
	Text      string
}

// Client issues completion requests against the gateway and decodes the
// response stream.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client. No client-level timeout: completion
// streams are long-lived and governed by the context.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Stream sends the dispatch transcript and emits events as the response
// body streams in. Exactly one terminal event (failure or complete) is
// emitted before the channel closes, on every exit path.
func (c *Client) Stream(ctx context.Context, d *Dispatch) <-chan Event {
	events := make(chan Event, 10)
	go c.run(ctx, d, events)
	return events
}

func (c *Client) run(ctx context.Context, d *Dispatch, events chan<- Event) {
	defer close(events)

	terminal := Event{
		SessionID: d.SessionID,
		MessageID: d.MessageID,
		Kind:      EventFailure,
		Text:      FailureTextRequest,
	}
	// The terminal event doubles as the gate release; it must go out on
	// every exit path.
	defer func() {
		select {
		case events <- terminal:
		case <-ctx.Done():
		}
	}()

	payload, err := json.Marshal(relay.ChatRequest{Messages: d.Transcript})
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || resp.Body == nil {
		return
	}

	if err := c.readBody(ctx, resp.Body, d, events); err != nil {
		terminal.Text = FailureTextStream
		return
	}

	terminal.Kind = EventComplete
	terminal.Text = ""
}

// readBody decodes the byte stream incrementally. Bytes of an incomplete
// trailing rune are carried across reads so multi-byte characters survive
// arbitrary chunk boundaries.
func (c *Client) readBody(ctx context.Context, body io.Reader, d *Dispatch, events chan<- Event) error {
	var carry []byte
	buf := make([]byte, 4096)

	emit := func(text string) error {
		if text == "" {
			return nil
		}
		select {
		case events <- Event{SessionID: d.SessionID, MessageID: d.MessageID, Kind: EventChunk, Text: text}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		n, err := body.Read(buf)
		if n > 0 {
			data := append(carry, buf[:n]...)
			complete, rest := splitCompleteRunes(data)
			carry = append([]byte(nil), rest...)
			if emitErr := emit(string(complete)); emitErr != nil {
				return emitErr
			}
		}

		if err == io.EOF {
			// Whatever is left is flushed as-is; a stream that ends inside
			// a rune was truncated upstream anyway.
			return emit(string(carry))
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
	}
}
