package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"codechat/internal/service/relay"
)

// maxEventSize caps one SSE data line. Upstream chunks are small; this
// guards against a pathological response tying up memory.
const maxEventSize = 1 << 20

// readStream parses the alt=sse response body into stream events. Each
// "data:" line holds one GenerateContentResponse JSON payload; its text is
// forwarded untransformed, one event per chunk. Any failure here happens
// after the stream was handed to the caller, so it is terminal: one Err
// event, then close.
func (c *Client) readStream(ctx context.Context, body io.ReadCloser, events chan<- relay.StreamEvent) {
	defer close(events)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventSize)

	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			// Blank separators and SSE comments
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" {
			continue
		}

		var chunk generateResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			c.sendEvent(ctx, events, relay.StreamEvent{
				Err: fmt.Errorf("parse stream chunk: %w", err),
			})
			return
		}

		text := chunk.text()
		if text == "" {
			continue
		}
		if !c.sendEvent(ctx, events, relay.StreamEvent{Text: text}) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		c.sendEvent(ctx, events, relay.StreamEvent{
			Err: fmt.Errorf("read stream: %w", err),
		})
	}
}

// sendEvent delivers an event unless the consumer's context is gone.
func (c *Client) sendEvent(ctx context.Context, events chan<- relay.StreamEvent, ev relay.StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
