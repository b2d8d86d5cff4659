package lorem

import (
	"context"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	"codechat/internal/service/relay"
)

// Provider is a mock streaming backend that generates lorem ipsum text.
// Used for offline development (PROVIDER=lorem) and tests, without real
// API keys. Model variants exercise the fallback loop:
//   - lorem-fast / lorem-slow: stream at different speeds
//   - lorem-broken: always fails to open, so the next candidate is tried
//   - lorem-embedding: embedding-only, filtered out during resolution
type Provider struct {
	generator *loremgen.Lorem
}

func NewProvider() *Provider {
	return &Provider{generator: loremgen.New()}
}

func (p *Provider) Name() string {
	return "lorem"
}

// Ready always succeeds; the mock needs no credential.
func (p *Provider) Ready() error {
	return nil
}

func (p *Provider) ListModels(ctx context.Context) ([]relay.ModelInfo, error) {
	streaming := []string{"generateContent", relay.StreamingMethod}
	return []relay.ModelInfo{
		{ID: "lorem-broken", Methods: streaming},
		{ID: "lorem-fast", Methods: streaming},
		{ID: "lorem-slow", Methods: streaming},
		{ID: "lorem-embedding", Methods: []string{"embedContent"}},
	}, nil
}

// streamDelay returns the delay between words based on the model name.
func streamDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 500 * time.Millisecond
	}
	return 33 * time.Millisecond
}

func (p *Provider) StreamGenerate(ctx context.Context, model string, req *relay.GenerateRequest) (<-chan relay.StreamEvent, error) {
	if !strings.HasPrefix(model, "lorem-") {
		return nil, fmt.Errorf("model '%s' is not supported by lorem provider", model)
	}
	if strings.Contains(model, "broken") {
		return nil, fmt.Errorf("model '%s' refused to open a stream", model)
	}

	text := p.generator.Paragraph(2, 4)
	words := strings.Fields(text)
	delay := streamDelay(model)

	events := make(chan relay.StreamEvent, 10)
	go func() {
		defer close(events)

		for i, word := range words {
			chunk := word
			if i < len(words)-1 {
				chunk += " "
			}

			select {
			case <-ctx.Done():
				return
			case events <- relay.StreamEvent{Text: chunk}:
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
	}()

	return events, nil
}
