package relay

import (
	"context"

	"codechat/internal/domain/models"
)

// StreamEvent is one increment of a completion stream. Exactly one of Text
// or Err is meaningful; the channel closes after the final event.
type StreamEvent struct {
	Text string
	Err  error
}

// ModelInfo describes one model from the upstream listing.
type ModelInfo struct {
	ID      string
	Methods []string
}

// StreamingMethod is the generation method a candidate must advertise.
const StreamingMethod = "streamGenerateContent"

// SupportsStreaming reports whether the model can stream text generation.
func (m ModelInfo) SupportsStreaming() bool {
	for _, method := range m.Methods {
		if method == StreamingMethod {
			return true
		}
	}
	return false
}

// Turn is one provider-neutral conversation turn after transcript
// translation. Role is an upstream wire role ("user" or "model").
type Turn struct {
	Role  string
	Text  string
	Image *models.InlineImage
}

// GenerateRequest carries everything a provider needs to open one
// streaming generation call.
type GenerateRequest struct {
	System          string
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
	Turns           []Turn
}

// Provider is a streaming text-generation backend. The gemini provider
// speaks the real upstream API; the lorem provider generates filler text
// for offline development and tests.
type Provider interface {
	Name() string

	// Ready reports whether the provider can make upstream calls at all
	// (credential present). Checked per request, before any model work.
	Ready() error

	// ListModels fetches the upstream model listing. Never cached here;
	// caching is the service's concern.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// StreamGenerate opens one streaming generation call. An error return
	// means the stream never opened and the caller may try another model.
	// Errors after a successful return arrive as events on the channel and
	// are terminal.
	StreamGenerate(ctx context.Context, model string, req *GenerateRequest) (<-chan StreamEvent, error)
}
