package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"codechat/internal/catalog"
	"codechat/internal/domain"
	"codechat/internal/domain/models"
)

// ChatRequest is the inbound transcript DTO.
type ChatRequest struct {
	Messages []models.ChatMessage `json:"messages"`
}

// Validate checks the transcript shape. An empty transcript is rejected by
// the handler before this runs; here we validate the individual messages.
func (r *ChatRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Messages, validation.Required,
			validation.Each(validation.By(validateMessage))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func validateMessage(value interface{}) error {
	msg, ok := value.(models.ChatMessage)
	if !ok {
		return errors.New("must be a message object")
	}
	return validation.ValidateStruct(&msg,
		validation.Field(&msg.Role, validation.Required,
			validation.In(models.RoleUser, models.RoleAssistant)),
	)
}

// Service orchestrates model resolution and the candidate fallback loop.
// One invocation runs one strictly sequential loop; the cache is the only
// state shared across requests.
type Service struct {
	provider Provider
	manifest *catalog.Manifest
	cache    *ModelsCache
	logger   *slog.Logger
}

// NewService creates a relay service.
func NewService(provider Provider, manifest *catalog.Manifest, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		manifest: manifest,
		cache:    NewModelsCache(ttl),
		logger:   logger,
	}
}

// ResolveCandidates returns the preference-ordered candidate list. A cache
// hit inside the TTL performs zero upstream calls and returns the cached
// list verbatim. On a miss the listing call runs once, synchronously; a
// listing failure is not retried.
func (s *Service) ResolveCandidates(ctx context.Context) ([]string, error) {
	if cached := s.cache.Get(); cached != nil {
		return cached, nil
	}

	infos, err := s.provider.ListModels(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredential) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	listed := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.SupportsStreaming() {
			listed = append(listed, info.ID)
		}
	}

	ordered := s.manifest.Order(listed)
	if len(ordered) == 0 {
		return nil, domain.ErrNoEligibleModel
	}

	s.cache.Set(ordered)
	return ordered, nil
}

// CacheFetchedAt exposes the cache refresh time for the models endpoint.
func (s *Service) CacheFetchedAt() time.Time {
	return s.cache.FetchedAt()
}

// Stream validates the transcript, resolves candidates and opens a stream
// from the first candidate that accepts the call. Open failures move on to
// the next candidate; the retry budget is the candidate list itself. Once a
// stream is handed back, failures on it are terminal - never retried.
func (s *Service) Stream(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.provider.Ready(); err != nil {
		return nil, err
	}

	candidates, err := s.ResolveCandidates(ctx)
	if err != nil {
		return nil, err
	}

	genReq := BuildRequest(req.Messages)

	var lastErr error
	for _, model := range candidates {
		events, err := s.provider.StreamGenerate(ctx, model, genReq)
		if err != nil {
			lastErr = err
			s.logger.Warn("candidate failed to open stream",
				"model", model,
				"error", err,
			)
			continue
		}

		s.logger.Info("stream opened", "model", model)
		return events, nil
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrAllModelsExhausted, lastErr)
}
