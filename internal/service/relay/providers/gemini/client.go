package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"codechat/internal/domain"
	"codechat/internal/service/relay"
)

// listTimeout bounds the model-listing call. The streaming call has no
// overall timeout; it is governed by the request context.
const listTimeout = 30 * time.Second

// Client speaks the Gemini REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Gemini provider. The key may be empty; Ready reports
// that per request instead of failing construction.
func NewClient(apiKey, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		// No client-level timeout: completion streams are long-lived.
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func (c *Client) Name() string {
	return "gemini"
}

func (c *Client) Ready() error {
	if c.apiKey == "" {
		return domain.ErrMissingCredential
	}
	return nil
}

// ListModels fetches the upstream model listing.
func (c *Client) ListModels(ctx context.Context) ([]relay.ModelInfo, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/v1beta/models?key=%s&pageSize=1000", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: %s", readAPIError(resp))
	}

	var list modelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("parse models: %w", err)
	}

	infos := make([]relay.ModelInfo, 0, len(list.Models))
	for _, m := range list.Models {
		infos = append(infos, relay.ModelInfo{
			ID:      m.id(),
			Methods: m.SupportedGenerationMethods,
		})
	}
	return infos, nil
}

// StreamGenerate opens one streaming generation call. A non-2xx response
// means the stream never opened; the returned error lets the caller move on
// to the next candidate.
func (c *Client) StreamGenerate(ctx context.Context, model string, req *relay.GenerateRequest) (<-chan relay.StreamEvent, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(buildWireRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse&key=%s",
		c.baseURL, model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("open stream for %s: %w", model, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("open stream for %s: %s", model, readAPIError(resp))
	}

	events := make(chan relay.StreamEvent, 10)
	go c.readStream(ctx, resp.Body, events)
	return events, nil
}

// buildWireRequest maps the provider-neutral request to Gemini's format.
// Each turn becomes one content entry; the trimmed text part comes first
// (only if non-empty), then the inline image (only if present).
func buildWireRequest(req *relay.GenerateRequest) *generateRequest {
	contents := make([]content, 0, len(req.Turns))
	for _, turn := range req.Turns {
		parts := make([]part, 0, 2)
		if turn.Text != "" {
			parts = append(parts, part{Text: turn.Text})
		}
		if turn.Image != nil {
			parts = append(parts, part{InlineData: &inlineData{
				MimeType: turn.Image.MimeType,
				Data:     turn.Image.Data,
			}})
		}
		contents = append(contents, content{Role: turn.Role, Parts: parts})
	}

	return &generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: req.System}}},
		Contents:          contents,
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			TopP:            req.TopP,
			MaxOutputTokens: req.MaxOutputTokens,
		},
	}
}

// readAPIError extracts a usable message from an error response body.
func readAPIError(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return resp.Status
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Sprintf("%s (%s)", apiErr.Error.Message, resp.Status)
	}
	return resp.Status
}
