package handler

import (
	"log/slog"
	"net/http"
	"time"

	"codechat/internal/httputil"
)

// ModelsHandler exposes the resolved candidate list.
type ModelsHandler struct {
	relay  Streamer
	logger *slog.Logger
}

// NewModelsHandler creates a models handler.
func NewModelsHandler(relay Streamer, logger *slog.Logger) *ModelsHandler {
	return &ModelsHandler{relay: relay, logger: logger}
}

// ModelListResponse is the wire shape for GET /api/models.
type ModelListResponse struct {
	Models    []string  `json:"models"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// List returns the preference-ordered candidate models, refreshing the
// cache if the TTL has lapsed.
// GET /api/models
func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	models, err := h.relay.ResolveCandidates(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ModelListResponse{
		Models:    models,
		FetchedAt: h.relay.CacheFetchedAt(),
	})
}

// HealthCheck reports liveness.
// GET /health
func (h *ModelsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
