package handler

import (
	"errors"
	"net/http"

	"codechat/internal/domain"
	"codechat/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrMissingCredential):
		httputil.RespondError(w, http.StatusInternalServerError,
			"Server is not configured with an upstream API key.")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, domain.ErrNoEligibleModel):
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, domain.ErrAllModelsExhausted):
		httputil.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
