package domain

import "errors"

// Sentinel errors for the gateway's failure taxonomy - use with errors.Is().
// Handlers map these to HTTP status codes in a single place.
var (
	// ErrValidation indicates a malformed client payload (user-fixable).
	ErrValidation = errors.New("validation failed")

	// ErrMissingCredential indicates the upstream API key is not configured.
	// Detected per request, never at startup: the server responds with a
	// clean 500 instead of crashing.
	ErrMissingCredential = errors.New("missing upstream credential")

	// ErrUpstreamUnavailable indicates the model-listing call itself failed
	// (non-2xx or transport error). Listing failures are not retried.
	ErrUpstreamUnavailable = errors.New("upstream model listing unavailable")

	// ErrNoEligibleModel indicates listing succeeded but produced zero
	// candidates that support streaming generation.
	ErrNoEligibleModel = errors.New("no eligible model")

	// ErrAllModelsExhausted indicates every candidate failed to open a
	// stream. Wraps the most recent underlying error for diagnostics.
	ErrAllModelsExhausted = errors.New("all candidate models exhausted")
)
