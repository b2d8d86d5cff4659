package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// MaxBodySize bounds inbound request bodies. Transcripts carry base64 image
// payloads, so the limit is generous.
const MaxBodySize = 20 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size and provides clear error messages.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
