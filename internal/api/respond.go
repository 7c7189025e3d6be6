package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/dscommerce/internal/outcome"
	"github.com/example/dscommerce/internal/validation"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Timestamp time.Time              `json:"timestamp"`
	Status    int                    `json:"status"`
	Error     string                 `json:"error"`
	Path      string                 `json:"path"`
	Errors    []validation.Violation `json:"errors,omitempty"`
}

var kindMessages = map[outcome.Kind]string{
	outcome.KindUnprocessable: "Invalid data",
	outcome.KindUnauthorized:  "Full authentication is required to access this resource",
	outcome.KindForbidden:     "Access denied",
	outcome.KindNotFound:      "Resource not found",
	outcome.KindConflict:      "Referential integrity violation",
	outcome.KindInternal:      "Internal server error",
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     message,
		Path:      r.URL.Path,
	})
}

// respondOutcome writes o with its contractual status. Success payloads are
// written as is; failures get an ErrorResponse.
func (h *Handlers) respondOutcome(w http.ResponseWriter, r *http.Request, o outcome.Outcome) {
	status := o.Status()
	switch {
	case o.Kind == outcome.KindNoContent:
		w.WriteHeader(status)
		return
	case o.Success():
		respondJSON(w, status, o.Payload)
		return
	}

	if o.Kind == outcome.KindInternal {
		h.log.Error("request failed", "path", r.URL.Path, "err", o.Err)
	}
	respondJSON(w, status, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     kindMessages[o.Kind],
		Path:      r.URL.Path,
		Errors:    o.Violations(),
	})
}
