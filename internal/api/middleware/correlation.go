package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/example/dscommerce/internal/events"
)

// Correlate copies the chi request id into the context used for event
// envelopes. It must run after chimw.RequestID.
func Correlate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			r = r.WithContext(events.WithCorrelationID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
