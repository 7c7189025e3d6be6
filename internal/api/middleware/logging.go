package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type LogOpts struct {
	SkipPaths     []string
	RedactHeaders []string
}

// Logger writes one "req" line per request and, for responses with status
// 400 or above, a "req_detail" line with the request headers. Redacted
// headers are masked.
func Logger(log *slog.Logger, opts LogOpts) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = true
	}
	redact := make(map[string]bool, len(opts.RedactHeaders)+1)
	redact["authorization"] = true
	for _, h := range opts.RedactHeaders {
		redact[strings.ToLower(h)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			dur := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			reqID := chimw.GetReqID(r.Context())

			log.Info("req",
				"req_id", reqID,
				"m", r.Method,
				"path", r.URL.Path,
				"status", status,
				"ms", dur.Milliseconds(),
				"bytes", ww.BytesWritten(),
			)

			if status >= 400 {
				h := map[string]string{}
				for k, vv := range r.Header {
					if len(vv) == 0 {
						continue
					}
					v := vv[0]
					if redact[strings.ToLower(k)] {
						v = "***redacted***"
					}
					h[k] = v
				}
				log.Error("req_detail",
					"req_id", reqID,
					"m", r.Method, "path", r.URL.Path,
					"status", status, "ms", dur.Milliseconds(),
					"headers", h,
				)
			}
		})
	}
}
