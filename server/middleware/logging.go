package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/ingest/logger"
)

// quietPaths are polled by orchestrators and not logged.
var quietPaths = map[string]bool{"/health": true, "/_health": true}

// RequestLogger logs method, path, status and duration of every request.
// Server errors log at error level, client errors at warn, the rest at debug.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      sw.status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if id := r.Header.Get(RequestIDHeader); id != "" {
				fields["request_id"] = id
			}

			switch {
			case sw.status >= 500:
				log.Error("Request completed", fields)
			case sw.status >= 400:
				log.Warn("Request completed", fields)
			default:
				log.Debug("Request completed", fields)
			}
		})
	}
}
