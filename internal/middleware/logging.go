package middleware

import (
	"net/http"
	"strings"
	"time"

	"recyclegame/internal/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs API requests with their status and latency. Static
// files and the websocket upgrade are passed through untouched.
func LoggingMiddleware(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api/view" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		switch {
		case rec.status >= 500:
			log.Error("%s %s -> %d (%v)", r.Method, r.URL.Path, rec.status, time.Since(start))
		case rec.status >= 400:
			log.Warning("⚠️  %s %s -> %d (%v)", r.Method, r.URL.Path, rec.status, time.Since(start))
		default:
			log.Info("%s %s -> %d (%v)", r.Method, r.URL.Path, rec.status, time.Since(start))
		}
	})
}
