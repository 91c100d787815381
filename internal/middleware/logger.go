package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if r.status == 0 {
		r.status = statusCode
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

// RequestLogger пишет в лог каждый завершенный запрос.
// Ставится после middleware.RequestID, чтобы в записи был ID запроса.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := &responseRecorder{ResponseWriter: w}

			defer func() {
				status := rr.status
				if status == 0 {
					status = http.StatusOK
				}
				entry := log.WithFields(logrus.Fields{
					"http.req.id":       middleware.GetReqID(r.Context()),
					"http.req.method":   r.Method,
					"http.req.path":     r.URL.Path,
					"http.resp.status":  status,
					"http.resp.bytes":   rr.bytes,
					"http.resp.took_ms": time.Since(start).Milliseconds(),
				})
				if status >= http.StatusInternalServerError {
					entry.Warn("request complete")
				} else {
					entry.Info("request complete")
				}
			}()

			next.ServeHTTP(rr, r)
		})
	}
}
