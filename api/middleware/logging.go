package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/angelmondragon/its27-backend/pkg/logger"
	"github.com/angelmondragon/its27-backend/pkg/metrics"
)

// Logging writes one "request.complete" line per request and observes its
// latency under the chi route pattern, so /products/12 and /products/13
// share a series.
func Logging(logg *logger.Logger, httpMetrics *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logg != nil {
				r = r.WithContext(logg.WithFields(r.Context(), map[string]any{
					"method": r.Method,
					"path":   r.URL.Path,
				}))
				logg.Debug(r.Context(), "request.start")
			}

			rw := &responseRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rw, r)
			elapsed := time.Since(start)

			status := rw.statusCode()
			httpMetrics.Observe(r.Method, routePattern(r), status, elapsed)
			if logg != nil {
				logg.Info(logg.WithFields(r.Context(), map[string]any{
					"status":      status,
					"bytes":       rw.bytes,
					"duration_ms": elapsed.Milliseconds(),
				}), "request.complete")
			}
		})
	}
}

// responseRecorder remembers the status and body size. It forwards Flush so
// the settings event stream keeps working behind it.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *responseRecorder) statusCode() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

func (rw *responseRecorder) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func (rw *responseRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijack not supported")
}

func (rw *responseRecorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
