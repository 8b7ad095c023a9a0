package middleware

import (
	"net/http"
	"time"

	"dia-relay/backend/app/metrics"

	"github.com/rs/zerolog"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	route  string
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) SetRoute(pattern string) { w.route = pattern }

// Logging logs every request and feeds the HTTP metrics, labelled by the
// route pattern set through WithRoute.
func Logging(log zerolog.Logger, rec metrics.Recorder, next http.Handler) http.Handler {
	if rec == nil {
		rec = metrics.Noop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200, route: "other"}
		next.ServeHTTP(sw, r)
		duration := time.Since(start)
		rec.IncRequests(sw.route, sw.status)
		rec.ObserveRequestDuration(sw.route, duration)
		log.Info().Str("ip", r.RemoteAddr).Str("method", r.Method).Str("path", r.URL.Path).Int("status", sw.status).Dur("duration", duration).Msg("request")
	})
}
