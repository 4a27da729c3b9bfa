package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// LoggingMiddleware attaches a request-scoped logger to the context and logs each request.
type LoggingMiddleware struct {
	logger zerolog.Logger
	quiet  map[string]struct{}
}

// NewLoggingMiddleware creates a new LoggingMiddleware.
// Requests to quietPaths (probes, scrapes) are logged at debug level.
func NewLoggingMiddleware(logger zerolog.Logger, quietPaths ...string) *LoggingMiddleware {
	quiet := make(map[string]struct{}, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = struct{}{}
	}
	return &LoggingMiddleware{logger: logger, quiet: quiet}
}

// Wrap wraps an http.Handler with logging.
func (m *LoggingMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqLogger := m.logger.With().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(reqLogger.WithContext(r.Context())))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		var event *zerolog.Event
		switch _, quiet := m.quiet[r.URL.Path]; {
		case status >= http.StatusInternalServerError:
			event = reqLogger.Warn()
		case quiet:
			event = reqLogger.Debug()
		default:
			event = reqLogger.Info()
		}

		event.
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Str("route", routeLabel(r)).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("request completed")
	})
}
