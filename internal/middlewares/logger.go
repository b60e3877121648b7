package middlewares

import (
	"net/http"
	"time"

	"github.com/learnsphere/client/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SessionStatus reports the session the gateway is acting for
type SessionStatus interface {
	State() models.SessionState
}

// LoggerMiddleware logs one entry per gateway request.
// Server errors are logged at error level and client errors at warn level.
// When session is not nil, the entry tells whether the request ran with a logged in session.
func LoggerMiddleware(logger *zap.Logger, session SessionStatus) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := recorderFor(w)

			next.ServeHTTP(rw, r)

			status := rw.code()
			fields := []zap.Field{
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", status),
				zap.Int("bytes", rw.bytes),
				zap.Duration("duration", time.Since(start)),
			}
			if session != nil {
				fields = append(fields, zap.Bool("authenticated", session.State().IsAuthenticated))
			}

			logger.Check(levelFor(status), "HTTP request").Write(fields...)
		})
	}
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}
