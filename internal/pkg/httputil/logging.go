package httputil

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/bissquit/fieldops/internal/domain"
	"github.com/bissquit/fieldops/internal/pkg/ctxlog"
	"github.com/go-chi/chi/v5/middleware"
)

type principalKey struct{}

// principal is filled in by AuthMiddleware so the access log line written
// after the handler returns can name the caller.
type principal struct {
	userID int64
	role   domain.Role
}

func setPrincipal(ctx context.Context, userID int64, role domain.Role) {
	if p, ok := ctx.Value(principalKey{}).(*principal); ok {
		p.userID = userID
		p.role = role
	}
}

// RequestLoggerMiddleware injects a logger with request_id into the context
// and writes one access log line per request. Probe endpoints log at debug.
func RequestLoggerMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := base.With("request_id", middleware.GetReqID(r.Context()))

			p := &principal{}
			ctx := context.WithValue(r.Context(), principalKey{}, p)
			ctx = ctxlog.WithLogger(ctx, logger)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			}
			if p.userID != 0 {
				attrs = append(attrs, "user_id", p.userID, "role", p.role)
			}

			level := slog.LevelInfo
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				level = slog.LevelError
			case isProbe(r.URL.Path):
				level = slog.LevelDebug
			}
			logger.Log(r.Context(), level, "http request", attrs...)
		})
	}
}

func isProbe(path string) bool {
	return path == "/healthz" || path == "/readyz"
}
