package httpx

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ReadyFunc reports whether a dependency can serve traffic.
type ReadyFunc func(ctx context.Context) error

// Stats is reported by /healthz.
type Stats interface {
	Len() int
}

// NewOpsHandler serves /healthz, /readyz and /metrics with request IDs,
// access logging and panic recovery.
func NewOpsHandler(logger *zap.Logger, metrics http.Handler, sessions Stats, checks map[string]ReadyFunc) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		JSONSuccess(r, w, map[string]any{"status": "ok", "sessions": sessions.Len()})
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Warn("not ready", zap.String("check", name), zap.Error(err))
				JSONError(r, w, http.StatusServiceUnavailable, "not_ready", name+" not ready")
				return
			}
		}
		JSONSuccess(r, w, map[string]any{"status": "ready"})
	})
	if metrics != nil {
		router.Handle("GET /metrics", metrics)
	}

	return Chain(router,
		RequestIDMiddleware,
		AccessLogMiddleware(logger),
		RecoveryMiddleware(logger),
	)
}

// Chain wraps h so the first middleware is outermost.
func Chain(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}
