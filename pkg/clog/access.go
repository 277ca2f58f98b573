package clog

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type accessConfig struct {
	skip []string
}

type AccessOption func(*accessConfig)

// SkipPaths keeps requests to the given exact paths out of the access log.
func SkipPaths(paths ...string) AccessOption {
	return func(c *accessConfig) {
		c.skip = append(c.skip, paths...)
	}
}

// AccessLog writes one line per finished request. The request context
// carries the method and path so handlers logging on it get them too; the
// line's level follows the response status.
func AccessLog(opts ...AccessOption) func(http.Handler) http.Handler {
	var cfg accessConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := ContextWithSlog(r.Context())
			AddAttributes(ctx, map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			next.ServeHTTP(ww, r.WithContext(ctx))
			if slices.Contains(cfg.skip, r.URL.Path) {
				return
			}

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			AddAttributes(ctx, map[string]any{
				"status":   status,
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start),
			})
			slog.Log(ctx, HTTPStatusToLevel(status).slogLevel(), http.StatusText(status))
		})
	}
}
