// Package ratelimit applies a fixed-window request budget per client key.
package ratelimit

import (
	"context"
	"net"
	"net/http"

	"github.com/guaraci/paylink/internal/pkg/httputil"
	"github.com/guaraci/paylink/internal/pkg/logger"
)

// RejectMessage is returned with 429 responses.
const RejectMessage = "Muitas requisições, tente novamente mais tarde."

// Limiter decides whether one more request for key fits the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// KeyFunc derives the client key from a request.
type KeyFunc func(r *http.Request) string

// KeyByIP keys by the remote address. Run after middleware.RealIP so proxy
// headers are honored.
func KeyByIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// MiddlewareOption customizes Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	onReject func(r *http.Request)
}

// OnReject is called for every rejected request.
func OnReject(fn func(r *http.Request)) MiddlewareOption {
	return func(c *middlewareConfig) { c.onReject = fn }
}

// Middleware rejects requests over budget with 429. Limiter errors are
// logged and the request is let through.
func Middleware(l Limiter, keyFn KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if keyFn == nil {
		keyFn = KeyByIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			allowed, err := l.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable, allowing request", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if cfg.onReject != nil {
					cfg.onReject(r)
				}
				httputil.TooManyRequests(w, RejectMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
