package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"warranty/pkg/platform/httputil"
	"warranty/pkg/requestcontext"
)

// Middleware enforces per-class policies. Authenticated issuers are keyed by
// subject, anonymous callers by client IP.
type Middleware struct {
	store    Store
	policies map[EndpointClass]Policy
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns every check into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithPolicy sets the limit for class.
func WithPolicy(class EndpointClass, policy Policy) Option {
	return func(m *Middleware) {
		m.policies[class] = policy
	}
}

func New(store Store, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:    store,
		logger:   logger,
		policies: make(map[EndpointClass]Policy),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

type exceededResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	RetryAfter       int    `json:"retry_after"`
}

// RateLimit returns middleware for class. Classes without a policy pass
// through. Store failures fail open.
func (m *Middleware) RateLimit(class EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy, ok := m.policies[class]
			if m.disabled || !ok || policy.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := string(class) + ":" + callerKey(r)

			result, err := m.store.Allow(ctx, key, policy.Limit, policy.Window)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"class", string(class),
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", string(class),
					"caller", key,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests, exceededResponse{
					Error:            "rate_limit_exceeded",
					ErrorDescription: "Too many requests. Please try again later.",
					RetryAfter:       result.RetryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if issuer := requestcontext.Issuer(r.Context()); issuer != "" {
		return "issuer:" + issuer
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
