// Package requestcontext carries request-scoped values (request id, pinned
// request time, authenticated issuer) without tying services to net/http.
//
// Middleware sets them; services and tests read or inject them directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	valid := purchase.Add(period).After(requestcontext.Now(ctx))
package requestcontext

import (
	"context"
	"time"
)

type key int

const (
	requestIDKey key = iota
	requestTimeKey
	issuerKey
)

func value[T any](ctx context.Context, k key) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

// RequestID returns the request id, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := value[string](ctx, requestIDKey)
	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Issuer returns the authenticated issuer subject, "" for anonymous requests.
func Issuer(ctx context.Context) string {
	sub, _ := value[string](ctx, issuerKey)
	return sub
}

func WithIssuer(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, issuerKey, subject)
}

// Now returns the time pinned for this request, falling back to the wall
// clock for background work such as reconciliation replays.
func Now(ctx context.Context) time.Time {
	if t, ok := value[time.Time](ctx, requestTimeKey); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}
