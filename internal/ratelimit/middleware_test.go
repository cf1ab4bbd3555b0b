package ratelimit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warranty/pkg/testutil"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*Result, error) {
	return nil, errors.New("redis: connection refused")
}

func newLimited(t *testing.T, store Store, opts ...Option) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	m := New(store, logger, opts...)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return m.RateLimit(ClassScan)(ok)
}

func scanRequest(t *testing.T, remote string) *http.Request {
	req := testutil.NewRequest(t, http.MethodGet, "/api/warranty/serial/SN-1/token")
	req.RemoteAddr = remote
	return req
}

func TestMiddleware_RateLimit(t *testing.T) {
	policy := WithPolicy(ClassScan, Policy{Limit: 2, Window: time.Minute})

	t.Run("sets headers and rejects over the limit", func(t *testing.T) {
		h := newLimited(t, NewInMemoryStore(), policy)

		rr := testutil.DoRequest(h, scanRequest(t, "10.0.0.1:5000"))
		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", rr.Header().Get("X-RateLimit-Remaining"))

		testutil.DoRequest(h, scanRequest(t, "10.0.0.1:5001"))
		rr = testutil.DoRequest(h, scanRequest(t, "10.0.0.1:5002"))
		testutil.AssertStatus(t, rr, http.StatusTooManyRequests)
		body := testutil.DecodeError(t, rr)
		assert.Equal(t, "rate_limit_exceeded", body.Code)
		assert.Positive(t, body.RetryAfter)
		assert.NotEmpty(t, rr.Header().Get("Retry-After"))

		rr = testutil.DoRequest(h, scanRequest(t, "10.0.0.2:5000"))
		testutil.AssertStatusOK(t, rr)
	})

	t.Run("issuers are keyed by subject", func(t *testing.T) {
		h := newLimited(t, NewInMemoryStore(), policy)
		for _, remote := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
			rr := testutil.DoRequest(h, testutil.WithIssuer(scanRequest(t, remote), "acme"))
			testutil.AssertStatusOK(t, rr)
		}
		rr := testutil.DoRequest(h, testutil.WithIssuer(scanRequest(t, "10.0.0.3:1"), "acme"))
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	})

	t.Run("store failure fails open", func(t *testing.T) {
		h := newLimited(t, failingStore{}, policy)
		rr := testutil.DoRequest(h, scanRequest(t, "10.0.0.1:1"))
		testutil.AssertStatusOK(t, rr)
	})

	t.Run("disabled passes through", func(t *testing.T) {
		h := newLimited(t, NewInMemoryStore(), WithPolicy(ClassScan, Policy{Limit: 1, Window: time.Minute}), WithDisabled(true))
		for range 3 {
			rr := testutil.DoRequest(h, scanRequest(t, "10.0.0.1:1"))
			testutil.AssertStatusOK(t, rr)
		}
	})

	t.Run("class without policy passes through", func(t *testing.T) {
		h := newLimited(t, NewInMemoryStore())
		rr := testutil.DoRequest(h, scanRequest(t, "10.0.0.1:1"))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
	})
}

func TestCallerKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:4711"
	assert.Equal(t, "ip:192.0.2.7", callerKey(req))

	req.RemoteAddr = "unix-socket"
	assert.Equal(t, "ip:unix-socket", callerKey(req))

	assert.Equal(t, "issuer:acme", callerKey(testutil.WithIssuer(req, "acme")))
}
