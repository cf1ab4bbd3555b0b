// Package ratelimit throttles expensive warranty endpoints per caller with a
// sliding window kept in memory or in Redis.
package ratelimit

import (
	"context"
	"math"
	"time"
)

// EndpointClass groups endpoints that share a limit.
type EndpointClass string

const (
	// ClassIssue covers ledger submissions (POST /issue).
	ClassIssue EndpointClass = "issue"
	// ClassScan covers lookups that may replay the full event history
	// (GET /serial/{serialNumber}/token).
	ClassScan EndpointClass = "scan"
)

// Policy is the number of requests allowed per window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Result is the outcome of one limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is whole seconds until a slot frees, zero when allowed.
	RetryAfter int
}

// Store counts requests per key over a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

func retryAfter(now, resetAt time.Time) int {
	return max(1, int(math.Ceil(resetAt.Sub(now).Seconds())))
}
