// Package retry runs idempotent operations with exponential backoff. It must
// only wrap reads; ledger submissions are never retried.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Operation is a unit of work that may be attempted more than once.
type Operation func(ctx context.Context) error

// Strategy decides how an operation is re-attempted.
type Strategy interface {
	Execute(ctx context.Context, op Operation) error
	Name() string
}

// Config holds retry tuning.
type Config struct {
	Enabled      bool
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// NewStrategy returns the strategy described by cfg. opts only apply when
// retries are enabled.
func NewStrategy(cfg Config, opts ...Option) Strategy {
	if !cfg.Enabled || cfg.MaxRetries <= 0 {
		return NoRetry{}
	}
	return NewExponentialBackoff(cfg.MaxRetries, cfg.InitialDelay, cfg.MaxDelay, opts...)
}

// NoRetry runs the operation exactly once.
type NoRetry struct{}

func (NoRetry) Execute(ctx context.Context, op Operation) error {
	return op(ctx)
}

func (NoRetry) Name() string {
	return "NoRetry"
}

// ExponentialBackoff doubles the delay between attempts up to maxDelay.
type ExponentialBackoff struct {
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	recoverable  func(error) bool
	logger       *slog.Logger
}

type Option func(*ExponentialBackoff)

// WithClassifier replaces the default transient-error check.
func WithClassifier(fn func(error) bool) Option {
	return func(s *ExponentialBackoff) {
		if fn != nil {
			s.recoverable = fn
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *ExponentialBackoff) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewExponentialBackoff(maxRetries int, initialDelay, maxDelay time.Duration, opts ...Option) *ExponentialBackoff {
	s := &ExponentialBackoff{
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		recoverable:  IsTransient,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ExponentialBackoff) Execute(ctx context.Context, op Operation) error {
	var lastErr error
	delay := s.initialDelay

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 0 {
				s.logger.InfoContext(ctx, "operation succeeded after retry", "attempt", attempt+1)
			}
			return nil
		}
		lastErr = err

		if !s.recoverable(err) {
			return err
		}
		if attempt >= s.maxRetries {
			break
		}

		s.logger.WarnContext(ctx, "operation failed, retrying",
			"attempt", attempt+1,
			"max_attempts", s.maxRetries+1,
			"retry_in", delay.String(),
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-timer.C:
		}
		delay *= 2
		if delay > s.maxDelay {
			delay = s.maxDelay
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", s.maxRetries+1, lastErr)
}

func (s *ExponentialBackoff) Name() string {
	return "ExponentialBackoff"
}

var transientPatterns = []string{
	"connection reset by peer",
	"connection refused",
	"timeout",
	"temporary failure",
	"network is unreachable",
	"broken pipe",
	"eof",
	"no such host",
	"too many requests",
	"503",
}

// IsTransient reports whether err looks like a network hiccup worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
