// Package recovery extracts the ledger-assigned token id from an issuance
// outcome. Strategies run in a fixed order and the first one that resolves
// wins. When none does the result is unresolved; no identifier is ever guessed.
package recovery

import (
	"context"
	"errors"
	"log/slog"

	"warranty/internal/ledger"
)

// Strategy names one step of the cascade.
type Strategy string

const (
	// StrategyTopicMatch decodes emitted logs whose topic 0 is the WarrantyIssued topic.
	StrategyTopicMatch Strategy = "topic_match"

	// StrategyBlindDecode decodes every emitted log against the event schema regardless of topic.
	StrategyBlindDecode Strategy = "blind_decode"

	// StrategyBlockRequery queries WarrantyIssued events in the inclusion block.
	StrategyBlockRequery Strategy = "block_requery"

	// StrategyNone is reported when nothing resolved.
	StrategyNone Strategy = "unresolved"
)

// State is the outcome of one strategy.
type State string

const (
	StateNotAttempted State = "not_attempted"
	StateUnresolved   State = "unresolved"
	StateResolved     State = "resolved"
)

// Attempt records how one strategy ended.
type Attempt struct {
	Strategy Strategy
	State    State
	Err      error
}

// Result is the cascade outcome. TokenID is meaningful only when Resolved.
type Result struct {
	TokenID  ledger.TokenID
	Resolved bool
	Strategy Strategy
	Attempts []Attempt
}

func (r *Result) record(s Strategy, state State, err error) {
	r.Attempts = append(r.Attempts, Attempt{Strategy: s, State: state, Err: err})
}

// State returns how s ended, or StateNotAttempted if it never ran.
func (r *Result) State(s Strategy) State {
	for _, a := range r.Attempts {
		if a.Strategy == s {
			return a.State
		}
	}
	return StateNotAttempted
}

// EventSource is the slice of the ledger adapter the cascade needs.
type EventSource interface {
	DecodeEvent(rec ledger.EventRecord) (*ledger.DecodedEvent, error)
	QueryEvents(ctx context.Context, eventName string, fromBlock, toBlock *uint64) ([]ledger.EventRecord, error)
}

// Target identifies the issuance whose token id is being recovered.
type Target struct {
	Outcome      *ledger.IssuanceOutcome
	SerialNumber string
}

type step struct {
	name Strategy
	run  func(ctx context.Context, t Target) (ledger.TokenID, bool, error)
}

// Recoverer runs the cascade.
type Recoverer struct {
	source EventSource
	logger *slog.Logger
	steps  []step
}

// Option configures a Recoverer.
type Option func(*Recoverer)

// WithLogger sets the logger used for strategy failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recoverer) {
		r.logger = logger
	}
}

// New builds a Recoverer over source.
func New(source EventSource, opts ...Option) *Recoverer {
	r := &Recoverer{source: source, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.steps = []step{
		{name: StrategyTopicMatch, run: r.topicMatch},
		{name: StrategyBlindDecode, run: r.blindDecode},
		{name: StrategyBlockRequery, run: r.blockRequery},
	}
	return r
}

// Recover never returns an error: an unresolved id is an expected outcome.
func (r *Recoverer) Recover(ctx context.Context, t Target) Result {
	result := Result{Strategy: StrategyNone}
	if t.Outcome == nil {
		return result
	}

	for _, s := range r.steps {
		id, ok, err := s.run(ctx, t)
		if err != nil {
			r.logger.WarnContext(ctx, "token id recovery strategy failed",
				"strategy", string(s.name),
				"transaction_hash", t.Outcome.TransactionHash.Hex(),
				"error", err,
			)
		}
		if !ok {
			result.record(s.name, StateUnresolved, err)
			continue
		}
		result.record(s.name, StateResolved, nil)
		result.TokenID = id
		result.Resolved = true
		result.Strategy = s.name
		return result
	}
	return result
}

func (r *Recoverer) topicMatch(_ context.Context, t Target) (ledger.TokenID, bool, error) {
	var errs []error
	for _, rec := range t.Outcome.Events {
		if rec.Signature() != ledger.WarrantyIssuedTopic {
			continue
		}
		issued, err := ledger.DecodeWarrantyIssued(rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return issued.TokenID, true, nil
	}
	return 0, false, errors.Join(errs...)
}

// blindDecode first asks the adapter, whose ABI may know a different topic for
// the event, then falls back to the fixed schema with topic 0 ignored.
func (r *Recoverer) blindDecode(_ context.Context, t Target) (ledger.TokenID, bool, error) {
	for _, rec := range t.Outcome.Events {
		decoded, err := r.source.DecodeEvent(rec)
		if err == nil && decoded.Name == ledger.EventWarrantyIssued && decoded.WarrantyIssued != nil {
			return decoded.WarrantyIssued.TokenID, true, nil
		}
	}
	for _, rec := range t.Outcome.Events {
		if issued, err := ledger.DecodeWarrantyIssued(rec); err == nil {
			return issued.TokenID, true, nil
		}
	}
	return 0, false, nil
}

func (r *Recoverer) blockRequery(ctx context.Context, t Target) (ledger.TokenID, bool, error) {
	block := t.Outcome.BlockNumber
	if block == 0 {
		return 0, false, nil
	}

	events, err := r.source.QueryEvents(ctx, ledger.EventWarrantyIssued, &block, &block)
	if err != nil {
		return 0, false, err
	}

	var (
		sameTx  *ledger.WarrantyIssued
		sameSN  *ledger.WarrantyIssued
		latest  *ledger.WarrantyIssued
		decErrs []error
	)
	// events arrive in emission order, so later matches overwrite earlier ones
	for _, rec := range events {
		decoded, err := r.source.DecodeEvent(rec)
		if err != nil || decoded.WarrantyIssued == nil {
			if err != nil {
				decErrs = append(decErrs, err)
			}
			continue
		}
		issued := decoded.WarrantyIssued
		latest = issued
		if rec.TransactionHash == t.Outcome.TransactionHash {
			sameTx = issued
		}
		if t.SerialNumber != "" && issued.SerialNumber == t.SerialNumber {
			sameSN = issued
		}
	}

	for _, candidate := range []*ledger.WarrantyIssued{sameTx, sameSN, latest} {
		if candidate != nil {
			return candidate.TokenID, true, nil
		}
	}
	return 0, false, errors.Join(decErrs...)
}
