package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Category is the normalized ledger failure taxonomy.
type Category string

const (
	// CategoryTimeout means the call did not finish before its deadline. For a
	// submission the transaction may still land.
	CategoryTimeout Category = "timeout"
	// CategoryUnavailable means the node could not be reached or the read
	// breaker is open.
	CategoryUnavailable Category = "unavailable"
	// CategoryRejected means the contract reverted or the node refused the transaction.
	CategoryRejected Category = "rejected"
	// CategoryOutOfGas covers gas estimation failures and underfunded senders.
	CategoryOutOfGas Category = "out_of_gas"
	// CategoryInvalidParams means the call could not be built from its arguments.
	CategoryInvalidParams Category = "invalid_params"
	// CategoryBadData means the node answered with data that does not fit the ABI.
	CategoryBadData Category = "bad_data"
)

// Error wraps ledger failures with a category and, when known, the hash of
// the transaction that was broadcast.
type Error struct {
	Category        Category
	Op              string
	TransactionHash *common.Hash
	Message         string
	Underlying      error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("ledger %s [%s]: %s: %v", e.Op, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("ledger %s [%s]: %s", e.Op, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// Transient reports whether the failure is about reachability rather than the request.
func (e *Error) Transient() bool {
	return e.Category == CategoryTimeout || e.Category == CategoryUnavailable
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// IsTransient reports whether err is a transient ledger failure.
func IsTransient(err error) bool {
	le, ok := AsError(err)
	return ok && le.Transient()
}

// ErrBreakerOpen is the cause of reads rejected while the read breaker is open.
var ErrBreakerOpen = errors.New("ledger read breaker open")

// RetryableRead reports whether a read is worth retrying. Reads rejected by an
// open breaker are not.
func RetryableRead(err error) bool {
	return IsTransient(err) && !errors.Is(err, ErrBreakerOpen)
}

// GetCategory returns the category of err, CategoryUnavailable when unknown.
func GetCategory(err error) Category {
	if le, ok := AsError(err); ok {
		return le.Category
	}
	return CategoryUnavailable
}

var (
	outOfGasPatterns = []string{
		"out of gas",
		"gas required exceeds",
		"insufficient funds",
		"intrinsic gas too low",
		"exceeds block gas limit",
	}
	rejectedPatterns = []string{
		"execution reverted",
		"revert",
		"nonce too low",
		"replacement transaction underpriced",
		"already known",
		"invalid sender",
	}
	invalidParamsPatterns = []string{
		"abi:",
		"argument count mismatch",
		"no contract code at given address",
		"invalid argument",
	}
)

// classify maps a raw client error onto the taxonomy. txHash is nil unless a
// transaction was already broadcast.
func classify(op string, err error, txHash *common.Hash) *Error {
	if le, ok := AsError(err); ok {
		return le
	}
	e := &Error{Op: op, TransactionHash: txHash, Underlying: err}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e.Category, e.Message = CategoryTimeout, "deadline exceeded"
		return e
	case errors.Is(err, context.Canceled):
		e.Category, e.Message = CategoryUnavailable, "request cancelled"
		return e
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, outOfGasPatterns):
		e.Category, e.Message = CategoryOutOfGas, "gas or funds exhausted"
	case containsAny(msg, invalidParamsPatterns):
		e.Category, e.Message = CategoryInvalidParams, "call could not be built"
	case containsAny(msg, rejectedPatterns):
		e.Category, e.Message = CategoryRejected, "transaction rejected"
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		e.Category, e.Message = CategoryTimeout, "node timed out"
	default:
		e.Category, e.Message = CategoryUnavailable, "node unreachable"
	}
	return e
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
