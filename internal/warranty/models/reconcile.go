package models

import (
	"errors"
	"fmt"
	"time"
)

// ReconcileError marks a failure after the ledger already advanced. Callers
// must reconcile using TransactionHash; the issuance must not be resubmitted.
type ReconcileError struct {
	TransactionHash string
	Err             error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("reconciliation required for tx %s: %v", e.TransactionHash, e.Err)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// AsReconcileError extracts a *ReconcileError from err's chain.
func AsReconcileError(err error) (*ReconcileError, bool) {
	var re *ReconcileError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// JournalEntry is the intended record of an issuance whose local persistence
// failed after ledger inclusion.
type JournalEntry struct {
	Warranty        Warranty  `json:"warranty"`
	TransactionHash string    `json:"transactionHash"`
	BlockNumber     uint64    `json:"blockNumber"`
	Reason          string    `json:"reason"`
	RecordedAt      time.Time `json:"recordedAt"`
}
