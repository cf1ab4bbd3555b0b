package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err       error
		want      Category
		transient bool
	}{
		{err: context.DeadlineExceeded, want: CategoryTimeout, transient: true},
		{err: fmt.Errorf("post: %w", context.Canceled), want: CategoryUnavailable, transient: true},
		{err: errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"), want: CategoryUnavailable, transient: true},
		{err: errors.New("execution reverted: serial already registered"), want: CategoryRejected},
		{err: errors.New("gas required exceeds allowance (30000000)"), want: CategoryOutOfGas},
		{err: errors.New("insufficient funds for gas * price + value"), want: CategoryOutOfGas},
		{err: errors.New("abi: cannot use string as type address as argument"), want: CategoryInvalidParams},
		{err: errors.New("no contract code at given address"), want: CategoryInvalidParams},
		{err: errors.New("i/o timeout"), want: CategoryTimeout, transient: true},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got := classify("op", tt.err, nil)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.transient, got.Transient())
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_KeepsTransactionHash(t *testing.T) {
	hash := common.HexToHash("0x01")
	got := classify("wait_mined", context.DeadlineExceeded, &hash)
	assert.Equal(t, CategoryTimeout, got.Category)
	assert.Equal(t, &hash, got.TransactionHash)
}

func TestClassify_PassesThroughLedgerErrors(t *testing.T) {
	original := &Error{Category: CategoryBadData, Op: "call"}
	assert.Same(t, original, classify("other", fmt.Errorf("wrapped: %w", original), nil))
}

func TestRetryableRead(t *testing.T) {
	assert.True(t, RetryableRead(&Error{Category: CategoryUnavailable}))
	assert.False(t, RetryableRead(&Error{Category: CategoryUnavailable, Underlying: ErrBreakerOpen}))
	assert.False(t, RetryableRead(&Error{Category: CategoryRejected}))
	assert.False(t, RetryableRead(errors.New("plain")))
}
