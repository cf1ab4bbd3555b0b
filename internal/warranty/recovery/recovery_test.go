package recovery

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warranty/internal/ledger"
)

var (
	customer = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	txHash   = common.HexToHash("0xaaaa")
	otherTx  = common.HexToHash("0xbbbb")
)

type fakeSource struct {
	abi     abi.ABI
	events  []ledger.EventRecord
	err     error
	queries int
	from    *uint64
	to      *uint64
	decode  func(rec ledger.EventRecord) (*ledger.DecodedEvent, error)
}

func newFakeSource(t *testing.T) *fakeSource {
	t.Helper()
	contract, err := ledger.ParseABI(ledger.ContractABI)
	require.NoError(t, err)
	return &fakeSource{abi: contract}
}

func (f *fakeSource) DecodeEvent(rec ledger.EventRecord) (*ledger.DecodedEvent, error) {
	if f.decode != nil {
		return f.decode(rec)
	}
	return ledger.DecodeEvent(f.abi, rec)
}

func (f *fakeSource) QueryEvents(_ context.Context, _ string, from, to *uint64) ([]ledger.EventRecord, error) {
	f.queries++
	f.from, f.to = from, to
	return f.events, f.err
}

func issuedLog(t *testing.T, contract abi.ABI, tokenID int64, serial string, tx common.Hash, index uint) ledger.EventRecord {
	t.Helper()
	data, err := contract.Events[ledger.EventWarrantyIssued].Inputs.NonIndexed().Pack(
		"Laptop", serial, big.NewInt(1_700_000_000), big.NewInt(1_731_536_000),
	)
	require.NoError(t, err)
	return ledger.EventRecord{
		Topics: []common.Hash{
			ledger.WarrantyIssuedTopic,
			common.BigToHash(big.NewInt(tokenID)),
			common.BytesToHash(customer.Bytes()),
		},
		Data:            data,
		BlockNumber:     12,
		TransactionHash: tx,
		Index:           index,
	}
}

func transferLog(tokenID int64) ledger.EventRecord {
	return ledger.EventRecord{
		Topics: []common.Hash{
			crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")),
			{},
			common.BytesToHash(customer.Bytes()),
			common.BigToHash(big.NewInt(tokenID)),
		},
		BlockNumber:     12,
		TransactionHash: txHash,
	}
}

func outcome(events ...ledger.EventRecord) *ledger.IssuanceOutcome {
	return &ledger.IssuanceOutcome{
		Success:         true,
		TransactionHash: txHash,
		BlockNumber:     12,
		Events:          events,
	}
}

func TestRecover_TopicMatchAloneDecides(t *testing.T) {
	src := newFakeSource(t)
	out := outcome(transferLog(5), issuedLog(t, src.abi, 5, "SN-1", txHash, 1))

	result := New(src).Recover(context.Background(), Target{Outcome: out, SerialNumber: "SN-1"})

	require.True(t, result.Resolved)
	assert.Equal(t, ledger.TokenID(5), result.TokenID)
	assert.Equal(t, StrategyTopicMatch, result.Strategy)
	assert.Len(t, result.Attempts, 1)
	assert.Equal(t, StateResolved, result.State(StrategyTopicMatch))
	assert.Equal(t, StateNotAttempted, result.State(StrategyBlindDecode))
	assert.Equal(t, StateNotAttempted, result.State(StrategyBlockRequery))
	assert.Zero(t, src.queries)
}

func TestRecover_BlindDecodeToleratesTopicMismatch(t *testing.T) {
	src := newFakeSource(t)
	rec := issuedLog(t, src.abi, 8, "SN-2", txHash, 0)
	rec.Topics[0] = crypto.Keccak256Hash([]byte("WarrantyIssued(uint256,address,string,string,uint256,uint256,string)"))

	result := New(src).Recover(context.Background(), Target{Outcome: outcome(rec)})

	require.True(t, result.Resolved)
	assert.Equal(t, ledger.TokenID(8), result.TokenID)
	assert.Equal(t, StrategyBlindDecode, result.Strategy)
	assert.Equal(t, StateUnresolved, result.State(StrategyTopicMatch))
	assert.Zero(t, src.queries)
}

func TestRecover_BlindDecodeUsesAdapterSchema(t *testing.T) {
	src := newFakeSource(t)
	src.decode = func(rec ledger.EventRecord) (*ledger.DecodedEvent, error) {
		return &ledger.DecodedEvent{
			Name:           ledger.EventWarrantyIssued,
			WarrantyIssued: &ledger.WarrantyIssued{TokenID: 21},
		}, nil
	}
	rec := ledger.EventRecord{Topics: []common.Hash{common.HexToHash("0x01")}}

	result := New(src).Recover(context.Background(), Target{Outcome: outcome(rec)})

	require.True(t, result.Resolved)
	assert.Equal(t, ledger.TokenID(21), result.TokenID)
	assert.Equal(t, StrategyBlindDecode, result.Strategy)
}

func TestRecover_BlockRequery(t *testing.T) {
	tests := []struct {
		name   string
		serial string
		events func(contract abi.ABI) []ledger.EventRecord
		want   ledger.TokenID
	}{
		{
			name:   "prefers the same transaction",
			serial: "SN-3",
			events: func(contract abi.ABI) []ledger.EventRecord {
				return []ledger.EventRecord{
					issuedLog(t, contract, 30, "SN-3", txHash, 0),
					issuedLog(t, contract, 31, "SN-X", otherTx, 1),
				}
			},
			want: 30,
		},
		{
			name:   "then the same serial",
			serial: "SN-3",
			events: func(contract abi.ABI) []ledger.EventRecord {
				return []ledger.EventRecord{
					issuedLog(t, contract, 40, "SN-3", otherTx, 0),
					issuedLog(t, contract, 41, "SN-Y", otherTx, 1),
				}
			},
			want: 40,
		},
		{
			name: "otherwise the last event in the block",
			events: func(contract abi.ABI) []ledger.EventRecord {
				return []ledger.EventRecord{
					issuedLog(t, contract, 50, "SN-A", otherTx, 0),
					issuedLog(t, contract, 51, "SN-B", otherTx, 1),
					{Topics: []common.Hash{ledger.WarrantyIssuedTopic}, BlockNumber: 12, Index: 2},
				}
			},
			want: 51,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource(t)
			src.events = tt.events(src.abi)

			result := New(src).Recover(context.Background(), Target{Outcome: outcome(transferLog(1)), SerialNumber: tt.serial})

			require.True(t, result.Resolved)
			assert.Equal(t, tt.want, result.TokenID)
			assert.Equal(t, StrategyBlockRequery, result.Strategy)
			assert.Equal(t, StateUnresolved, result.State(StrategyTopicMatch))
			assert.Equal(t, StateUnresolved, result.State(StrategyBlindDecode))
			require.NotNil(t, src.from)
			assert.Equal(t, uint64(12), *src.from)
			assert.Equal(t, uint64(12), *src.to)
		})
	}
}

func TestRecover_NothingDecodableIsUnresolved(t *testing.T) {
	src := newFakeSource(t)
	src.err = errors.New("connection refused")

	result := New(src).Recover(context.Background(), Target{Outcome: outcome(transferLog(1))})

	assert.False(t, result.Resolved)
	assert.Zero(t, result.TokenID)
	assert.Equal(t, StrategyNone, result.Strategy)
	require.Len(t, result.Attempts, 3)
	assert.Equal(t, StateUnresolved, result.State(StrategyBlockRequery))
	assert.Error(t, result.Attempts[2].Err)
}

func TestRecover_EmptyBlockIsUnresolved(t *testing.T) {
	src := newFakeSource(t)

	result := New(src).Recover(context.Background(), Target{Outcome: outcome()})

	assert.False(t, result.Resolved)
	assert.Zero(t, result.TokenID)
	assert.Equal(t, 1, src.queries)
}

func TestRecover_WithoutInclusionBlockSkipsRequery(t *testing.T) {
	src := newFakeSource(t)
	out := outcome()
	out.BlockNumber = 0

	result := New(src).Recover(context.Background(), Target{Outcome: out})

	assert.False(t, result.Resolved)
	assert.Zero(t, src.queries)
}

func TestRecover_NilOutcome(t *testing.T) {
	result := New(newFakeSource(t)).Recover(context.Background(), Target{})
	assert.False(t, result.Resolved)
	assert.Empty(t, result.Attempts)
}
