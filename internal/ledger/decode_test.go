package ledger

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCustomer = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

func warrantyIssuedLog(t *testing.T, tokenID uint64, serial string, block uint64, index uint) EventRecord {
	t.Helper()
	data, err := defaultABI.Events[EventWarrantyIssued].Inputs.NonIndexed().Pack(
		"Laptop",
		serial,
		big.NewInt(1_700_000_000),
		big.NewInt(1_731_536_000),
	)
	require.NoError(t, err)
	return EventRecord{
		Topics: []common.Hash{
			WarrantyIssuedTopic,
			common.BigToHash(new(big.Int).SetUint64(tokenID)),
			common.BytesToHash(testCustomer.Bytes()),
		},
		Data:            data,
		BlockNumber:     block,
		Index:           index,
		TransactionHash: common.BytesToHash([]byte(serial)),
	}
}

func transferLog(tokenID uint64) EventRecord {
	return EventRecord{
		Topics: []common.Hash{
			signatureTopic("Transfer(address,address,uint256)"),
			{},
			common.BytesToHash(testCustomer.Bytes()),
			common.BigToHash(new(big.Int).SetUint64(tokenID)),
		},
	}
}

func TestWarrantyIssuedTopicMatchesABI(t *testing.T) {
	assert.Equal(t, defaultABI.Events[EventWarrantyIssued].ID, WarrantyIssuedTopic)
	assert.Equal(t, WarrantyIssuedSignature, defaultABI.Events[EventWarrantyIssued].Sig)
}

func TestDecodeEvent_WarrantyIssued(t *testing.T) {
	decoded, err := DecodeEvent(defaultABI, warrantyIssuedLog(t, 7, "SN-1", 10, 0))
	require.NoError(t, err)
	require.NotNil(t, decoded.WarrantyIssued)

	assert.Equal(t, EventWarrantyIssued, decoded.Name)
	assert.Equal(t, TokenID(7), decoded.WarrantyIssued.TokenID)
	assert.Equal(t, testCustomer, decoded.WarrantyIssued.Customer)
	assert.Equal(t, "Laptop", decoded.WarrantyIssued.ProductName)
	assert.Equal(t, "SN-1", decoded.WarrantyIssued.SerialNumber)
	assert.Equal(t, time.Unix(1_700_000_000, 0).UTC(), decoded.WarrantyIssued.PurchaseDate)
}

func TestDecodeEvent_OtherKnownEventHasNoPayload(t *testing.T) {
	decoded, err := DecodeEvent(defaultABI, transferLog(7))
	require.NoError(t, err)
	assert.Equal(t, "Transfer", decoded.Name)
	assert.Nil(t, decoded.WarrantyIssued)
}

func TestDecodeEvent_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name string
		rec  EventRecord
	}{
		{name: "anonymous log", rec: EventRecord{}},
		{name: "unknown topic", rec: EventRecord{Topics: []common.Hash{signatureTopic("Other()")}}},
		{name: "missing indexed topics", rec: EventRecord{Topics: []common.Hash{WarrantyIssuedTopic}}},
		{name: "truncated data", rec: func() EventRecord {
			rec := warrantyIssuedLog(t, 1, "SN-2", 1, 0)
			rec.Data = rec.Data[:40]
			return rec
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent(defaultABI, tt.rec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDecode))
		})
	}
}

func TestDecodeWarrantyIssued_IgnoresTopicZero(t *testing.T) {
	rec := warrantyIssuedLog(t, 9, "SN-3", 1, 0)
	rec.Topics[0] = signatureTopic("WarrantyIssued(uint256,address,string,string,uint256,uint256,string)")

	_, err := DecodeEvent(defaultABI, rec)
	require.ErrorIs(t, err, ErrDecode)

	issued, err := DecodeWarrantyIssued(rec)
	require.NoError(t, err)
	assert.Equal(t, TokenID(9), issued.TokenID)
}

func TestParseTokenID(t *testing.T) {
	id, err := ParseTokenID("42")
	require.NoError(t, err)
	assert.Equal(t, TokenID(42), id)
	assert.Equal(t, "42", id.String())

	for _, bad := range []string{"", "-1", "abc", "1.5", "18446744073709551615"} {
		_, err := ParseTokenID(bad)
		assert.Error(t, err, bad)
	}
}
