package kafka

import (
	"testing"
	"time"

	audit "warranty/pkg/platform/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_DerivesCategoryFromAction(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	data, err := Encode(audit.Event{
		ID:              "evt-1",
		Category:        audit.CategoryOperations,
		Timestamp:       ts,
		Subject:         "SN-100",
		Action:          string(audit.EventWarrantyIssued),
		TokenID:         "7",
		TransactionHash: "0xabc",
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "evt-1",
		"category": "compliance",
		"timestamp": "2025-03-01T10:00:00Z",
		"subject": "SN-100",
		"action": "warranty_issued",
		"token_id": "7",
		"transaction_hash": "0xabc"
	}`, string(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, audit.CategoryCompliance, decoded.Category)
	assert.True(t, ts.Equal(decoded.Timestamp))
}

func TestDecode_RejectsBadTimestamp(t *testing.T) {
	_, err := Decode([]byte(`{"id":"x","timestamp":"yesterday"}`))
	require.Error(t, err)
}
