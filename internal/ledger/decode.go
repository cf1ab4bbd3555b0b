package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrDecode reports an event that does not match the expected schema.
var ErrDecode = errors.New("event decode failed")

type warrantyIssuedData struct {
	ProductName  string
	SerialNumber string
	PurchaseDate *big.Int
	ExpiryDate   *big.Int
}

// DecodeEvent resolves the event by its topic against contract and decodes it.
// Events other than WarrantyIssued decode to a name only.
func DecodeEvent(contract abi.ABI, rec EventRecord) (*DecodedEvent, error) {
	if len(rec.Topics) == 0 {
		return nil, fmt.Errorf("%w: anonymous log", ErrDecode)
	}
	ev, err := contract.EventByID(rec.Topics[0])
	if err != nil {
		return nil, fmt.Errorf("%w: unknown topic %s", ErrDecode, rec.Topics[0].Hex())
	}
	if ev.Name != EventWarrantyIssued {
		return &DecodedEvent{Name: ev.Name}, nil
	}
	issued, err := decodeWarrantyIssued(contract, rec)
	if err != nil {
		return nil, err
	}
	return &DecodedEvent{Name: ev.Name, WarrantyIssued: issued}, nil
}

// DecodeWarrantyIssued decodes rec against the built-in WarrantyIssued schema
// without consulting topic 0.
func DecodeWarrantyIssued(rec EventRecord) (*WarrantyIssued, error) {
	return decodeWarrantyIssued(defaultABI, rec)
}

func decodeWarrantyIssued(contract abi.ABI, rec EventRecord) (*WarrantyIssued, error) {
	if len(rec.Topics) != 3 {
		return nil, fmt.Errorf("%w: WarrantyIssued expects 3 topics, got %d", ErrDecode, len(rec.Topics))
	}

	var data warrantyIssuedData
	if err := contract.UnpackIntoInterface(&data, EventWarrantyIssued, rec.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if data.PurchaseDate == nil || data.ExpiryDate == nil {
		return nil, fmt.Errorf("%w: missing dates", ErrDecode)
	}

	tokenID, err := tokenIDFromBig(new(big.Int).SetBytes(rec.Topics[1].Bytes()))
	if err != nil {
		return nil, err
	}

	return &WarrantyIssued{
		TokenID:      tokenID,
		Customer:     common.BytesToAddress(rec.Topics[2].Bytes()),
		ProductName:  data.ProductName,
		SerialNumber: data.SerialNumber,
		PurchaseDate: unixTime(data.PurchaseDate),
		ExpiryDate:   unixTime(data.ExpiryDate),
	}, nil
}

func unixTime(n *big.Int) time.Time {
	if n == nil || !n.IsInt64() {
		return time.Time{}
	}
	return time.Unix(n.Int64(), 0).UTC()
}
