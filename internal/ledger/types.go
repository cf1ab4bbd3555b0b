// Package ledger is the gateway to the warranty smart contract on an EVM chain.
// It submits issuance transactions, waits for inclusion, replays historical
// events and answers read-only contract calls. It holds no durable state.
package ledger

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TokenID is the identifier the contract mints for one warranty.
type TokenID uint64

// ParseTokenID parses a decimal token identifier.
func ParseTokenID(s string) (TokenID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n > math.MaxInt64 {
		return 0, fmt.Errorf("invalid token id %q", s)
	}
	return TokenID(n), nil
}

func (t TokenID) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

// MarshalText renders the id as a decimal string so JSON clients never lose precision.
func (t TokenID) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TokenID) UnmarshalText(b []byte) error {
	parsed, err := ParseTokenID(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TokenID) BigInt() *big.Int {
	return new(big.Int).SetUint64(uint64(t))
}

func tokenIDFromBig(n *big.Int) (TokenID, error) {
	if n == nil || n.Sign() < 0 || !n.IsUint64() || n.Uint64() > math.MaxInt64 {
		return 0, fmt.Errorf("%w: token id out of range", ErrDecode)
	}
	return TokenID(n.Uint64()), nil
}

// IssuanceParams are the arguments of issueWarranty.
type IssuanceParams struct {
	Customer           common.Address
	ProductName        string
	ProductModel       string
	SerialNumber       string
	WarrantyPeriodDays uint64
	Manufacturer       common.Address
	Retailer           common.Address
	MetadataURI        string
}

// IssuanceOutcome describes an included issuance transaction.
type IssuanceOutcome struct {
	Success         bool
	TransactionHash common.Hash
	GasUsed         uint64
	BlockNumber     uint64
	Events          []EventRecord
}

// EventRecord is one raw log emitted by the contract.
type EventRecord struct {
	Address         common.Address
	Topics          []common.Hash
	Data            []byte
	BlockNumber     uint64
	TransactionHash common.Hash
	Index           uint
}

// Signature returns the first topic, or the zero hash for anonymous logs.
func (e EventRecord) Signature() common.Hash {
	if len(e.Topics) == 0 {
		return common.Hash{}
	}
	return e.Topics[0]
}

func eventFromLog(l *types.Log) EventRecord {
	return EventRecord{
		Address:         l.Address,
		Topics:          append([]common.Hash(nil), l.Topics...),
		Data:            append([]byte(nil), l.Data...),
		BlockNumber:     l.BlockNumber,
		TransactionHash: l.TxHash,
		Index:           l.Index,
	}
}

// WarrantyIssued is the typed payload of the WarrantyIssued event.
type WarrantyIssued struct {
	TokenID      TokenID
	Customer     common.Address
	ProductName  string
	SerialNumber string
	PurchaseDate time.Time
	ExpiryDate   time.Time
}

// DecodedEvent is the result of DecodeEvent. WarrantyIssued is set only when
// Name is EventWarrantyIssued.
type DecodedEvent struct {
	Name           string
	WarrantyIssued *WarrantyIssued
}

// WarrantyView is the live contract view of one warranty.
type WarrantyView struct {
	ProductName  string
	ProductModel string
	SerialNumber string
	PurchaseDate time.Time
	ExpiryDate   time.Time
	Manufacturer common.Address
	Retailer     common.Address
	IsValid      bool
}

// ContractInfo identifies the deployed contract.
type ContractInfo struct {
	Address  common.Address
	Name     string
	Symbol   string
	Deployed bool
}
