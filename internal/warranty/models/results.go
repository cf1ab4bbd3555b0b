package models

import (
	"time"

	"warranty/internal/ledger"
	"warranty/pkg/platform/audit"
)

// WarningTokenUnresolved is attached to issuances whose token id could not be recovered.
const WarningTokenUnresolved = "token ID could not be extracted from ledger events"

// Source names the system of record that produced an answer.
type Source string

const (
	SourceLedger Source = "ledger"
	SourceLocal  Source = "local"
)

// IssueResult is returned by a successful issuance. TokenID is nil and Warning
// is set when the ledger identifier could not be recovered.
type IssueResult struct {
	TransactionHash string          `json:"transactionHash"`
	GasUsed         uint64          `json:"gasUsed"`
	BlockNumber     uint64          `json:"blockNumber"`
	Warranty        WarrantySummary `json:"warranty"`
	TokenID         *ledger.TokenID `json:"tokenId,omitempty"`
	Warning         string          `json:"warning,omitempty"`
}

// ProductSummary identifies the covered product.
type ProductSummary struct {
	Name         string `json:"name"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
}

// ValidationResult answers whether a warranty is currently valid and which
// source decided it.
type ValidationResult struct {
	Identifier       string          `json:"identifier"`
	TokenID          *ledger.TokenID `json:"tokenId,omitempty"`
	SerialNumber     string          `json:"serialNumber"`
	IsValid          bool            `json:"isValid"`
	ValidationSource Source          `json:"validationSource"`
	Product          ProductSummary  `json:"product"`
	ExpiryDate       time.Time       `json:"expiryDate"`
}

// TokenResolution maps a serial number to its ledger identifier.
type TokenResolution struct {
	SerialNumber string         `json:"serialNumber"`
	TokenID      ledger.TokenID `json:"tokenId"`
	Source       Source         `json:"source"`
}

// SerialResolution maps a ledger identifier to its serial number. Always local.
type SerialResolution struct {
	TokenID      ledger.TokenID `json:"tokenId"`
	SerialNumber string         `json:"serialNumber"`
	Source       Source         `json:"source"`
}

// LedgerView is the live contract view of a warranty.
type LedgerView struct {
	ProductName  string    `json:"productName"`
	ProductModel string    `json:"productModel"`
	SerialNumber string    `json:"serialNumber"`
	PurchaseDate time.Time `json:"purchaseDate"`
	ExpiryDate   time.Time `json:"expiryDate"`
	Manufacturer string    `json:"manufacturer"`
	Retailer     string    `json:"retailer"`
	IsValid      bool      `json:"isValid"`
}

// FromLedgerView converts the adapter's contract view.
func FromLedgerView(v *ledger.WarrantyView) *LedgerView {
	if v == nil {
		return nil
	}
	return &LedgerView{
		ProductName:  v.ProductName,
		ProductModel: v.ProductModel,
		SerialNumber: v.SerialNumber,
		PurchaseDate: v.PurchaseDate,
		ExpiryDate:   v.ExpiryDate,
		Manufacturer: NormalizeAddress(v.Manufacturer.Hex()),
		Retailer:     NormalizeAddress(v.Retailer.Hex()),
		IsValid:      v.IsValid,
	}
}

// WarrantyDetails combines the local record with the live ledger view when
// the ledger answered.
type WarrantyDetails struct {
	Warranty      *Warranty   `json:"warranty"`
	Ledger        *LedgerView `json:"blockchain,omitempty"`
	HasLedgerData bool        `json:"hasBlockchainData"`
}

// ContractHealth is the ledger side of a health report.
type ContractHealth struct {
	Address   string `json:"address"`
	Name      string `json:"name,omitempty"`
	Symbol    string `json:"symbol,omitempty"`
	Deployed  bool   `json:"deployed"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}

// HealthReport summarizes both systems of record.
type HealthReport struct {
	Status       string          `json:"status"`
	Contract     ContractHealth  `json:"contract"`
	StoreOK      bool            `json:"storeOk"`
	Dependencies map[string]bool `json:"dependencies,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// ReconcileResult reports a journal replay.
type ReconcileResult struct {
	SerialNumber    string          `json:"serialNumber"`
	TransactionHash string          `json:"transactionHash"`
	TokenID         *ledger.TokenID `json:"tokenId,omitempty"`
	AlreadyPresent  bool            `json:"alreadyPresent"`
}

// AuditEntry is one recorded action on a warranty.
type AuditEntry struct {
	ID              string    `json:"id"`
	Category        string    `json:"category"`
	Action          string    `json:"action"`
	Timestamp       time.Time `json:"timestamp"`
	TokenID         string    `json:"tokenId,omitempty"`
	TransactionHash string    `json:"transactionHash,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	ActorID         string    `json:"actorId,omitempty"`
	RequestID       string    `json:"requestId,omitempty"`
}

// AuditTrail is the recorded history of one serial number. Readable is false
// when the audit sink is write-only (Kafka) and Entries is then empty.
type AuditTrail struct {
	SerialNumber string       `json:"serialNumber"`
	Readable     bool         `json:"readable"`
	Entries      []AuditEntry `json:"entries"`
}

func FromAuditEvent(e audit.Event) AuditEntry {
	return AuditEntry{
		ID:              e.ID,
		Category:        string(e.Category),
		Action:          e.Action,
		Timestamp:       e.Timestamp,
		TokenID:         e.TokenID,
		TransactionHash: e.TransactionHash,
		Reason:          e.Reason,
		ActorID:         e.ActorID,
		RequestID:       e.RequestID,
	}
}
