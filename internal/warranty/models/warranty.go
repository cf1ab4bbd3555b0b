package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"warranty/internal/ledger"
)

// DefaultWarrantyPeriodDays applies when an issuance request omits the period.
const DefaultWarrantyPeriodDays = 365

// MaxWarrantyPeriodDays bounds the period so ExpiresAt stays within
// time.Duration range and the value fits the store's INTEGER column.
const MaxWarrantyPeriodDays = 36500

// UnknownParty is the display name used when manufacturer or retailer is omitted.
const UnknownParty = "Unknown"

// Warranty is the local mirror of one issued warranty.
//
// Invariants:
//   - SerialNumber is unique for the lifetime of the system
//   - TokenID, once attached, is unique and never changes
//   - SerialNumber, CustomerAddress and WarrantyPeriodDays never change
//   - deactivation flips Active; records are never deleted
type Warranty struct {
	ID                  uuid.UUID       `json:"id"`
	SerialNumber        string          `json:"serialNumber"`
	ProductName         string          `json:"productName"`
	ProductModel        string          `json:"productModel"`
	Manufacturer        string          `json:"manufacturer"`
	Retailer            string          `json:"retailer"`
	CustomerAddress     string          `json:"customerAddress"`
	ManufacturerAddress string          `json:"manufacturerAddress"`
	RetailerAddress     string          `json:"retailerAddress"`
	WarrantyPeriodDays  int             `json:"warrantyPeriodDays"`
	PurchaseDate        time.Time       `json:"purchaseDate"`
	TokenID             *ledger.TokenID `json:"tokenId,omitempty"`
	TransactionHash     string          `json:"transactionHash,omitempty"`
	MetadataURI         string          `json:"metadataUri,omitempty"`
	Active              bool            `json:"isActive"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// ExpiresAt is PurchaseDate plus the warranty period in whole days.
func (w *Warranty) ExpiresAt() time.Time {
	return w.PurchaseDate.Add(time.Duration(w.WarrantyPeriodDays) * 24 * time.Hour)
}

// LocallyValid is the fallback validity rule used when the ledger cannot answer.
func (w *Warranty) LocallyValid(now time.Time) bool {
	return w.Active && w.ExpiresAt().After(now)
}

// HasTokenID reports whether the ledger identifier is known locally.
func (w *Warranty) HasTokenID() bool {
	return w.TokenID != nil
}

func (w *Warranty) Summary() WarrantySummary {
	return WarrantySummary{
		SerialNumber:    w.SerialNumber,
		ProductName:     w.ProductName,
		ProductModel:    w.ProductModel,
		CustomerAddress: w.CustomerAddress,
		PurchaseDate:    w.PurchaseDate,
		ExpiryDate:      w.ExpiresAt(),
		TokenID:         w.TokenID,
		Active:          w.Active,
	}
}

// WarrantySummary is the record view returned to callers.
type WarrantySummary struct {
	SerialNumber    string          `json:"serialNumber"`
	ProductName     string          `json:"productName"`
	ProductModel    string          `json:"productModel"`
	CustomerAddress string          `json:"customerAddress"`
	PurchaseDate    time.Time       `json:"purchaseDate"`
	ExpiryDate      time.Time       `json:"expiryDate"`
	TokenID         *ledger.TokenID `json:"tokenId,omitempty"`
	Active          bool            `json:"isActive"`
}

// NormalizeAddress lower-cases an account address for storage and lookups.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
