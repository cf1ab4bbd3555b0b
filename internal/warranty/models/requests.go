package models

import (
	"fmt"
	"regexp"
	"strings"

	dErrors "warranty/pkg/domain-errors"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsAddress reports whether s is a 0x-prefixed 20-byte hex account address.
func IsAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// IssueRequest asks for a new warranty. Optional fields fall back to defaults
// in WithDefaults.
type IssueRequest struct {
	SerialNumber        string `json:"serialNumber"`
	ProductName         string `json:"productName"`
	ProductModel        string `json:"productModel"`
	Manufacturer        string `json:"manufacturer,omitempty"`
	Retailer            string `json:"retailer,omitempty"`
	CustomerAddress     string `json:"customerAddress"`
	WarrantyPeriodDays  int    `json:"warrantyPeriod,omitempty"`
	ManufacturerAddress string `json:"manufacturerAddress,omitempty"`
	RetailerAddress     string `json:"retailerAddress,omitempty"`
}

func (r *IssueRequest) Normalize() {
	if r == nil {
		return
	}
	r.SerialNumber = strings.TrimSpace(r.SerialNumber)
	r.ProductName = strings.TrimSpace(r.ProductName)
	r.ProductModel = strings.TrimSpace(r.ProductModel)
	r.Manufacturer = strings.TrimSpace(r.Manufacturer)
	r.Retailer = strings.TrimSpace(r.Retailer)
	r.CustomerAddress = strings.TrimSpace(r.CustomerAddress)
	r.ManufacturerAddress = strings.TrimSpace(r.ManufacturerAddress)
	r.RetailerAddress = strings.TrimSpace(r.RetailerAddress)
}

// Validate checks required fields first, then address syntax, then ranges.
func (r *IssueRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if r.SerialNumber == "" || r.ProductName == "" || r.ProductModel == "" || r.CustomerAddress == "" {
		return dErrors.New(dErrors.CodeValidation,
			"missing required fields: serialNumber, productName, productModel, customerAddress")
	}
	if len(r.SerialNumber) > 128 {
		return dErrors.New(dErrors.CodeValidation, "serialNumber must be 128 characters or less")
	}

	if !IsAddress(r.CustomerAddress) {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid customer address")
	}
	if r.ManufacturerAddress != "" && !IsAddress(r.ManufacturerAddress) {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid manufacturer address")
	}
	if r.RetailerAddress != "" && !IsAddress(r.RetailerAddress) {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid retailer address")
	}

	if r.WarrantyPeriodDays < 0 {
		return dErrors.New(dErrors.CodeValidation, "warrantyPeriod must be positive")
	}
	if r.WarrantyPeriodDays > MaxWarrantyPeriodDays {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("warrantyPeriod must be at most %d days", MaxWarrantyPeriodDays))
	}
	return nil
}

// WithDefaults returns a copy with optional fields filled in.
func (r IssueRequest) WithDefaults() IssueRequest {
	if r.WarrantyPeriodDays == 0 {
		r.WarrantyPeriodDays = DefaultWarrantyPeriodDays
	}
	if r.ManufacturerAddress == "" {
		r.ManufacturerAddress = r.CustomerAddress
	}
	if r.RetailerAddress == "" {
		r.RetailerAddress = r.CustomerAddress
	}
	if r.Manufacturer == "" {
		r.Manufacturer = UnknownParty
	}
	if r.Retailer == "" {
		r.Retailer = UnknownParty
	}
	return r
}
