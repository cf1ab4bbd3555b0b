package service

import (
	"context"

	"warranty/internal/warranty/models"
	"warranty/pkg/requestcontext"
)

// Validate answers whether the warranty behind identifier is currently valid.
// The ledger is asked first when a token id is attached; any ledger failure
// falls back to the local rule. The answer names its source and the two are
// never combined.
func (s *Service) Validate(ctx context.Context, identifier string) (*models.ValidationResult, error) {
	w, err := s.lookup(ctx, identifier)
	if err != nil {
		return nil, err
	}

	result := &models.ValidationResult{
		Identifier:   identifier,
		TokenID:      w.TokenID,
		SerialNumber: w.SerialNumber,
		Product: models.ProductSummary{
			Name:         w.ProductName,
			Model:        w.ProductModel,
			Manufacturer: w.Manufacturer,
		},
		ExpiryDate: w.ExpiresAt(),
	}

	if w.HasTokenID() {
		valid, err := s.ledger.IsWarrantyValid(ctx, *w.TokenID)
		if err == nil {
			result.IsValid = valid
			result.ValidationSource = models.SourceLedger
			s.metrics.IncrementValidation(string(models.SourceLedger))
			return result, nil
		}
		s.logger.WarnContext(ctx, "ledger validity check failed, using local record",
			"serial_number", w.SerialNumber,
			"token_id", w.TokenID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	result.IsValid = w.LocallyValid(requestcontext.Now(ctx))
	result.ValidationSource = models.SourceLocal
	s.metrics.IncrementValidation(string(models.SourceLocal))
	return result, nil
}
