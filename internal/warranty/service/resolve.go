package service

import (
	"context"
	"errors"
	"strings"

	"warranty/internal/ledger"
	"warranty/internal/warranty/models"
	dErrors "warranty/pkg/domain-errors"
	"warranty/pkg/platform/audit"
	"warranty/pkg/platform/sentinel"
	"warranty/pkg/requestcontext"
)

// ResolveTokenID maps a serial number to its token id. The local index answers
// when it can; otherwise the full WarrantyIssued history is replayed. A token
// id found that way is attached to a local record that lacks one.
func (s *Service) ResolveTokenID(ctx context.Context, serial string) (*models.TokenResolution, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "serial number is required")
	}

	w, err := s.store.FindBySerial(ctx, serial)
	switch {
	case err == nil && w.HasTokenID():
		s.metrics.IncrementResolution(string(models.SourceLocal))
		return &models.TokenResolution{SerialNumber: serial, TokenID: *w.TokenID, Source: models.SourceLocal}, nil
	case err != nil && !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load warranty")
	}

	preferredTx := ""
	if w != nil {
		preferredTx = w.TransactionHash
	}

	// concurrent misses for one serial share a single replay; the replay must
	// outlive whichever caller started it
	v, err, _ := s.scans.Do(serial, func() (any, error) {
		return s.scanLedger(context.WithoutCancel(ctx), serial, preferredTx)
	})
	if err != nil {
		return nil, err
	}
	tokenID := v.(ledger.TokenID)
	s.metrics.IncrementResolution(string(models.SourceLedger))

	if w != nil {
		s.attachDiscovered(ctx, w, tokenID)
	}
	return &models.TokenResolution{SerialNumber: serial, TokenID: tokenID, Source: models.SourceLedger}, nil
}

// scanLedger replays WarrantyIssued events and returns the first whose serial
// matches, preferring the event from preferredTx when given.
func (s *Service) scanLedger(ctx context.Context, serial, preferredTx string) (ledger.TokenID, error) {
	if id, ok, err := s.resolutions.Get(ctx, serial); err == nil && ok {
		return id, nil
	} else if err != nil {
		s.logger.WarnContext(ctx, "resolution cache read failed", "serial_number", serial, "error", err)
	}

	events, err := s.ledger.QueryEvents(ctx, ledger.EventWarrantyIssued, nil, nil)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "ledger unavailable, serial number not found locally")
	}

	var (
		found bool
		match ledger.TokenID
	)
	for _, rec := range events {
		decoded, err := s.ledger.DecodeEvent(rec)
		if err != nil || decoded.WarrantyIssued == nil {
			continue
		}
		if decoded.WarrantyIssued.SerialNumber != serial {
			continue
		}
		if preferredTx != "" && strings.EqualFold(rec.TransactionHash.Hex(), preferredTx) {
			match, found = decoded.WarrantyIssued.TokenID, true
			break
		}
		if !found {
			match, found = decoded.WarrantyIssued.TokenID, true
			if preferredTx == "" {
				break
			}
		}
	}
	if !found {
		return 0, dErrors.New(dErrors.CodeNotFound, "no warranty found for serial number")
	}

	if err := s.resolutions.Put(ctx, serial, match); err != nil {
		s.logger.WarnContext(ctx, "resolution cache write failed", "serial_number", serial, "error", err)
	}
	return match, nil
}

func (s *Service) attachDiscovered(ctx context.Context, w *models.Warranty, tokenID ledger.TokenID) {
	err := s.store.AttachTokenID(ctx, w.SerialNumber, tokenID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to attach discovered token id",
			"serial_number", w.SerialNumber,
			"token_id", tokenID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	s.logAudit(ctx, audit.EventTokenAttached, audit.Event{
		Subject:         w.SerialNumber,
		TokenID:         tokenID.String(),
		Customer:        w.CustomerAddress,
		TransactionHash: w.TransactionHash,
	})
}

// ResolveSerial maps a token id to its serial number using the local index only.
func (s *Service) ResolveSerial(ctx context.Context, tokenID string) (*models.SerialResolution, error) {
	id, err := ledger.ParseTokenID(strings.TrimSpace(tokenID))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "token id must be a non-negative integer")
	}
	w, err := s.store.FindByTokenID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load warranty")
	}
	return &models.SerialResolution{TokenID: id, SerialNumber: w.SerialNumber, Source: models.SourceLocal}, nil
}
