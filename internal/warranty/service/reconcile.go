package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"warranty/internal/ledger"
	"warranty/internal/warranty/models"
	"warranty/internal/warranty/recovery"
	dErrors "warranty/pkg/domain-errors"
	"warranty/pkg/platform/audit"
	"warranty/pkg/platform/sentinel"
	"warranty/pkg/requestcontext"
)

// Reconcile replays a journaled issuance into the local store. It runs only
// when a caller asks for it. A record that already exists locally counts as
// reconciled. A journaled record without a token id gets one more recovery
// attempt against its inclusion block before insert.
func (s *Service) Reconcile(ctx context.Context, serial string) (*models.ReconcileResult, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "serial number is required")
	}

	entry, err := s.journal.Get(ctx, serial)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no issuance pending reconciliation for serial number")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read reconciliation journal")
	}

	result := &models.ReconcileResult{
		SerialNumber:    serial,
		TransactionHash: entry.TransactionHash,
	}

	existing, err := s.store.FindBySerial(ctx, serial)
	switch {
	case err == nil:
		result.AlreadyPresent = true
		result.TokenID = existing.TokenID
		if err := s.finishReconcile(ctx, entry, result); err != nil {
			return nil, err
		}
		return result, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load warranty")
	}

	w := entry.Warranty
	if w.TokenID == nil {
		recovered := s.recoverer.Recover(ctx, recovery.Target{
			Outcome: &ledger.IssuanceOutcome{
				Success:         true,
				TransactionHash: common.HexToHash(entry.TransactionHash),
				BlockNumber:     entry.BlockNumber,
			},
			SerialNumber: serial,
		})
		if recovered.Resolved {
			id := recovered.TokenID
			w.TokenID = &id
		}
	}
	w.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Insert(ctx, &w); err != nil {
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, &models.ReconcileError{
				TransactionHash: entry.TransactionHash,
				Err:             dErrors.Wrap(err, dErrors.CodePersistence, "reconciliation insert failed, entry kept"),
			}
		}
		if _, ferr := s.store.FindBySerial(ctx, serial); ferr != nil {
			// the serial is still free, so the token id is held by another record
			return nil, &models.ReconcileError{
				TransactionHash: entry.TransactionHash,
				Err:             dErrors.Wrap(err, dErrors.CodeConflict, "token id already attached to another warranty, entry kept"),
			}
		}
		// a concurrent reconcile won the insert
		result.AlreadyPresent = true
	}
	result.TokenID = w.TokenID
	if err := s.finishReconcile(ctx, entry, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) finishReconcile(ctx context.Context, entry *models.JournalEntry, result *models.ReconcileResult) error {
	if err := s.journal.Remove(ctx, result.SerialNumber); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "record reconciled but journal entry could not be removed")
	}
	s.logAudit(ctx, audit.EventWarrantyReconciled, audit.Event{
		Subject:         result.SerialNumber,
		TokenID:         tokenIDString(result.TokenID),
		Customer:        entry.Warranty.CustomerAddress,
		TransactionHash: entry.TransactionHash,
	}, "already_present", result.AlreadyPresent)
	return nil
}

// PendingReconciliations lists journaled issuances, oldest first.
func (s *Service) PendingReconciliations(ctx context.Context) ([]models.JournalEntry, error) {
	entries, err := s.journal.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read reconciliation journal")
	}
	return entries, nil
}
