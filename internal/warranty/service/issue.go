package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"warranty/internal/ledger"
	"warranty/internal/warranty/metadata"
	"warranty/internal/warranty/models"
	"warranty/internal/warranty/recovery"
	dErrors "warranty/pkg/domain-errors"
	"warranty/pkg/platform/audit"
	"warranty/pkg/platform/sentinel"
	"warranty/pkg/requestcontext"
)

const (
	outcomeSuccess           = "success"
	outcomeUnresolved        = "unresolved"
	outcomeLedgerRejected    = "ledger_rejected"
	outcomeLedgerUnavailable = "ledger_unavailable"
	outcomeConflict          = "conflict"
	outcomePersistenceFailed = "persistence_failed"
)

// persistTimeout bounds the local bookkeeping that follows a successful
// submission. It runs detached from the caller's cancellation.
const persistTimeout = 15 * time.Second

// Issue submits a warranty to the ledger and mirrors it locally.
//
// Order is fixed: validation, duplicate pre-check, submission, token id
// recovery, local insert. A failed submission leaves no local record. An
// unresolved token id still persists the record and sets a warning. A failed
// insert after a successful submission returns a *models.ReconcileError
// carrying the transaction hash; the issuance is journaled and never
// resubmitted.
func (s *Service) Issue(ctx context.Context, req *models.IssueRequest) (*models.IssueResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveIssueLatency(time.Since(start))
	}()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r := req.WithDefaults()

	if err := s.ensureSerialAvailable(ctx, r.SerialNumber); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	metadataURI, err := s.metadata.URI(metadata.Product{
		Name:               r.ProductName,
		Model:              r.ProductModel,
		SerialNumber:       r.SerialNumber,
		Manufacturer:       r.Manufacturer,
		Retailer:           r.Retailer,
		WarrantyPeriodDays: r.WarrantyPeriodDays,
		IssuedAt:           now,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build warranty metadata")
	}

	outcome, err := s.ledger.Submit(ctx, ledger.IssuanceParams{
		Customer:           common.HexToAddress(r.CustomerAddress),
		ProductName:        r.ProductName,
		ProductModel:       r.ProductModel,
		SerialNumber:       r.SerialNumber,
		WarrantyPeriodDays: uint64(r.WarrantyPeriodDays),
		Manufacturer:       common.HexToAddress(r.ManufacturerAddress),
		Retailer:           common.HexToAddress(r.RetailerAddress),
		MetadataURI:        metadataURI,
	})
	if err != nil {
		return nil, s.submissionFailed(ctx, r.SerialNumber, err)
	}

	// the ledger has advanced; a disconnecting caller must not abort the mirror
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	recovered := s.recoverer.Recover(ctx, recovery.Target{Outcome: outcome, SerialNumber: r.SerialNumber})
	s.metrics.IncrementRecovery(string(recovered.Strategy))

	w := &models.Warranty{
		ID:                  uuid.New(),
		SerialNumber:        r.SerialNumber,
		ProductName:         r.ProductName,
		ProductModel:        r.ProductModel,
		Manufacturer:        r.Manufacturer,
		Retailer:            r.Retailer,
		CustomerAddress:     models.NormalizeAddress(r.CustomerAddress),
		ManufacturerAddress: models.NormalizeAddress(r.ManufacturerAddress),
		RetailerAddress:     models.NormalizeAddress(r.RetailerAddress),
		WarrantyPeriodDays:  r.WarrantyPeriodDays,
		PurchaseDate:        now,
		TransactionHash:     outcome.TransactionHash.Hex(),
		MetadataURI:         metadataURI,
		Active:              true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if recovered.Resolved {
		id := recovered.TokenID
		w.TokenID = &id
	}

	if err := s.store.Insert(ctx, w); err != nil {
		return nil, s.persistenceFailed(ctx, w, outcome, err)
	}

	result := &models.IssueResult{
		TransactionHash: w.TransactionHash,
		GasUsed:         outcome.GasUsed,
		BlockNumber:     outcome.BlockNumber,
		Warranty:        w.Summary(),
		TokenID:         w.TokenID,
	}

	event := audit.Event{
		Subject:         w.SerialNumber,
		TokenID:         tokenIDString(w.TokenID),
		Customer:        w.CustomerAddress,
		TransactionHash: w.TransactionHash,
	}
	s.logAudit(ctx, audit.EventWarrantyIssued, event,
		"block_number", outcome.BlockNumber,
		"recovery_strategy", string(recovered.Strategy),
	)

	if !recovered.Resolved {
		result.Warning = models.WarningTokenUnresolved
		event.Reason = models.WarningTokenUnresolved
		s.logAudit(ctx, audit.EventTokenUnresolved, event)
		s.metrics.IncrementIssuance(outcomeUnresolved)
		return result, nil
	}

	s.metrics.IncrementIssuance(outcomeSuccess)
	return result, nil
}

// ensureSerialAvailable is the advisory duplicate check. The store's unique
// constraint remains the authority when two issuances race past it.
func (s *Service) ensureSerialAvailable(ctx context.Context, serial string) error {
	_, err := s.store.FindBySerial(ctx, serial)
	switch {
	case err == nil:
		s.metrics.IncrementIssuance(outcomeConflict)
		return dErrors.New(dErrors.CodeConflict, "warranty with this serial number already exists")
	case !errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check serial number")
	}

	_, err = s.journal.Get(ctx, serial)
	switch {
	case err == nil:
		s.metrics.IncrementIssuance(outcomeConflict)
		return dErrors.New(dErrors.CodeConflict, "serial number has an issuance pending reconciliation")
	case !errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check reconciliation journal")
	}
	return nil
}

// submissionFailed maps a ledger error. When the transaction was broadcast but
// its inclusion is unknown, the hash travels in a ReconcileError.
func (s *Service) submissionFailed(ctx context.Context, serial string, err error) error {
	code := dErrors.CodeLedgerRejected
	message := "ledger rejected the warranty issuance"
	outcome := outcomeLedgerRejected
	if category := ledger.GetCategory(err); category == ledger.CategoryTimeout || category == ledger.CategoryUnavailable {
		code = dErrors.CodeLedgerUnavailable
		message = "ledger unavailable, warranty not issued"
		outcome = outcomeLedgerUnavailable
	}
	s.metrics.IncrementIssuance(outcome)

	domainErr := dErrors.Wrap(err, code, message)
	attrs := []any{
		"serial_number", serial,
		"category", string(ledger.GetCategory(err)),
		"error", err,
	}

	if le, ok := ledger.AsError(err); ok && le.TransactionHash != nil {
		txHash := le.TransactionHash.Hex()
		s.logger.ErrorContext(ctx, "ledger submission outcome unknown",
			append(attrs, "transaction_hash", txHash, "request_id", requestcontext.RequestID(ctx))...)
		return &models.ReconcileError{TransactionHash: txHash, Err: domainErr}
	}

	s.logger.WarnContext(ctx, "ledger submission failed",
		append(attrs, "request_id", requestcontext.RequestID(ctx))...)
	return domainErr
}

// persistenceFailed handles a failed insert after the ledger advanced. Only a
// serial that is really taken locally is reported as a conflict; anything else,
// including a token id already held by another record, is journaled so the
// serial cannot be resubmitted before reconciliation.
func (s *Service) persistenceFailed(ctx context.Context, w *models.Warranty, outcome *ledger.IssuanceOutcome, err error) error {
	event := audit.Event{
		Subject:         w.SerialNumber,
		TokenID:         tokenIDString(w.TokenID),
		Customer:        w.CustomerAddress,
		TransactionHash: w.TransactionHash,
		Reason:          err.Error(),
	}

	journaled := *w
	reason := err.Error()
	if errors.Is(err, sentinel.ErrConflict) {
		if _, ferr := s.store.FindBySerial(ctx, w.SerialNumber); ferr == nil {
			s.metrics.IncrementIssuance(outcomeConflict)
			s.logAudit(ctx, audit.EventPersistenceFailed, event, "block_number", outcome.BlockNumber)
			return &models.ReconcileError{
				TransactionHash: w.TransactionHash,
				Err:             dErrors.Wrap(err, dErrors.CodeConflict, "warranty with this serial number already exists"),
			}
		}
		if w.TokenID != nil {
			// the serial is free, so the recovered token id belongs to another record
			reason = fmt.Sprintf("token id %s already attached to another warranty", w.TokenID)
			journaled.TokenID = nil
		}
	}

	s.metrics.IncrementIssuance(outcomePersistenceFailed)
	message := "warranty issued on ledger but the local record could not be saved"
	entry := models.JournalEntry{
		Warranty:        journaled,
		TransactionHash: w.TransactionHash,
		BlockNumber:     outcome.BlockNumber,
		Reason:          reason,
		RecordedAt:      requestcontext.Now(ctx),
	}
	if jerr := s.journal.Record(ctx, entry); jerr != nil {
		s.logger.ErrorContext(ctx, "failed to journal issuance for reconciliation",
			"serial_number", w.SerialNumber,
			"transaction_hash", w.TransactionHash,
			"error", jerr,
		)
		message += " or journaled; reconcile manually by transaction hash"
	}
	s.logAudit(ctx, audit.EventPersistenceFailed, event, "block_number", outcome.BlockNumber)

	return &models.ReconcileError{
		TransactionHash: w.TransactionHash,
		Err:             dErrors.Wrap(err, dErrors.CodePersistence, message),
	}
}
