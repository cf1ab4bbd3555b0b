package service

import (
	"context"
	"errors"
	"strings"

	"warranty/internal/warranty/models"
	dErrors "warranty/pkg/domain-errors"
	"warranty/pkg/platform/audit"
	"warranty/pkg/requestcontext"
)

// Get returns the local record and, when a token id is attached and the
// ledger answers, its live contract view.
func (s *Service) Get(ctx context.Context, identifier string) (*models.WarrantyDetails, error) {
	w, err := s.lookup(ctx, identifier)
	if err != nil {
		return nil, err
	}

	details := &models.WarrantyDetails{Warranty: w}
	if !w.HasTokenID() {
		return details, nil
	}

	view, err := s.ledger.WarrantyDetails(ctx, *w.TokenID)
	if err != nil {
		s.logger.WarnContext(ctx, "ledger details unavailable",
			"serial_number", w.SerialNumber,
			"token_id", w.TokenID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return details, nil
	}
	details.Ledger = models.FromLedgerView(view)
	details.HasLedgerData = true
	return details, nil
}

// ListByCustomer returns a customer's warranties, newest first.
func (s *Service) ListByCustomer(ctx context.Context, address string) ([]*models.Warranty, error) {
	address = strings.TrimSpace(address)
	if !models.IsAddress(address) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid customer address")
	}
	warranties, err := s.store.FindByCustomer(ctx, address)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list warranties")
	}
	return warranties, nil
}

// Deactivate disables a warranty locally. The ledger is not touched and
// deactivating twice is not an error.
func (s *Service) Deactivate(ctx context.Context, serial string) (*models.Warranty, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "serial number is required")
	}
	if err := s.store.SetActive(ctx, serial, false); err != nil {
		return nil, wrapStoreErr(err, "failed to deactivate warranty")
	}
	w, err := s.store.FindBySerial(ctx, serial)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load warranty")
	}

	s.logAudit(ctx, audit.EventWarrantyDeactivated, audit.Event{
		Subject:         w.SerialNumber,
		TokenID:         tokenIDString(w.TokenID),
		Customer:        w.CustomerAddress,
		TransactionHash: w.TransactionHash,
	})
	return w, nil
}

// History returns the audit trail of the warranty named by identifier.
func (s *Service) History(ctx context.Context, identifier string) (*models.AuditTrail, error) {
	w, err := s.lookup(ctx, identifier)
	if err != nil {
		return nil, err
	}

	trail := &models.AuditTrail{SerialNumber: w.SerialNumber, Entries: []models.AuditEntry{}}
	if s.auditPublisher == nil {
		return trail, nil
	}
	events, err := s.auditPublisher.List(ctx, w.SerialNumber)
	switch {
	case errors.Is(err, audit.ErrNotReadable):
		return trail, nil
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail")
	}

	trail.Readable = true
	for _, e := range events {
		trail.Entries = append(trail.Entries, models.FromAuditEvent(e))
	}
	return trail, nil
}

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// Health reports contract reachability, store connectivity and any registered
// dependency checks. It never fails.
func (s *Service) Health(ctx context.Context) *models.HealthReport {
	report := &models.HealthReport{
		Status:    statusHealthy,
		Timestamp: requestcontext.Now(ctx),
	}

	info, err := s.ledger.ContractInfo(ctx)
	if err != nil {
		report.Contract.Error = err.Error()
	} else {
		report.Contract = models.ContractHealth{
			Address:   info.Address.Hex(),
			Name:      info.Name,
			Symbol:    info.Symbol,
			Deployed:  info.Deployed,
			Reachable: true,
		}
	}

	if err := s.store.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "store ping failed", "error", err)
	} else {
		report.StoreOK = true
	}

	dependenciesOK := true
	for name, check := range s.healthChecks {
		if report.Dependencies == nil {
			report.Dependencies = make(map[string]bool, len(s.healthChecks))
		}
		err := check(ctx)
		report.Dependencies[name] = err == nil
		if err != nil {
			dependenciesOK = false
			s.logger.WarnContext(ctx, "dependency health check failed", "dependency", name, "error", err)
		}
	}

	if !report.Contract.Reachable || !report.Contract.Deployed || !report.StoreOK || !dependenciesOK {
		report.Status = statusDegraded
	}
	return report
}
