package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"warranty/internal/ledger"
	"warranty/internal/warranty/cache"
	"warranty/internal/warranty/metadata"
	"warranty/internal/warranty/metrics"
	"warranty/internal/warranty/models"
	"warranty/internal/warranty/recovery"
	dErrors "warranty/pkg/domain-errors"
	"warranty/pkg/platform/audit"
	"warranty/pkg/platform/sentinel"
	"warranty/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Ledger,Store,ResolutionCache,Journal,AuditPublisher,TokenRecoverer

// Ledger is the slice of the ledger adapter the service drives.
type Ledger interface {
	Submit(ctx context.Context, params ledger.IssuanceParams) (*ledger.IssuanceOutcome, error)
	QueryEvents(ctx context.Context, eventName string, fromBlock, toBlock *uint64) ([]ledger.EventRecord, error)
	DecodeEvent(rec ledger.EventRecord) (*ledger.DecodedEvent, error)
	IsWarrantyValid(ctx context.Context, tokenID ledger.TokenID) (bool, error)
	WarrantyDetails(ctx context.Context, tokenID ledger.TokenID) (*ledger.WarrantyView, error)
	ContractInfo(ctx context.Context) (*ledger.ContractInfo, error)
}

// Store is the local record store. Implementations return sentinel errors.
type Store interface {
	Insert(ctx context.Context, w *models.Warranty) error
	FindBySerial(ctx context.Context, serial string) (*models.Warranty, error)
	FindByTokenID(ctx context.Context, tokenID ledger.TokenID) (*models.Warranty, error)
	FindByCustomer(ctx context.Context, customer string) ([]*models.Warranty, error)
	AttachTokenID(ctx context.Context, serial string, tokenID ledger.TokenID) error
	SetActive(ctx context.Context, serial string, active bool) error
	Ping(ctx context.Context) error
}

// ResolutionCache remembers serial to token id answers found on the ledger.
type ResolutionCache interface {
	Get(ctx context.Context, serial string) (ledger.TokenID, bool, error)
	Put(ctx context.Context, serial string, tokenID ledger.TokenID) error
}

// Journal holds issuances that reached the ledger but not the local store.
type Journal interface {
	Record(ctx context.Context, entry models.JournalEntry) error
	Get(ctx context.Context, serial string) (*models.JournalEntry, error)
	Remove(ctx context.Context, serial string) error
	List(ctx context.Context) ([]models.JournalEntry, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
	List(ctx context.Context, subject string) ([]audit.Event, error)
}

type TokenRecoverer interface {
	Recover(ctx context.Context, target recovery.Target) recovery.Result
}

// Service mirrors warranties issued on the ledger into the local store and
// answers validity and identifier questions, preferring the ledger when it is
// reachable and falling back to the local record when it is not.
type Service struct {
	ledger         Ledger
	store          Store
	recoverer      TokenRecoverer
	resolutions    ResolutionCache
	journal        Journal
	metadata       *metadata.Builder
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	healthChecks   map[string]HealthCheck
	scans          singleflight.Group
}

// HealthCheck probes an auxiliary dependency such as the cache backend.
type HealthCheck func(ctx context.Context) error

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithRecoverer(r TokenRecoverer) Option {
	return func(s *Service) {
		s.recoverer = r
	}
}

func WithResolutionCache(c ResolutionCache) Option {
	return func(s *Service) {
		s.resolutions = c
	}
}

func WithJournal(j Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

func WithMetadataBuilder(b *metadata.Builder) Option {
	return func(s *Service) {
		s.metadata = b
	}
}

// WithHealthCheck adds a named dependency probe to Health.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(s *Service) {
		if s.healthChecks == nil {
			s.healthChecks = make(map[string]HealthCheck)
		}
		s.healthChecks[name] = check
	}
}

// New constructs a Service. Cache and journal default to in-process ones.
func New(l Ledger, store Store, opts ...Option) *Service {
	s := &Service{ledger: l, store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.recoverer == nil {
		s.recoverer = recovery.New(l, recovery.WithLogger(s.logger))
	}
	if s.resolutions == nil {
		s.resolutions = cache.NewMemoryResolutionCache()
	}
	if s.journal == nil {
		s.journal = cache.NewMemoryJournal()
	}
	if s.metadata == nil {
		s.metadata = metadata.NewBuilder("")
	}
	return s
}

// lookup resolves an identifier to a local record. Numeric identifiers are
// tried as token ids first, then as serial numbers.
func (s *Service) lookup(ctx context.Context, identifier string) (*models.Warranty, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "identifier is required")
	}

	if tokenID, err := ledger.ParseTokenID(identifier); err == nil {
		w, err := s.store.FindByTokenID(ctx, tokenID)
		if err == nil {
			return w, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load warranty")
		}
	}

	w, err := s.store.FindBySerial(ctx, identifier)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load warranty")
	}
	return w, nil
}

func wrapStoreErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "warranty not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

// logAudit writes an audit log line and forwards the event to the publisher.
// Publishing failures never fail the operation.
func (s *Service) logAudit(ctx context.Context, action audit.AuditEvent, event audit.Event, attrs ...any) {
	event.Action = string(action)
	event.RequestID = requestcontext.RequestID(ctx)
	event.ActorID = requestcontext.Issuer(ctx)

	args := append(attrs,
		"serial_number", event.Subject,
		"event", string(action),
		"log_type", "audit",
	)
	if event.TransactionHash != "" {
		args = append(args, "transaction_hash", event.TransactionHash)
	}
	if event.RequestID != "" {
		args = append(args, "request_id", event.RequestID)
	}
	s.logger.InfoContext(ctx, string(action), args...)

	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish audit event",
			"event", string(action),
			"error", err,
		)
	}
}

func tokenIDString(id *ledger.TokenID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
