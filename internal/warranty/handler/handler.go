package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"warranty/internal/ratelimit"
	"warranty/internal/warranty/models"
	dErrors "warranty/pkg/domain-errors"
	"warranty/pkg/platform/httputil"
	"warranty/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the warranty operations exposed over HTTP.
type Service interface {
	Issue(ctx context.Context, req *models.IssueRequest) (*models.IssueResult, error)
	Get(ctx context.Context, identifier string) (*models.WarrantyDetails, error)
	Validate(ctx context.Context, identifier string) (*models.ValidationResult, error)
	ResolveTokenID(ctx context.Context, serial string) (*models.TokenResolution, error)
	ResolveSerial(ctx context.Context, tokenID string) (*models.SerialResolution, error)
	ListByCustomer(ctx context.Context, address string) ([]*models.Warranty, error)
	Deactivate(ctx context.Context, serial string) (*models.Warranty, error)
	History(ctx context.Context, identifier string) (*models.AuditTrail, error)
	Reconcile(ctx context.Context, serial string) (*models.ReconcileResult, error)
	PendingReconciliations(ctx context.Context) ([]models.JournalEntry, error)
	Health(ctx context.Context) *models.HealthReport
}

// Handler wires warranty endpoints to the warranty service.
type Handler struct {
	service Service
	logger  *slog.Logger
	// issuerOnly guards mutating routes; nil leaves them open.
	issuerOnly func(http.Handler) http.Handler
	limiter    *ratelimit.Middleware
}

type Option func(*Handler)

// WithRateLimiter throttles issuance and ledger-scanning lookups.
func WithRateLimiter(m *ratelimit.Middleware) Option {
	return func(h *Handler) {
		h.limiter = m
	}
}

// New constructs a warranty handler. issuerOnly is the middleware that admits
// authenticated issuers.
func New(service Service, logger *slog.Logger, issuerOnly func(http.Handler) http.Handler, opts ...Option) *Handler {
	h := &Handler{
		service:    service,
		logger:     logger,
		issuerOnly: issuerOnly,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) limit(class ratelimit.EndpointClass) func(http.Handler) http.Handler {
	if h.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return h.limiter.RateLimit(class)
}

// Register mounts warranty endpoints on the router. Fixed paths are declared
// before the catch-all identifier routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.With(h.limit(ratelimit.ClassScan)).Get("/serial/{serialNumber}/token", h.HandleResolveToken)
	r.Get("/token/{tokenId}/serial", h.HandleResolveSerial)
	r.Get("/user/{address}", h.HandleListByCustomer)

	r.Group(func(r chi.Router) {
		if h.issuerOnly != nil {
			r.Use(h.issuerOnly)
		}
		r.With(h.limit(ratelimit.ClassIssue)).Post("/issue", h.HandleIssue)
		r.Post("/{identifier}/deactivate", h.HandleDeactivate)
		r.Get("/{identifier}/history", h.HandleHistory)
		r.Get("/reconcile", h.HandlePendingReconciliations)
		r.Post("/reconcile/{serialNumber}", h.HandleReconcile)
	})

	r.Get("/{identifier}", h.HandleGet)
	r.Get("/{identifier}/validate", h.HandleValidate)
}

// HandleIssue handles POST /issue.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[models.IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Issue(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, "warranty issuance failed", err, "serial_number", req.SerialNumber)
		return
	}

	h.logger.InfoContext(ctx, "warranty issued",
		"request_id", requestID,
		"serial_number", result.Warranty.SerialNumber,
		"transaction_hash", result.TransactionHash,
		"token_resolved", result.TokenID != nil,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// HandleGet handles GET /{identifier}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identifier := chi.URLParam(r, "identifier")

	details, err := h.service.Get(ctx, identifier)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to get warranty", err, "identifier", identifier)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, details)
}

// HandleValidate handles GET /{identifier}/validate.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identifier := chi.URLParam(r, "identifier")

	result, err := h.service.Validate(ctx, identifier)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to validate warranty", err, "identifier", identifier)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleResolveToken handles GET /serial/{serialNumber}/token.
func (h *Handler) HandleResolveToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	serial := chi.URLParam(r, "serialNumber")

	result, err := h.service.ResolveTokenID(ctx, serial)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to resolve token id", err, "serial_number", serial)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleResolveSerial handles GET /token/{tokenId}/serial.
func (h *Handler) HandleResolveSerial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokenID := chi.URLParam(r, "tokenId")

	result, err := h.service.ResolveSerial(ctx, tokenID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to resolve serial number", err, "token_id", tokenID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

type warrantyList struct {
	Warranties []*models.Warranty `json:"warranties"`
	Count      int                `json:"count"`
}

// HandleListByCustomer handles GET /user/{address}.
func (h *Handler) HandleListByCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	warranties, err := h.service.ListByCustomer(ctx, address)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list warranties", err, "customer_address", address)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, warrantyList{Warranties: warranties, Count: len(warranties)})
}

// HandleDeactivate handles POST /{serialNumber}/deactivate. The segment shares
// the identifier parameter name with the other root routes.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	serial := chi.URLParam(r, "identifier")

	warranty, err := h.service.Deactivate(ctx, serial)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to deactivate warranty", err, "serial_number", serial)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, warranty)
}

// HandleHistory handles GET /{identifier}/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identifier := chi.URLParam(r, "identifier")

	trail, err := h.service.History(ctx, identifier)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load audit trail", err, "identifier", identifier)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, trail)
}

// HandleReconcile handles POST /reconcile/{serialNumber}.
func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	serial := chi.URLParam(r, "serialNumber")

	result, err := h.service.Reconcile(ctx, serial)
	if err != nil {
		h.writeServiceError(ctx, w, "reconciliation failed", err, "serial_number", serial)
		return
	}
	h.logger.InfoContext(ctx, "warranty reconciled",
		"request_id", requestcontext.RequestID(ctx),
		"serial_number", serial,
		"already_present", result.AlreadyPresent,
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

type pendingList struct {
	Pending []models.JournalEntry `json:"pending"`
	Count   int                   `json:"count"`
}

// HandlePendingReconciliations handles GET /reconcile.
func (h *Handler) HandlePendingReconciliations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.service.PendingReconciliations(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list pending reconciliations", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pendingList{Pending: entries, Count: len(entries)})
}

// HandleHealth handles GET /health. A degraded report is served with 503.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	report := h.service.Health(r.Context())
	status := http.StatusOK
	if report.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, report)
}

// writeServiceError logs err and writes the error envelope. Errors carrying a
// transaction hash expose it so the caller can reconcile.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	args := append(attrs, "request_id", requestcontext.RequestID(ctx), "error", err)

	if re, ok := models.AsReconcileError(err); ok {
		h.logger.ErrorContext(ctx, msg, append(args, "transaction_hash", re.TransactionHash)...)
		httputil.WriteErrorWithFields(w, err, map[string]string{"transactionHash": re.TransactionHash})
		return
	}

	if de, ok := dErrors.As(err); ok && dErrors.ToHTTPStatus(de.Code) < http.StatusInternalServerError {
		h.logger.WarnContext(ctx, msg, args...)
	} else {
		h.logger.ErrorContext(ctx, msg, args...)
	}
	httputil.WriteError(w, err)
}
