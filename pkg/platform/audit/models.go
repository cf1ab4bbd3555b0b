package audit

import (
	"context"
	"errors"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events that change the warranty registry of record.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events that need operator follow-up or are useful
	// for debugging (unresolved tokens, persistence drift).
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	// Subject is the warranty serial number the event concerns.
	Subject         string
	Action          string
	TokenID         string
	Customer        string
	TransactionHash string
	Reason          string
	RequestID       string
	// ActorID is the authenticated issuer, empty for anonymous reads.
	ActorID string
}

type AuditEvent string

const (
	EventWarrantyIssued      AuditEvent = "warranty_issued"
	EventTokenUnresolved     AuditEvent = "warranty_token_unresolved"
	EventPersistenceFailed   AuditEvent = "warranty_persistence_failed"
	EventWarrantyReconciled  AuditEvent = "warranty_reconciled"
	EventWarrantyDeactivated AuditEvent = "warranty_deactivated"
	EventTokenAttached       AuditEvent = "warranty_token_attached"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventWarrantyIssued:      CategoryCompliance,
	EventWarrantyReconciled:  CategoryCompliance,
	EventWarrantyDeactivated: CategoryCompliance,
	EventTokenAttached:       CategoryCompliance,

	EventTokenUnresolved:   CategoryOperations,
	EventPersistenceFailed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// ErrNotReadable is returned when the configured store is write-only.
var ErrNotReadable = errors.New("audit store does not support reads")

// Lister is implemented by stores that can read events back.
type Lister interface {
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
