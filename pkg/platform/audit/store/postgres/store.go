// Package postgres keeps audit events in a Postgres table. It is the durable
// sink when no Kafka brokers are configured.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "warranty/pkg/platform/audit"
)

//go:embed schema.sql
var Schema string

// Store implements audit.Store and audit.Lister.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts event. Re-appending an event with the same ID is a no-op.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	id, err := uuid.Parse(event.ID)
	if err != nil {
		id = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	query := `
		INSERT INTO warranty_audit_events (
			id, category, occurred_at, subject, action, token_id,
			customer, transaction_hash, reason, request_id, actor_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		id,
		string(audit.AuditEvent(event.Action).Category()),
		event.Timestamp.UTC(),
		event.Subject,
		event.Action,
		event.TokenID,
		event.Customer,
		event.TransactionHash,
		event.Reason,
		event.RequestID,
		event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySubject returns the events for one serial number, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	query := `
		SELECT id, category, occurred_at, subject, action, token_id,
		       customer, transaction_hash, reason, request_id, actor_id
		FROM warranty_audit_events
		WHERE subject = $1
		ORDER BY occurred_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := []audit.Event{}
	for rows.Next() {
		var (
			e        audit.Event
			id       uuid.UUID
			category string
		)
		if err := rows.Scan(&id, &category, &e.Timestamp, &e.Subject, &e.Action, &e.TokenID,
			&e.Customer, &e.TransactionHash, &e.Reason, &e.RequestID, &e.ActorID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.ID = id.String()
		e.Category = audit.EventCategory(category)
		e.Timestamp = e.Timestamp.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
