// Package kafka publishes audit events to a Kafka topic, keyed by serial number
// so every event for one warranty lands on the same partition in order.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	audit "warranty/pkg/platform/audit"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Store implements audit.Store on a franz-go producer.
type Store struct {
	client *kgo.Client
	topic  string
}

func New(client *kgo.Client, topic string) *Store {
	return &Store{client: client, topic: topic}
}

// payload is the JSON document written to the topic.
type payload struct {
	ID              string `json:"id"`
	Category        string `json:"category"`
	Timestamp       string `json:"timestamp"`
	Subject         string `json:"subject"`
	Action          string `json:"action"`
	TokenID         string `json:"token_id,omitempty"`
	Customer        string `json:"customer,omitempty"`
	TransactionHash string `json:"transaction_hash,omitempty"`
	Reason          string `json:"reason,omitempty"`
	RequestID       string `json:"request_id,omitempty"`
	ActorID         string `json:"actor_id,omitempty"`
}

// Encode renders an event as the topic's JSON document.
func Encode(event audit.Event) ([]byte, error) {
	return json.Marshal(payload{
		ID:              event.ID,
		Category:        string(audit.AuditEvent(event.Action).Category()),
		Timestamp:       event.Timestamp.UTC().Format(time.RFC3339Nano),
		Subject:         event.Subject,
		Action:          event.Action,
		TokenID:         event.TokenID,
		Customer:        event.Customer,
		TransactionHash: event.TransactionHash,
		Reason:          event.Reason,
		RequestID:       event.RequestID,
		ActorID:         event.ActorID,
	})
}

// Decode parses a topic document back into an event.
func Decode(data []byte) (audit.Event, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return audit.Event{}, fmt.Errorf("decode audit payload: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return audit.Event{}, fmt.Errorf("decode audit timestamp: %w", err)
	}
	return audit.Event{
		ID:              p.ID,
		Category:        audit.EventCategory(p.Category),
		Timestamp:       ts,
		Subject:         p.Subject,
		Action:          p.Action,
		TokenID:         p.TokenID,
		Customer:        p.Customer,
		TransactionHash: p.TransactionHash,
		Reason:          p.Reason,
		RequestID:       p.RequestID,
		ActorID:         p.ActorID,
	}, nil
}

// Append produces the event synchronously.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	value, err := Encode(event)
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Subject),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// EnsureTopic creates topic if it does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}
