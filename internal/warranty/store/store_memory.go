package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"warranty/internal/ledger"
	"warranty/internal/warranty/models"
	"warranty/pkg/platform/sentinel"
)

// Error Contract:
// - ErrNotFound when no record matches the key
// - ErrConflict when a serial number or token id is already taken
// - ErrInvalidState when a token id is already attached to the record

// InMemoryStore keeps warranty records in process memory for tests and dev.
// Records are copied in and out so callers never share state with the store.
type InMemoryStore struct {
	mu       sync.RWMutex
	bySerial map[string]*models.Warranty
	byToken  map[ledger.TokenID]string
	clock    Clock
}

// NewInMemoryStore returns an empty store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	o := newOptions(opts)
	return &InMemoryStore{
		bySerial: make(map[string]*models.Warranty),
		byToken:  make(map[ledger.TokenID]string),
		clock:    o.clock,
	}
}

func (s *InMemoryStore) Insert(_ context.Context, w *models.Warranty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bySerial[w.SerialNumber]; ok {
		return fmt.Errorf("serial number %q: %w", w.SerialNumber, sentinel.ErrConflict)
	}
	if w.TokenID != nil {
		if _, ok := s.byToken[*w.TokenID]; ok {
			return fmt.Errorf("token id %s: %w", w.TokenID, sentinel.ErrConflict)
		}
	}

	stored := clone(w)
	stored.CustomerAddress = models.NormalizeAddress(stored.CustomerAddress)
	s.bySerial[w.SerialNumber] = stored
	if stored.TokenID != nil {
		s.byToken[*stored.TokenID] = stored.SerialNumber
	}
	return nil
}

func (s *InMemoryStore) FindBySerial(_ context.Context, serial string) (*models.Warranty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if w, ok := s.bySerial[serial]; ok {
		return clone(w), nil
	}
	return nil, fmt.Errorf("serial number %q: %w", serial, sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByTokenID(_ context.Context, tokenID ledger.TokenID) (*models.Warranty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if serial, ok := s.byToken[tokenID]; ok {
		return clone(s.bySerial[serial]), nil
	}
	return nil, fmt.Errorf("token id %s: %w", tokenID, sentinel.ErrNotFound)
}

// FindByCustomer returns the customer's records, newest first.
func (s *InMemoryStore) FindByCustomer(_ context.Context, customer string) ([]*models.Warranty, error) {
	customer = models.NormalizeAddress(customer)

	s.mu.RLock()
	out := make([]*models.Warranty, 0)
	for _, w := range s.bySerial {
		if w.CustomerAddress == customer {
			out = append(out, clone(w))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].SerialNumber < out[j].SerialNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// AttachTokenID sets the token id of a record that has none. Re-attaching the
// same id is a no-op.
func (s *InMemoryStore) AttachTokenID(_ context.Context, serial string, tokenID ledger.TokenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.bySerial[serial]
	if !ok {
		return fmt.Errorf("serial number %q: %w", serial, sentinel.ErrNotFound)
	}
	if w.TokenID != nil {
		if *w.TokenID == tokenID {
			return nil
		}
		return fmt.Errorf("serial number %q already has token id %s: %w", serial, w.TokenID, sentinel.ErrInvalidState)
	}
	if owner, taken := s.byToken[tokenID]; taken {
		return fmt.Errorf("token id %s already attached to %q: %w", tokenID, owner, sentinel.ErrConflict)
	}

	id := tokenID
	w.TokenID = &id
	w.UpdatedAt = s.clock()
	s.byToken[tokenID] = serial
	return nil
}

func (s *InMemoryStore) SetActive(_ context.Context, serial string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.bySerial[serial]
	if !ok {
		return fmt.Errorf("serial number %q: %w", serial, sentinel.ErrNotFound)
	}
	w.Active = active
	w.UpdatedAt = s.clock()
	return nil
}

func (s *InMemoryStore) Ping(context.Context) error {
	return nil
}

func clone(w *models.Warranty) *models.Warranty {
	cp := *w
	if w.TokenID != nil {
		id := *w.TokenID
		cp.TokenID = &id
	}
	return &cp
}
