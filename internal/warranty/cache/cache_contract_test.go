package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"warranty/internal/ledger"
	"warranty/internal/warranty/models"
	"warranty/pkg/platform/sentinel"
)

type resolutionCache interface {
	Get(ctx context.Context, serial string) (ledger.TokenID, bool, error)
	Put(ctx context.Context, serial string, tokenID ledger.TokenID) error
}

type journal interface {
	Record(ctx context.Context, entry models.JournalEntry) error
	Get(ctx context.Context, serial string) (*models.JournalEntry, error)
	Remove(ctx context.Context, serial string) error
	List(ctx context.Context) ([]models.JournalEntry, error)
}

var (
	_ resolutionCache = (*MemoryResolutionCache)(nil)
	_ resolutionCache = (*RedisResolutionCache)(nil)
	_ journal         = (*MemoryJournal)(nil)
	_ journal         = (*RedisJournal)(nil)
)

var recordedAt = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

func entry(serial string, offset time.Duration) models.JournalEntry {
	return models.JournalEntry{
		Warranty: models.Warranty{
			ID:                 uuid.New(),
			SerialNumber:       serial,
			ProductName:        "Laptop",
			ProductModel:       "X1",
			CustomerAddress:    "0x70997970c51812dc3a010c7d01b50e0d17dc79c8",
			WarrantyPeriodDays: 365,
			PurchaseDate:       recordedAt,
			Active:             true,
			CreatedAt:          recordedAt,
			UpdatedAt:          recordedAt,
		},
		TransactionHash: "0xabc",
		BlockNumber:     12,
		Reason:          "insert warranty: connection refused",
		RecordedAt:      recordedAt.Add(offset),
	}
}

// CacheContractSuite holds behavior shared by the in-process and Redis flavors.
type CacheContractSuite struct {
	suite.Suite
	newCache   func(t *testing.T) resolutionCache
	newJournal func(t *testing.T) journal
	cache      resolutionCache
	journal    journal
	ctx        context.Context
}

func (s *CacheContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.cache = s.newCache(s.T())
	s.journal = s.newJournal(s.T())
}

func (s *CacheContractSuite) TestResolutionCache() {
	_, ok, err := s.cache.Get(s.ctx, "SN-1")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.cache.Put(s.ctx, "SN-1", 42))

	id, ok, err := s.cache.Get(s.ctx, "SN-1")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(ledger.TokenID(42), id)
}

func (s *CacheContractSuite) TestJournalRecordAndGet() {
	e := entry("SN-1", 0)
	s.Require().NoError(s.journal.Record(s.ctx, e))

	got, err := s.journal.Get(s.ctx, "SN-1")
	s.Require().NoError(err)
	s.Equal(e.TransactionHash, got.TransactionHash)
	s.Equal(e.Warranty.ID, got.Warranty.ID)
	s.True(e.RecordedAt.Equal(got.RecordedAt))

	s.Run("second entry for the same serial conflicts", func() {
		err := s.journal.Record(s.ctx, entry("SN-1", time.Minute))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("unknown serial", func() {
		_, err := s.journal.Get(s.ctx, "SN-404")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *CacheContractSuite) TestJournalRemove() {
	s.Require().NoError(s.journal.Record(s.ctx, entry("SN-1", 0)))
	s.Require().NoError(s.journal.Remove(s.ctx, "SN-1"))

	_, err := s.journal.Get(s.ctx, "SN-1")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	err = s.journal.Remove(s.ctx, "SN-1")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.journal.Record(s.ctx, entry("SN-1", time.Hour)), "a reconciled serial may be journaled again")
}

func (s *CacheContractSuite) TestJournalListOldestFirst() {
	s.Require().NoError(s.journal.Record(s.ctx, entry("SN-B", time.Hour)))
	s.Require().NoError(s.journal.Record(s.ctx, entry("SN-A", 2*time.Hour)))
	s.Require().NoError(s.journal.Record(s.ctx, entry("SN-C", 0)))

	entries, err := s.journal.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("SN-C", entries[0].Warranty.SerialNumber)
	s.Equal("SN-B", entries[1].Warranty.SerialNumber)
	s.Equal("SN-A", entries[2].Warranty.SerialNumber)
}
