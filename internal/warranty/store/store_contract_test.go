package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"warranty/internal/ledger"
	"warranty/internal/warranty/models"
	"warranty/pkg/platform/sentinel"
)

type warrantyStore interface {
	Insert(ctx context.Context, w *models.Warranty) error
	FindBySerial(ctx context.Context, serial string) (*models.Warranty, error)
	FindByTokenID(ctx context.Context, tokenID ledger.TokenID) (*models.Warranty, error)
	FindByCustomer(ctx context.Context, customer string) ([]*models.Warranty, error)
	AttachTokenID(ctx context.Context, serial string, tokenID ledger.TokenID) error
	SetActive(ctx context.Context, serial string, active bool) error
	Ping(ctx context.Context) error
}

var (
	_ warrantyStore = (*InMemoryStore)(nil)
	_ warrantyStore = (*PostgresStore)(nil)
)

const (
	customerA = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	customerB = "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"
)

var baseTime = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

// StoreContractSuite holds behavior every Store implementation must share.
type StoreContractSuite struct {
	suite.Suite
	newStore func(t *testing.T) warrantyStore
	store    warrantyStore
	ctx      context.Context
}

func (s *StoreContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore(s.T())
}

func tokenPtr(id ledger.TokenID) *ledger.TokenID {
	return &id
}

func newWarranty(serial, customer string, tokenID *ledger.TokenID, createdAt time.Time) *models.Warranty {
	return &models.Warranty{
		ID:                  uuid.New(),
		SerialNumber:        serial,
		ProductName:         "Laptop",
		ProductModel:        "X1",
		Manufacturer:        "Acme",
		Retailer:            models.UnknownParty,
		CustomerAddress:     customer,
		ManufacturerAddress: customer,
		RetailerAddress:     customer,
		WarrantyPeriodDays:  365,
		PurchaseDate:        createdAt,
		TokenID:             tokenID,
		TransactionHash:     "0x" + fmt.Sprintf("%064x", createdAt.Unix()),
		MetadataURI:         "data:application/json;base64,e30=",
		Active:              true,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}
}

func (s *StoreContractSuite) TestInsertAndFind() {
	w := newWarranty("SN-1", customerA, tokenPtr(1), baseTime)
	s.Require().NoError(s.store.Insert(s.ctx, w))

	s.Run("by serial", func() {
		found, err := s.store.FindBySerial(s.ctx, "SN-1")
		s.Require().NoError(err)
		s.Equal(w, found)
	})

	s.Run("by token id", func() {
		found, err := s.store.FindByTokenID(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal("SN-1", found.SerialNumber)
	})

	s.Run("missing serial", func() {
		_, err := s.store.FindBySerial(s.ctx, "SN-404")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("missing token id", func() {
		_, err := s.store.FindByTokenID(s.ctx, 404)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *StoreContractSuite) TestInsertRejectsDuplicates() {
	s.Require().NoError(s.store.Insert(s.ctx, newWarranty("SN-1", customerA, tokenPtr(1), baseTime)))

	s.Run("duplicate serial", func() {
		err := s.store.Insert(s.ctx, newWarranty("SN-1", customerB, nil, baseTime))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("duplicate token id", func() {
		err := s.store.Insert(s.ctx, newWarranty("SN-2", customerB, tokenPtr(1), baseTime))
		s.Require().ErrorIs(err, sentinel.ErrConflict)

		_, err = s.store.FindBySerial(s.ctx, "SN-2")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("records without token id do not collide", func() {
		s.Require().NoError(s.store.Insert(s.ctx, newWarranty("SN-3", customerA, nil, baseTime)))
		s.Require().NoError(s.store.Insert(s.ctx, newWarranty("SN-4", customerA, nil, baseTime)))
	})
}

func (s *StoreContractSuite) TestConcurrentInsertSameSerial() {
	const writers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Insert(s.ctx, newWarranty("SN-RACE", customerA, nil, baseTime))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, sentinel.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(writers-1, conflicts)
}

func (s *StoreContractSuite) TestFindByCustomer() {
	s.Require().NoError(s.store.Insert(s.ctx, newWarranty("SN-OLD", customerA, nil, baseTime)))
	s.Require().NoError(s.store.Insert(s.ctx, newWarranty("SN-NEW", customerA, tokenPtr(2), baseTime.Add(time.Hour))))
	s.Require().NoError(s.store.Insert(s.ctx, newWarranty("SN-OTHER", customerB, nil, baseTime)))

	s.Run("newest first and case insensitive", func() {
		found, err := s.store.FindByCustomer(s.ctx, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
		s.Require().NoError(err)
		s.Require().Len(found, 2)
		s.Equal("SN-NEW", found[0].SerialNumber)
		s.Equal("SN-OLD", found[1].SerialNumber)
	})

	s.Run("unknown customer yields empty list", func() {
		found, err := s.store.FindByCustomer(s.ctx, "0x0000000000000000000000000000000000000001")
		s.Require().NoError(err)
		s.NotNil(found)
		s.Empty(found)
	})
}

func (s *StoreContractSuite) TestAttachTokenID() {
	s.Require().NoError(s.store.Insert(s.ctx, newWarranty("SN-1", customerA, nil, baseTime)))
	s.Require().NoError(s.store.Insert(s.ctx, newWarranty("SN-2", customerA, tokenPtr(9), baseTime)))

	s.Run("attaches to a record without token id", func() {
		s.Require().NoError(s.store.AttachTokenID(s.ctx, "SN-1", 5))

		found, err := s.store.FindByTokenID(s.ctx, 5)
		s.Require().NoError(err)
		s.Equal("SN-1", found.SerialNumber)
	})

	s.Run("same id again is a no-op", func() {
		s.Require().NoError(s.store.AttachTokenID(s.ctx, "SN-1", 5))
	})

	s.Run("different id is rejected", func() {
		err := s.store.AttachTokenID(s.ctx, "SN-1", 6)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)

		found, err := s.store.FindBySerial(s.ctx, "SN-1")
		s.Require().NoError(err)
		s.Equal(ledger.TokenID(5), *found.TokenID)
	})

	s.Run("unknown serial", func() {
		err := s.store.AttachTokenID(s.ctx, "SN-404", 7)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("id owned by another record", func() {
		s.Require().NoError(s.store.Insert(s.ctx, newWarranty("SN-3", customerA, nil, baseTime)))
		err := s.store.AttachTokenID(s.ctx, "SN-3", 9)
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *StoreContractSuite) TestSetActive() {
	s.Require().NoError(s.store.Insert(s.ctx, newWarranty("SN-1", customerA, nil, baseTime)))

	s.Require().NoError(s.store.SetActive(s.ctx, "SN-1", false))
	found, err := s.store.FindBySerial(s.ctx, "SN-1")
	s.Require().NoError(err)
	s.False(found.Active)
	s.Equal("Laptop", found.ProductName)

	err = s.store.SetActive(s.ctx, "SN-404", false)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreContractSuite) TestPing() {
	s.Require().NoError(s.store.Ping(s.ctx))
}
