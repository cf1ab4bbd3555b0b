//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"warranty/pkg/testutil/containers"
)

func TestPostgresStoreContract(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t, Schema)

	suite.Run(t, &StoreContractSuite{
		newStore: func(t *testing.T) warrantyStore {
			require.NoError(t, pg.TruncateTables(context.Background(), Table))
			return NewPostgresStore(pg.DB)
		},
	})
}

func TestPostgresStore_PreservesTimestamps(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t, Schema)
	ctx := context.Background()
	require.NoError(t, pg.TruncateTables(ctx, Table))

	later := baseTime.Add(24 * time.Hour)
	s := NewPostgresStore(pg.DB, WithClock(func() time.Time { return later }))
	require.NoError(t, s.Insert(ctx, newWarranty("SN-TS", customerA, nil, baseTime)))
	require.NoError(t, s.SetActive(ctx, "SN-TS", false))

	found, err := s.FindBySerial(ctx, "SN-TS")
	require.NoError(t, err)
	require.Equal(t, baseTime, found.PurchaseDate)
	require.Equal(t, later, found.UpdatedAt)
}
