//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"warranty/pkg/testutil/containers"
)

func TestRedisCacheContract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	flush := func(t *testing.T) {
		require.NoError(t, rc.FlushAll(context.Background()))
	}

	suite.Run(t, &CacheContractSuite{
		newCache: func(t *testing.T) resolutionCache {
			flush(t)
			return NewRedisResolutionCache(rc.Client, time.Hour)
		},
		newJournal: func(*testing.T) journal { return NewRedisJournal(rc.Client) },
	})
}

func TestRedisResolutionCache_AppliesTTL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	c := NewRedisResolutionCache(rc.Client, time.Minute)
	require.NoError(t, c.Put(ctx, "SN-TTL", 7))

	ttl, err := rc.Client.TTL(ctx, resolutionKeyPrefix+"SN-TTL").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisJournal_SkipsDanglingIndexEntries(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	j := NewRedisJournal(rc.Client)
	require.NoError(t, j.Record(ctx, entry("SN-1", 0)))
	require.NoError(t, rc.Client.SAdd(ctx, journalIndexKey, "SN-GHOST").Err())

	entries, err := j.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SN-1", entries[0].Warranty.SerialNumber)
}
