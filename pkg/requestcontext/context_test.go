package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccessors_EmptyContext(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, Issuer(ctx))
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
}

func TestAccessors_RoundTrip(t *testing.T) {
	pinned := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := WithTime(WithIssuer(WithRequestID(context.Background(), "req-1"), "acme-retail"), pinned)

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "acme-retail", Issuer(ctx))
	assert.Equal(t, pinned, Now(ctx))
}

type foreignKey int

func TestAccessors_KeysDoNotCollide(t *testing.T) {
	ctx := context.WithValue(context.Background(), foreignKey(requestIDKey), "foreign")
	ctx = WithIssuer(ctx, "acme-retail")

	assert.Empty(t, RequestID(ctx), "keys of other types are ignored")
	assert.Equal(t, "acme-retail", Issuer(ctx))
}
