package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyKeyDerivation(t *testing.T) {
	s := NewIdempotencyStore(nil, time.Minute)

	k1 := s.Key(1, 10, "client-key")
	assert.Equal(t, k1, s.Key(1, 10, "client-key"), "same inputs, same key")

	// The caller identity and session are part of the key, so the
	// same header value from another user or session cannot replay a
	// foreign reservation.
	assert.NotEqual(t, k1, s.Key(2, 10, "client-key"))
	assert.NotEqual(t, k1, s.Key(1, 11, "client-key"))
	assert.NotEqual(t, k1, s.Key(1, 10, "other-key"))

	assert.Contains(t, k1, "idem:")
}

func TestIdempotencyStoreDisabledWithoutRedis(t *testing.T) {
	s := NewIdempotencyStore(nil, time.Minute)
	assert.False(t, s.Enabled())

	ctx := context.Background()
	bs, ok, err := s.Get(ctx, "idem:whatever")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, bs)

	assert.NoError(t, s.Put(ctx, "idem:whatever", []byte("{}")))
}
