package repository

import (
    "context"
    "crypto/sha256"
    "encoding/hex"
    "fmt"
    "time"

    "github.com/redis/go-redis/v9"
)

// IdempotencyStore deduplicates reservation retries for a bounded
// window using Redis.  The checkout flow has no natural idempotence:
// two identical submits would both succeed once the first hold was
// released, so clients send an Idempotency-Key header and the ledger
// replays the stored outcome instead of claiming seats twice.
//
// When no Redis client is configured the store degrades to a no-op
// and every request is treated as new, mirroring how rate limiting
// and caching degrade elsewhere in the service.
type IdempotencyStore struct {
    rdb    *redis.Client
    ttl    time.Duration
    prefix string
}

// NewIdempotencyStore returns a store with the given replay window.
// rdb may be nil, in which case deduplication is disabled.
func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
    if ttl <= 0 {
        ttl = 5 * time.Minute
    }
    return &IdempotencyStore{rdb: rdb, ttl: ttl, prefix: "idem"}
}

// Enabled reports whether deduplication is active.
func (s *IdempotencyStore) Enabled() bool { return s != nil && s.rdb != nil }

// Key derives the storage key from the caller identity, the session
// and the raw client key, so the same header value used by two users
// or for two sessions never collides.
func (s *IdempotencyStore) Key(userID, sessionID uint64, raw string) string {
    sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%d:%s", userID, sessionID, raw)))
    return s.prefix + ":" + hex.EncodeToString(sum[:])
}

// Get returns the stored outcome for a key, if any.
func (s *IdempotencyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
    if !s.Enabled() {
        return nil, false, nil
    }
    bs, err := s.rdb.Get(ctx, key).Bytes()
    if err == redis.Nil {
        return nil, false, nil
    }
    if err != nil {
        return nil, false, err
    }
    return bs, true, nil
}

// Put stores the outcome of a completed reservation under the key
// for the replay window.  SETNX keeps the first stored outcome if a
// concurrent retry somehow raced past the ledger's own locking.
func (s *IdempotencyStore) Put(ctx context.Context, key string, payload []byte) error {
    if !s.Enabled() {
        return nil
    }
    return s.rdb.SetNX(ctx, key, payload, s.ttl).Err()
}
