package redisstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "auth:revoked:"

// RevocationRegistry stores revoked tokens in Redis. Each key expires
// together with the token it revokes, so the set never grows past the
// number of live revoked tokens.
type RevocationRegistry struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRevocationRegistry(rdb *redis.Client) *RevocationRegistry {
	return &RevocationRegistry{rdb: rdb, now: time.Now}
}

func keyRevoked(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedPrefix + hex.EncodeToString(sum[:])
}

func (r *RevocationRegistry) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	// round up so the key never disappears before the token expires
	ttl = ttl.Truncate(time.Second) + time.Second
	return r.rdb.Set(ctx, keyRevoked(token), 1, ttl).Err()
}

func (r *RevocationRegistry) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.rdb.Exists(ctx, keyRevoked(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
