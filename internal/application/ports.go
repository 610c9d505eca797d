package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
)

// PasswordHasher hashes passwords and verifies them against stored digests.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenIssuer signs session tokens and verifies their integrity and expiry.
type TokenIssuer interface {
	Issue(subjectID string) (token string, expiresAt time.Time, err error)
	Verify(token string) (subjectID string, expiresAt time.Time, err error)
}

// RevocationRegistry remembers revoked tokens until they would have expired anyway.
type RevocationRegistry interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Publisher enqueues background jobs (email notifications).
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// UserIndex is the search index for user profiles. Search returns user IDs
// ranked by relevance.
type UserIndex interface {
	Index(ctx context.Context, u *entity.User) error
	Search(ctx context.Context, q string, size int) ([]string, error)
}
