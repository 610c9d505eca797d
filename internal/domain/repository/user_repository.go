package repository

import (
	"context"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Create returns domain.ErrConflict when the email is already taken and the
// getters return domain.ErrNotFound for unknown users.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByIDs resolves many users at once. Unknown IDs are absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.User, error)
}
