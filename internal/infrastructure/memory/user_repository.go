package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-social-feed/internal/domain"
	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	"github.com/oksasatya/go-social-feed/internal/domain/repository"
)

// UserRepository keeps users in process memory. The email index is checked
// and written under one lock, so duplicate registrations cannot both win.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byEmail map[string]string
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    map[string]*entity.User{},
		byEmail: map[string]string{},
		now:     time.Now,
	}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[u.Email]; taken {
		return fmt.Errorf("%w: email already registered", domain.ErrConflict)
	}
	now := r.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	stored := *u
	r.byID[u.ID] = &stored
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *UserRepository) GetByIDs(_ context.Context, ids []string) (map[string]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*entity.User, len(ids))
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
