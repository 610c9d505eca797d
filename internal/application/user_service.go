package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	repo "github.com/oksasatya/go-social-feed/internal/domain/repository"
)

type UserService struct {
	Repo   repo.UserRepository
	Index  UserIndex
	Logger *logrus.Logger
}

func NewUserService(repo repo.UserRepository, index UserIndex, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, Index: index, Logger: logger}
}

// GetUser returns the public profile of any user.
func (s *UserService) GetUser(ctx context.Context, id string) (*UserView, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserView(u), nil
}

// GetCurrentUser returns the profile of the authenticated caller.
func (s *UserService) GetCurrentUser(ctx context.Context, id entity.Identity) (*UserView, error) {
	return s.GetUser(ctx, id.UserID)
}

// SearchUsers looks users up by name or email. Without a search index it
// returns no hits.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]UserView, error) {
	q = strings.TrimSpace(q)
	if s.Index == nil || q == "" {
		return []UserView{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	ids, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []UserView{}, nil
	}
	found, err := s.Repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, 0, len(ids))
	for _, id := range ids {
		// the index can lag behind the store
		if u, ok := found[id]; ok {
			out = append(out, *toUserView(u))
		}
	}
	return out, nil
}
