package repository

import (
	"context"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
)

// PostFilter narrows List. The zero value lists every post.
type PostFilter struct {
	UserID string
}

// PostRepository persists posts with their likes and comments.
// Mutations on a single post are atomic in the store; unknown or malformed
// post IDs yield domain.ErrNotFound.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	// List returns posts newest first.
	List(ctx context.Context, f PostFilter) ([]*entity.Post, error)
	// ToggleLike flips userID's membership in the liker set and reports
	// whether the user likes the post afterwards.
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	AppendComment(ctx context.Context, postID string, c *entity.Comment) error
	Delete(ctx context.Context, id string) error
}
