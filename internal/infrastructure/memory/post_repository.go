package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-social-feed/internal/domain"
	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	"github.com/oksasatya/go-social-feed/internal/domain/repository"
)

type storedPost struct {
	post entity.Post
	seq  uint64
}

// PostRepository keeps posts in process memory. Every mutation of a post
// happens under the repository lock.
type PostRepository struct {
	mu    sync.RWMutex
	posts map[string]*storedPost
	seq   uint64
	now   func() time.Time
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: map[string]*storedPost{}, now: time.Now}
}

func clonePost(p *entity.Post) *entity.Post {
	cp := *p
	cp.Images = append([]string{}, p.Images...)
	cp.Likes = append([]string{}, p.Likes...)
	cp.Comments = append([]entity.Comment{}, p.Comments...)
	return &cp
}

func notFound() error {
	return fmt.Errorf("%w: post not found", domain.ErrNotFound)
}

func (r *PostRepository) Create(_ context.Context, p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	r.seq++
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Likes == nil {
		p.Likes = []string{}
	}
	r.posts[p.ID] = &storedPost{post: *clonePost(p), seq: r.seq}
	return nil
}

func (r *PostRepository) GetByID(_ context.Context, id string) (*entity.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sp, ok := r.posts[id]
	if !ok {
		return nil, notFound()
	}
	return clonePost(&sp.post), nil
}

func (r *PostRepository) List(_ context.Context, f repository.PostFilter) ([]*entity.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]*storedPost, 0, len(r.posts))
	for _, sp := range r.posts {
		if f.UserID != "" && sp.post.UserID != f.UserID {
			continue
		}
		matched = append(matched, sp)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]*entity.Post, 0, len(matched))
	for _, sp := range matched {
		out = append(out, clonePost(&sp.post))
	}
	return out, nil
}

func (r *PostRepository) ToggleLike(_ context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.posts[postID]
	if !ok {
		return false, notFound()
	}
	p := &sp.post
	for i, id := range p.Likes {
		if id == userID {
			p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
			p.UpdatedAt = r.now().UTC()
			return false, nil
		}
	}
	p.Likes = append(p.Likes, userID)
	p.UpdatedAt = r.now().UTC()
	return true, nil
}

func (r *PostRepository) AppendComment(_ context.Context, postID string, c *entity.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.posts[postID]
	if !ok {
		return notFound()
	}
	c.ID = uuid.NewString()
	c.CreatedAt = r.now().UTC()
	sp.post.Comments = append(sp.post.Comments, *c)
	sp.post.UpdatedAt = c.CreatedAt
	return nil
}

func (r *PostRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return notFound()
	}
	delete(r.posts, id)
	return nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
