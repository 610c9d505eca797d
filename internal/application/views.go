package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	repo "github.com/oksasatya/go-social-feed/internal/domain/repository"
)

// UserView is the public profile of a user. It never carries the password digest.
type UserView struct {
	ID        string    `json:"id"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSummary is the display form embedded in posts for owners, likers and commenters.
type UserSummary struct {
	ID       string `json:"id"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
}

type CommentView struct {
	ID        string      `json:"id"`
	User      UserSummary `json:"user"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"created_at"`
}

type PostView struct {
	ID        string        `json:"id"`
	User      UserSummary   `json:"user"`
	Text      string        `json:"text"`
	Images    []string      `json:"images"`
	Likes     []UserSummary `json:"likes"`
	Comments  []CommentView `json:"comments"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func toUserView(u *entity.User) *UserView {
	return &UserView{ID: u.ID, UserName: u.UserName, Email: u.Email, CreatedAt: u.CreatedAt}
}

// assemblePosts resolves every user referenced by posts with a single lookup
// and builds the denormalized views.
func assemblePosts(ctx context.Context, users repo.UserRepository, posts []*entity.Post) ([]PostView, error) {
	seen := map[string]struct{}{}
	ids := make([]string, 0)
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, p := range posts {
		add(p.UserID)
		for _, id := range p.Likes {
			add(id)
		}
		for _, c := range p.Comments {
			add(c.UserID)
		}
	}

	resolved := map[string]*entity.User{}
	if len(ids) > 0 {
		var err error
		resolved, err = users.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}
	summary := func(id string) UserSummary {
		if u, ok := resolved[id]; ok {
			return UserSummary{ID: u.ID, UserName: u.UserName, Email: u.Email}
		}
		return UserSummary{ID: id}
	}

	out := make([]PostView, 0, len(posts))
	for _, p := range posts {
		v := PostView{
			ID:        p.ID,
			User:      summary(p.UserID),
			Text:      p.Text,
			Images:    append([]string{}, p.Images...),
			Likes:     make([]UserSummary, 0, len(p.Likes)),
			Comments:  make([]CommentView, 0, len(p.Comments)),
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		}
		for _, id := range p.Likes {
			v.Likes = append(v.Likes, summary(id))
		}
		for _, c := range p.Comments {
			v.Comments = append(v.Comments, CommentView{ID: c.ID, User: summary(c.UserID), Text: c.Text, CreatedAt: c.CreatedAt})
		}
		out = append(out, v)
	}
	return out, nil
}

func assemblePost(ctx context.Context, users repo.UserRepository, p *entity.Post) (*PostView, error) {
	views, err := assemblePosts(ctx, users, []*entity.Post{p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
