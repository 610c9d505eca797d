package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/oksasatya/go-social-feed/internal/domain"
	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	"github.com/oksasatya/go-social-feed/internal/domain/repository"
)

func newPost(t *testing.T, r *PostRepository, userID, text string) *entity.Post {
	t.Helper()
	p := &entity.Post{UserID: userID, Text: text}
	if err := r.Create(context.Background(), p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

func TestPostRepository_ListNewestFirst(t *testing.T) {
	r := NewPostRepository()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	first := newPost(t, r, "u1", "first")
	second := newPost(t, r, "u2", "second")
	third := newPost(t, r, "u1", "third")

	all, err := r.List(context.Background(), repository.PostFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != third.ID || all[1].ID != second.ID || all[2].ID != first.ID {
		t.Fatalf("unexpected order: %v", ids(all))
	}

	mine, _ := r.List(context.Background(), repository.PostFilter{UserID: "u1"})
	if len(mine) != 2 || mine[0].ID != third.ID || mine[1].ID != first.ID {
		t.Fatalf("unexpected filtered list: %v", ids(mine))
	}
}

func ids(ps []*entity.Post) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestPostRepository_ToggleLike(t *testing.T) {
	ctx := context.Background()
	r := NewPostRepository()
	p := newPost(t, r, "owner", "hi")

	for i := 1; i <= 4; i++ {
		liked, err := r.ToggleLike(ctx, p.ID, "u1")
		if err != nil {
			t.Fatalf("ToggleLike #%d: %v", i, err)
		}
		if want := i%2 == 1; liked != want {
			t.Fatalf("toggle #%d liked=%v, want %v", i, liked, want)
		}
	}
	got, _ := r.GetByID(ctx, p.ID)
	if len(got.Likes) != 0 {
		t.Fatalf("likes = %v, want none after an even number of toggles", got.Likes)
	}

	if _, err := r.ToggleLike(ctx, "missing", "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPostRepository_ConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	r := NewPostRepository()
	p := newPost(t, r, "owner", "hi")

	users := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			if _, err := r.ToggleLike(ctx, p.ID, u); err != nil {
				t.Errorf("ToggleLike: %v", err)
			}
		}(u)
	}
	wg.Wait()

	got, _ := r.GetByID(ctx, p.ID)
	if len(got.Likes) != len(users) {
		t.Fatalf("likes = %v, want all %d users", got.Likes, len(users))
	}
	for _, u := range users {
		if !got.LikedBy(u) {
			t.Fatalf("missing like from %s", u)
		}
	}
}

func TestPostRepository_CommentsAndDelete(t *testing.T) {
	ctx := context.Background()
	r := NewPostRepository()
	p := newPost(t, r, "owner", "hi")

	for _, text := range []string{"one", "two", "three"} {
		c := &entity.Comment{UserID: "u1", Text: text}
		if err := r.AppendComment(ctx, p.ID, c); err != nil {
			t.Fatalf("AppendComment: %v", err)
		}
		if c.ID == "" {
			t.Fatal("comment id not assigned")
		}
	}
	got, _ := r.GetByID(ctx, p.ID)
	if len(got.Comments) != 3 || got.Comments[0].Text != "one" || got.Comments[2].Text != "three" {
		t.Fatalf("unexpected comments: %+v", got.Comments)
	}

	// mutating a returned post does not leak into the store
	got.Comments[0].Text = "edited"
	again, _ := r.GetByID(ctx, p.ID)
	if again.Comments[0].Text != "one" {
		t.Fatal("store mutated through returned value")
	}

	if err := r.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.GetByID(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
	if err := r.Delete(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
	if err := r.AppendComment(ctx, p.ID, &entity.Comment{UserID: "u1", Text: "late"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("comment on deleted post: want ErrNotFound, got %v", err)
	}
}
