package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-social-feed/internal/domain"
	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	"github.com/oksasatya/go-social-feed/internal/domain/repository"
)

const postColumns = `id, user_id, text, images, likes::text[], created_at, updated_at`

// PostRepository keeps posts in the posts table and comments in
// post_comments. Likes live in a uuid[] column so a toggle is one UPDATE.
type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func errPostNotFound() error { return fmt.Errorf("%w: post not found", domain.ErrNotFound) }

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (user_id, text, images)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.Text, images)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	p.Images = images
	p.Likes = []string{}
	p.Comments = []entity.Comment{}
	return nil
}

func scanPost(row pgx.Row) (*entity.Post, error) {
	p := &entity.Post{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Text, &p.Images, &p.Likes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	p.Comments = []entity.Comment{}
	return p, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	if !validID(id) {
		return nil, errPostNotFound()
	}
	p, err := scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errPostNotFound()
		}
		return nil, err
	}
	if err := r.loadComments(ctx, []*entity.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) List(ctx context.Context, f repository.PostFilter) ([]*entity.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts`
	var args []any
	if f.UserID != "" {
		if !validID(f.UserID) {
			return []*entity.Post{}, nil
		}
		query += ` WHERE user_id = $1`
		args = append(args, f.UserID)
	}
	query += ` ORDER BY created_at DESC, seq DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	posts := []*entity.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		posts = append(posts, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadComments(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// loadComments fills Comments for every post with a single query.
func (r *PostRepository) loadComments(ctx context.Context, posts []*entity.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Post, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, post_id, user_id, text, created_at
		FROM post_comments
		WHERE post_id = ANY($1::uuid[])
		ORDER BY seq
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var c entity.Comment
		var postID string
		if err := rows.Scan(&c.ID, &postID, &c.UserID, &c.Text, &c.CreatedAt); err != nil {
			return err
		}
		if p, ok := byID[postID]; ok {
			p.Comments = append(p.Comments, c)
		}
	}
	return rows.Err()
}

// ToggleLike flips membership in a single statement. Postgres locks the row,
// so concurrent toggles on one post are applied one after another.
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	if !validID(postID) {
		return false, errPostNotFound()
	}
	if !validID(userID) {
		return false, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}
	var liked bool
	err := r.pool.QueryRow(ctx, `
		UPDATE posts
		SET likes = CASE
				WHEN $2::uuid = ANY(likes) THEN array_remove(likes, $2::uuid)
				ELSE array_append(likes, $2::uuid)
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING $2::uuid = ANY(likes)
	`, postID, userID).Scan(&liked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, errPostNotFound()
		}
		return false, err
	}
	return liked, nil
}

// AppendComment inserts the comment only if the post still exists.
func (r *PostRepository) AppendComment(ctx context.Context, postID string, c *entity.Comment) error {
	if !validID(postID) {
		return errPostNotFound()
	}
	err := r.pool.QueryRow(ctx, `
		WITH p AS (
			UPDATE posts SET updated_at = now() WHERE id = $1 RETURNING id
		)
		INSERT INTO post_comments (post_id, user_id, text)
		SELECT p.id, $2, $3 FROM p
		RETURNING id, created_at
	`, postID, c.UserID, c.Text).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeForeignKeyViolation {
			return errPostNotFound()
		}
		return err
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return errPostNotFound()
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errPostNotFound()
	}
	return nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
