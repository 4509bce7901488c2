package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/board/model"
)

// PostRepository reads the posts table owned by the post subsystem.
type PostRepository struct {
	db Querier
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db Querier) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a post. Used by seeding and tests; the board never creates
// posts on its own.
func (r *PostRepository) Create(ctx context.Context, p *model.Post) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO posts (id, author_id, title, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title`,
		p.ID, p.AuthorID, p.Title, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// Get retrieves a post by ID, including soft-deleted posts.
func (r *PostRepository) Get(ctx context.Context, id uuid.UUID, lock Lock) (*model.Post, error) {
	var p model.Post
	err := r.db.QueryRow(ctx,
		`SELECT id, author_id, title, created_at, deleted_at FROM posts WHERE id = $1`+lock.clause(), id,
	).Scan(&p.ID, &p.AuthorID, &p.Title, &p.CreatedAt, &p.DeletedAt)
	if err != nil {
		return nil, notFound(err, "get post")
	}
	return &p, nil
}

// SoftDelete marks a live post deleted.
func (r *PostRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE posts SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("soft delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
