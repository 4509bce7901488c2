package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jmerrifield20/threadboard/internal/board/model"
)

const commentColumns = `id, post_id, parent_id, author_id, body, nesting_level,
	is_edited, moderator_edited, state, created_at, updated_at, deleted_at`

var commentSortColumns = map[string]string{
	"created_at":    "created_at",
	"updated_at":    "updated_at",
	"nesting_level": "nesting_level",
}

// CommentRepository provides CRUD operations for comments against PostgreSQL.
type CommentRepository struct {
	db Querier
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db Querier) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a new comment. ID and timestamps are assigned here.
func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	c.ID = uuid.New()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.State == "" {
		c.State = model.CommentActive
	}

	query := `
		INSERT INTO comments (
			id, post_id, parent_id, author_id, body, nesting_level,
			is_edited, moderator_edited, state, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if _, err := r.db.Exec(ctx, query,
		c.ID, c.PostID, c.ParentID, c.AuthorID, c.Body, c.NestingLevel,
		c.IsEdited, c.ModeratorEdited, c.State, c.CreatedAt, c.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// Get retrieves a comment by ID regardless of its state.
func (r *CommentRepository) Get(ctx context.Context, id uuid.UUID, lock Lock) (*model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1` + lock.clause()
	c, err := scanComment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "get comment")
	}
	return c, nil
}

// Update writes the mutable content fields of an active comment.
func (r *CommentRepository) Update(ctx context.Context, c *model.Comment) error {
	c.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx, `
		UPDATE comments
		SET body = $2, is_edited = $3, moderator_edited = $4, updated_at = $5
		WHERE id = $1 AND state = 'active'`,
		c.ID, c.Body, c.IsEdited, c.ModeratorEdited, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// SoftDelete marks an active comment deleted. A comment that is already
// deleted or missing yields model.ErrNotFound.
func (r *CommentRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE comments SET state = 'soft_deleted', deleted_at = $2, updated_at = $2
		WHERE id = $1 AND state = 'active'`, id, at)
	if err != nil {
		return fmt.Errorf("soft delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// List returns one page of comments matching f plus the total match count.
func (r *CommentRepository) List(ctx context.Context, f model.CommentFilter, p model.PageRequest) ([]*model.Comment, int64, error) {
	var w whereBuilder
	if f.PostID != nil {
		w.add("post_id = $%d", *f.PostID)
	}
	if f.ParentID != nil {
		w.add("parent_id = $%d", *f.ParentID)
	}
	if f.AuthorID != nil {
		w.add("author_id = $%d", *f.AuthorID)
	}
	if f.RootsOnly {
		w.raw("parent_id IS NULL")
	}
	if !f.IncludeDeleted {
		w.raw("state = 'active'")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM comments`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	limit, args := paginate(&w, p)
	query := `SELECT ` + commentColumns + ` FROM comments` + w.String() + orderBy(p, commentSortColumns) + limit
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []*model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func scanComment(row pgx.Row) (*model.Comment, error) {
	var c model.Comment
	if err := row.Scan(
		&c.ID, &c.PostID, &c.ParentID, &c.AuthorID, &c.Body, &c.NestingLevel,
		&c.IsEdited, &c.ModeratorEdited, &c.State,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
