package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jmerrifield20/threadboard/internal/board/model"
)

const actionColumns = `id, actor_moderator_id, actor_admin_id, target_post_id, target_comment_id,
	report_id, action_type, action_details, created_at, retired_at, retired_by`

var actionSortColumns = map[string]string{
	"created_at":  "created_at",
	"action_type": "action_type",
}

// ActionRepository stores moderation actions. Rows are insert-only apart from
// the retirement marker.
type ActionRepository struct {
	db Querier
}

// NewActionRepository creates a new ActionRepository.
func NewActionRepository(db Querier) *ActionRepository {
	return &ActionRepository{db: db}
}

// Create inserts a moderation action.
func (r *ActionRepository) Create(ctx context.Context, a *model.ModerationAction) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx, `
		INSERT INTO moderation_actions (
			id, actor_moderator_id, actor_admin_id, target_post_id, target_comment_id,
			report_id, action_type, action_details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.ActorModeratorID, a.ActorAdminID, a.TargetPostID, a.TargetCommentID,
		a.ReportID, a.ActionType, a.ActionDetails, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert moderation action: %w", err)
	}
	return nil
}

// Get retrieves a moderation action by ID, retired or not.
func (r *ActionRepository) Get(ctx context.Context, id uuid.UUID, lock Lock) (*model.ModerationAction, error) {
	query := `SELECT ` + actionColumns + ` FROM moderation_actions WHERE id = $1` + lock.clause()
	a, err := scanAction(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "get moderation action")
	}
	return a, nil
}

// Retire sets the retirement marker on a live action. Retiring twice yields
// model.ErrNotFound.
func (r *ActionRepository) Retire(ctx context.Context, id, by uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE moderation_actions SET retired_at = $2, retired_by = $3
		WHERE id = $1 AND retired_at IS NULL`, id, at, by)
	if err != nil {
		return fmt.Errorf("retire moderation action: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// List returns paginated moderation actions.
func (r *ActionRepository) List(ctx context.Context, f model.ActionFilter, p model.PageRequest) ([]*model.ModerationAction, int64, error) {
	var w whereBuilder
	if f.ReportID != nil {
		w.add("report_id = $%d", *f.ReportID)
	}
	if f.TargetPostID != nil {
		w.add("target_post_id = $%d", *f.TargetPostID)
	}
	if f.TargetCommentID != nil {
		w.add("target_comment_id = $%d", *f.TargetCommentID)
	}
	if f.ActionType != "" {
		w.add("action_type = $%d", f.ActionType)
	}
	if !f.IncludeRetired {
		w.raw("retired_at IS NULL")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM moderation_actions`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count moderation actions: %w", err)
	}

	limit, args := paginate(&w, p)
	rows, err := r.db.Query(ctx,
		`SELECT `+actionColumns+` FROM moderation_actions`+w.String()+orderBy(p, actionSortColumns)+limit,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list moderation actions: %w", err)
	}
	defer rows.Close()

	var out []*model.ModerationAction
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan moderation action: %w", err)
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func scanAction(row pgx.Row) (*model.ModerationAction, error) {
	var a model.ModerationAction
	if err := row.Scan(
		&a.ID, &a.ActorModeratorID, &a.ActorAdminID,
		&a.TargetPostID, &a.TargetCommentID, &a.ReportID,
		&a.ActionType, &a.ActionDetails, &a.CreatedAt,
		&a.RetiredAt, &a.RetiredBy,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
