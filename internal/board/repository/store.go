package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/board/model"
)

// Lock selects the row lock taken by a read inside a transaction.
// Outside a transaction the lock is a no-op.
type Lock int

const (
	NoLock Lock = iota
	ForShare
	ForUpdate
)

func (l Lock) clause() string {
	switch l {
	case ForShare:
		return " FOR SHARE"
	case ForUpdate:
		return " FOR UPDATE"
	}
	return ""
}

// CommentRepo persists comments. Get returns soft-deleted rows too; callers
// decide visibility.
type CommentRepo interface {
	Create(ctx context.Context, c *model.Comment) error
	Get(ctx context.Context, id uuid.UUID, lock Lock) (*model.Comment, error)
	Update(ctx context.Context, c *model.Comment) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	List(ctx context.Context, f model.CommentFilter, p model.PageRequest) ([]*model.Comment, int64, error)
}

// ReportRepo persists reports.
type ReportRepo interface {
	Create(ctx context.Context, r *model.Report) error
	Get(ctx context.Context, id uuid.UUID, lock Lock) (*model.Report, error)
	Resolve(ctx context.Context, r *model.Report) error
	List(ctx context.Context, f model.ReportFilter, p model.PageRequest) ([]*model.Report, int64, error)
}

// ActionRepo persists moderation actions. There is no update path besides
// Retire.
type ActionRepo interface {
	Create(ctx context.Context, a *model.ModerationAction) error
	Get(ctx context.Context, id uuid.UUID, lock Lock) (*model.ModerationAction, error)
	Retire(ctx context.Context, id, by uuid.UUID, at time.Time) error
	List(ctx context.Context, f model.ActionFilter, p model.PageRequest) ([]*model.ModerationAction, int64, error)
}

// PostRepo is the narrow view of the external post store: existence checks
// and the soft delete used by moderation.
type PostRepo interface {
	Create(ctx context.Context, p *model.Post) error
	Get(ctx context.Context, id uuid.UUID, lock Lock) (*model.Post, error)
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Store groups the repositories and runs units of work atomically.
//
// WithTx calls fn with a Store whose repositories share one transaction. It
// commits when fn returns nil and rolls back otherwise. Calling WithTx on a
// transactional Store runs fn in the same transaction.
type Store interface {
	Comments() CommentRepo
	Reports() ReportRepo
	Actions() ActionRepo
	Posts() PostRepo
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
