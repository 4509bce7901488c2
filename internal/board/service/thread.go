package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/auditlog"
	"github.com/jmerrifield20/threadboard/internal/board/model"
	"github.com/jmerrifield20/threadboard/internal/board/policy"
	"github.com/jmerrifield20/threadboard/internal/board/repository"
	"github.com/jmerrifield20/threadboard/internal/metrics"
	"github.com/jmerrifield20/threadboard/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ThreadService maintains comment trees: roots, replies under the depth
// limit, edits and soft deletes.
type ThreadService struct {
	store    repository.Store
	maxDepth int
	audit    auditTrail
	logger   *zap.Logger
}

// NewThreadService creates a ThreadService. maxDepth <= 0 selects
// model.DefaultMaxDepth. The limit is fixed for the lifetime of the service.
func NewThreadService(store repository.Store, maxDepth int, logger *zap.Logger) *ThreadService {
	if maxDepth <= 0 {
		maxDepth = model.DefaultMaxDepth
	}
	return &ThreadService{
		store:    store,
		maxDepth: maxDepth,
		audit:    auditTrail{logger: logger},
		logger:   logger,
	}
}

// SetAuditChain enables hash-chain records for moderator edits and deletes.
func (s *ThreadService) SetAuditChain(c auditlog.Chain) {
	s.audit.chain = c
}

// MaxDepth returns the configured nesting limit.
func (s *ThreadService) MaxDepth() int { return s.maxDepth }

// CreateRootComment attaches a new top-level comment to a live post.
func (s *ThreadService) CreateRootComment(ctx context.Context, p policy.Principal, postID uuid.UUID, body string) (c *model.Comment, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ThreadService.CreateRootComment",
		attribute.String("post.id", postID.String()))
	defer func() { telemetry.End(span, err) }()

	if err := policy.CanPerform(p, policy.OpCommentCreate, policy.Subject{}); err != nil {
		return nil, err
	}
	clean, err := cleanBody(body)
	if err != nil {
		return nil, err
	}

	c = &model.Comment{
		PostID:       postID,
		AuthorID:     p.ID,
		Body:         clean,
		NestingLevel: 0,
		State:        model.CommentActive,
	}
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := requireLivePost(ctx, tx, postID, repository.ForShare); err != nil {
			return err
		}
		return tx.Comments().Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCommentCreated("root")
	s.logger.Info("comment created",
		zap.String("id", c.ID.String()),
		zap.String("post_id", postID.String()),
		zap.String("author_id", p.ID.String()),
	)
	return c, nil
}

// CreateReply adds a reply under parentID. The parent is re-read inside the
// transaction and the depth check runs before anything is written.
func (s *ThreadService) CreateReply(ctx context.Context, p policy.Principal, parentID uuid.UUID, body string) (c *model.Comment, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ThreadService.CreateReply",
		attribute.String("parent.id", parentID.String()))
	defer func() { telemetry.End(span, err) }()

	if err := policy.CanPerform(p, policy.OpCommentCreate, policy.Subject{}); err != nil {
		return nil, err
	}
	clean, err := cleanBody(body)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		parent, err := tx.Comments().Get(ctx, parentID, repository.ForShare)
		if err != nil {
			return err
		}
		if !parent.IsActive() {
			return model.ErrNotFound
		}

		depth := parent.NestingLevel + 1
		if depth > s.maxDepth {
			metrics.RecordNestingRejected()
			return fmt.Errorf("%w: reply would sit at level %d, limit is %d",
				model.ErrNestingLimitExceeded, depth, s.maxDepth)
		}
		if _, err := requireLivePost(ctx, tx, parent.PostID, repository.ForShare); err != nil {
			return err
		}

		c = &model.Comment{
			PostID:       parent.PostID,
			ParentID:     &parent.ID,
			AuthorID:     p.ID,
			Body:         clean,
			NestingLevel: depth,
			State:        model.CommentActive,
		}
		return tx.Comments().Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCommentCreated("reply")
	s.logger.Info("reply created",
		zap.String("id", c.ID.String()),
		zap.String("parent_id", parentID.String()),
		zap.Int("nesting_level", c.NestingLevel),
	)
	return c, nil
}

// EditComment replaces a comment body. Authors edit silently; a moderator
// or admin editing someone else's comment also records an edit action.
func (s *ThreadService) EditComment(ctx context.Context, p policy.Principal, id uuid.UUID, body string) (c *model.Comment, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ThreadService.EditComment",
		attribute.String("comment.id", id.String()))
	defer func() { telemetry.End(span, err) }()

	clean, err := cleanBody(body)
	if err != nil {
		return nil, err
	}

	var action *model.ModerationAction
	var kind policy.EditorKind
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		c, err = tx.Comments().Get(ctx, id, repository.ForUpdate)
		if err != nil {
			return err
		}
		if err := policy.CanPerform(p, policy.OpCommentEdit, policy.SubjectOf(c)); err != nil {
			return err
		}
		kind, err = policy.ClassifyEditor(p, c.AuthorID)
		if err != nil {
			return err
		}

		c.Body = clean
		c.IsEdited = true
		if kind.Audited() {
			c.ModeratorEdited = true
		}
		if err := tx.Comments().Update(ctx, c); err != nil {
			return err
		}

		if kind.Audited() {
			action, err = recordAction(ctx, tx, p, model.ActionEdit,
				model.Target{CommentID: &c.ID}, nil, "comment edited by "+kind.String())
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if action != nil {
		s.audit.actionCreated(ctx, action)
	}
	s.logger.Info("comment edited",
		zap.String("id", id.String()),
		zap.String("editor", kind.String()),
	)
	return c, nil
}

// SoftDeleteComment marks a comment deleted. Replies stay attached. Deleting
// an already deleted comment yields model.ErrNotFound.
func (s *ThreadService) SoftDeleteComment(ctx context.Context, p policy.Principal, id uuid.UUID) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "ThreadService.SoftDeleteComment",
		attribute.String("comment.id", id.String()))
	defer func() { telemetry.End(span, err) }()

	var action *model.ModerationAction
	var kind policy.EditorKind
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		c, err := tx.Comments().Get(ctx, id, repository.ForUpdate)
		if err != nil {
			return err
		}
		if err := policy.CanPerform(p, policy.OpCommentDelete, policy.SubjectOf(c)); err != nil {
			return err
		}
		kind, err = policy.ClassifyEditor(p, c.AuthorID)
		if err != nil {
			return err
		}
		if err := s.softDelete(ctx, tx, id); err != nil {
			return err
		}
		if kind.Audited() {
			action, err = recordAction(ctx, tx, p, model.ActionDelete,
				model.Target{CommentID: &id}, nil, "comment deleted by "+kind.String())
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	by := "author"
	if kind.Audited() {
		by = "moderator"
	}
	metrics.RecordCommentDeleted(by)
	if action != nil {
		s.audit.actionCreated(ctx, action)
	}
	s.logger.Info("comment deleted",
		zap.String("id", id.String()),
		zap.String("by", kind.String()),
	)
	return nil
}

// softDelete is the single soft-delete path, shared with moderation actions.
// It must run inside tx.
func (s *ThreadService) softDelete(ctx context.Context, tx repository.Store, id uuid.UUID) error {
	return tx.Comments().SoftDelete(ctx, id, time.Now().UTC())
}

// GetComment returns a comment. Deleted comments are visible to staff only.
func (s *ThreadService) GetComment(ctx context.Context, p policy.Principal, id uuid.UUID) (*model.Comment, error) {
	c, err := s.store.Comments().Get(ctx, id, repository.NoLock)
	if err != nil {
		return nil, err
	}
	if err := policy.CanPerform(p, policy.OpCommentView, policy.SubjectOf(c)); err != nil {
		return nil, err
	}
	return c, nil
}

// ListComments returns one page of comments. IncludeDeleted is ignored for
// callers who are not staff.
func (s *ThreadService) ListComments(ctx context.Context, p policy.Principal, f model.CommentFilter, req model.PageRequest) (page model.Page[*model.Comment], err error) {
	ctx, span := telemetry.StartSpan(ctx, "ThreadService.ListComments")
	defer func() { telemetry.End(span, err) }()

	if f.IncludeDeleted && !p.IsStaff() {
		f.IncludeDeleted = false
	}
	items, total, err := s.store.Comments().List(ctx, f, req)
	if err != nil {
		return model.Page[*model.Comment]{}, err
	}
	return model.NewPage(items, req, total), nil
}

// ListReplies returns the direct replies of a visible comment.
func (s *ThreadService) ListReplies(ctx context.Context, p policy.Principal, parentID uuid.UUID, req model.PageRequest) (model.Page[*model.Comment], error) {
	if _, err := s.GetComment(ctx, p, parentID); err != nil {
		return model.Page[*model.Comment]{}, err
	}
	return s.ListComments(ctx, p, model.CommentFilter{ParentID: &parentID}, req)
}
