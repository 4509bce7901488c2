package service

import (
	"context"
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

// ModerationService owns reports and the moderation action audit trail.
type ModerationService struct {
	store   repository.Store
	threads *ThreadService
	audit   auditTrail
	logger  *zap.Logger
}

// NewModerationService creates a ModerationService. threads supplies the
// comment soft-delete path used by delete actions.
func NewModerationService(store repository.Store, threads *ThreadService, logger *zap.Logger) *ModerationService {
	return &ModerationService{
		store:   store,
		threads: threads,
		audit:   auditTrail{logger: logger},
		logger:  logger,
	}
}

// SetAuditChain enables hash-chain records for actions and report closures.
func (s *ModerationService) SetAuditChain(c auditlog.Chain) {
	s.audit.chain = c
}

// CreateReport files a pending report against a live post or comment.
func (s *ModerationService) CreateReport(ctx context.Context, p policy.Principal, req *model.CreateReportRequest) (r *model.Report, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ModerationService.CreateReport",
		attribute.String("content_type", string(req.ContentType)))
	defer func() { telemetry.End(span, err) }()

	if err := policy.CanPerform(p, policy.OpReportCreate, policy.Subject{}); err != nil {
		return nil, err
	}
	if !req.ContentType.Valid() {
		return nil, model.Invalid("content_type must be post or comment")
	}
	target, err := parseTarget(req.TargetPostID, req.TargetCommentID)
	if err != nil {
		return nil, err
	}
	if target.ContentType() != req.ContentType {
		return nil, model.Invalid("target does not match content_type " + string(req.ContentType))
	}
	reason, err := cleanText("reason", req.Reason, true)
	if err != nil {
		return nil, err
	}

	r = &model.Report{
		ReporterID:      p.ID,
		ContentType:     req.ContentType,
		TargetPostID:    target.PostID,
		TargetCommentID: target.CommentID,
		Reason:          reason,
	}
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := requireLiveTarget(ctx, tx, target, repository.ForShare); err != nil {
			return err
		}
		return tx.Reports().Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordReportTransition(string(model.ReportPending))
	s.logger.Info("report filed",
		zap.String("id", r.ID.String()),
		zap.String("content_type", string(r.ContentType)),
		zap.String("reporter_id", p.ID.String()),
	)
	return r, nil
}

// ApplyModerationAction records an enforcement decision by staff. A delete
// action soft-deletes its target in the same transaction.
func (s *ModerationService) ApplyModerationAction(ctx context.Context, p policy.Principal, req *model.CreateModerationActionRequest) (a *model.ModerationAction, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ModerationService.ApplyModerationAction",
		attribute.String("action_type", string(req.ActionType)))
	defer func() { telemetry.End(span, err) }()

	if err := policy.CanPerform(p, policy.OpActionCreate, policy.Subject{}); err != nil {
		return nil, err
	}
	if !req.ActionType.Valid() {
		return nil, model.Invalid("action_type must be one of delete, warn, hide, edit, ban, restrict")
	}
	target, err := parseTarget(req.TargetPostID, req.TargetCommentID)
	if err != nil {
		return nil, err
	}
	var reportID *uuid.UUID
	if req.ReportID != "" {
		id, err := uuid.Parse(req.ReportID)
		if err != nil {
			return nil, model.Invalid("report_id must be a UUID")
		}
		reportID = &id
	}
	details, err := cleanText("details", req.Details, false)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if reportID != nil {
			if _, err := tx.Reports().Get(ctx, *reportID, repository.NoLock); err != nil {
				return err
			}
		}
		a, err = s.enforce(ctx, tx, p, req.ActionType, target, reportID, details)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.actionCreated(ctx, a)
	s.logger.Info("moderation action applied",
		zap.String("id", a.ID.String()),
		zap.String("action_type", string(a.ActionType)),
		zap.String("actor_id", p.ID.String()),
	)
	return a, nil
}

// enforce checks the target, applies the content-state side effect of the
// action type and writes the action row. It must run inside tx.
func (s *ModerationService) enforce(ctx context.Context, tx repository.Store, p policy.Principal, at model.ActionType, target model.Target, reportID *uuid.UUID, details string) (*model.ModerationAction, error) {
	if err := requireLiveTarget(ctx, tx, target, repository.ForUpdate); err != nil {
		return nil, err
	}

	if at == model.ActionDelete {
		switch {
		case target.CommentID != nil:
			if err := s.threads.softDelete(ctx, tx, *target.CommentID); err != nil {
				return nil, err
			}
			metrics.RecordCommentDeleted("moderator")
		case target.PostID != nil:
			if err := tx.Posts().SoftDelete(ctx, *target.PostID, time.Now().UTC()); err != nil {
				return nil, err
			}
		}
	}

	return recordAction(ctx, tx, p, at, target, reportID, details)
}

// recordAction writes one moderation action row attributed to p.
func recordAction(ctx context.Context, tx repository.Store, p policy.Principal, at model.ActionType, target model.Target, reportID *uuid.UUID, details string) (*model.ModerationAction, error) {
	modID, adminID, err := policy.ActorColumns(p)
	if err != nil {
		return nil, err
	}
	a := &model.ModerationAction{
		ActorModeratorID: modID,
		ActorAdminID:     adminID,
		TargetPostID:     target.PostID,
		TargetCommentID:  target.CommentID,
		ReportID:         reportID,
		ActionType:       at,
		ActionDetails:    details,
	}
	if err := tx.Actions().Create(ctx, a); err != nil {
		return nil, err
	}
	metrics.RecordModerationAction(string(at))
	return a, nil
}

// ResolveReport moves a pending report to resolved or rejected. The
// reporter's reason is kept; the note is stored separately. An attached
// action is enforced against the report's target in the same transaction.
func (s *ModerationService) ResolveReport(ctx context.Context, p policy.Principal, id uuid.UUID, req *model.ResolveReportRequest) (r *model.Report, a *model.ModerationAction, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ModerationService.ResolveReport",
		attribute.String("report.id", id.String()),
		attribute.String("status", string(req.Status)))
	defer func() { telemetry.End(span, err) }()

	if err := policy.CanPerform(p, policy.OpReportResolve, policy.Subject{}); err != nil {
		return nil, nil, err
	}
	if !req.Status.Terminal() {
		return nil, nil, model.Invalid("status must be resolved or rejected")
	}
	note, err := cleanText("note", req.Note, false)
	if err != nil {
		return nil, nil, err
	}
	var details string
	if req.Action != nil {
		if req.Status != model.ReportResolved {
			return nil, nil, model.Invalid("an action can only accompany a resolved report")
		}
		if !req.Action.ActionType.Valid() {
			return nil, nil, model.Invalid("action.action_type must be one of delete, warn, hide, edit, ban, restrict")
		}
		if details, err = cleanText("action.details", req.Action.Details, false); err != nil {
			return nil, nil, err
		}
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		r, err = tx.Reports().Get(ctx, id, repository.ForUpdate)
		if err != nil {
			return err
		}
		if r.Status != model.ReportPending {
			return model.ErrInvalidStateTransition
		}

		now := time.Now().UTC()
		r.Status = req.Status
		r.ResolutionNote = note
		r.ResolvedAt = &now
		r.ResolvedBy = &p.ID
		if err := tx.Reports().Resolve(ctx, r); err != nil {
			return err
		}

		if req.Action != nil {
			a, err = s.enforce(ctx, tx, p, req.Action.ActionType, r.Target(), &r.ID, details)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.RecordReportTransition(string(r.Status))
	s.audit.reportClosed(ctx, r)
	if a != nil {
		s.audit.actionCreated(ctx, a)
	}
	s.logger.Info("report closed",
		zap.String("id", r.ID.String()),
		zap.String("status", string(r.Status)),
		zap.String("resolved_by", p.ID.String()),
	)
	return r, a, nil
}

// RetireModerationAction sets the retirement marker on an action. Content
// moderation is not reversed. Retiring an already retired action yields
// model.ErrNotFound.
func (s *ModerationService) RetireModerationAction(ctx context.Context, p policy.Principal, id uuid.UUID) (a *model.ModerationAction, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ModerationService.RetireModerationAction",
		attribute.String("action.id", id.String()))
	defer func() { telemetry.End(span, err) }()

	if err := policy.CanPerform(p, policy.OpActionRetire, policy.Subject{}); err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		a, err = tx.Actions().Get(ctx, id, repository.ForUpdate)
		if err != nil {
			return err
		}
		if err := policy.CanPerform(p, policy.OpActionRetire, policy.Subject{Deleted: a.IsRetired()}); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := tx.Actions().Retire(ctx, id, p.ID, now); err != nil {
			return err
		}
		a.RetiredAt = &now
		a.RetiredBy = &p.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.actionRetired(ctx, a)
	s.logger.Info("moderation action retired",
		zap.String("id", id.String()),
		zap.String("admin_id", p.ID.String()),
	)
	return a, nil
}

// GetReport returns a report to staff.
func (s *ModerationService) GetReport(ctx context.Context, p policy.Principal, id uuid.UUID) (*model.Report, error) {
	if err := policy.CanPerform(p, policy.OpReportView, policy.Subject{}); err != nil {
		return nil, err
	}
	return s.store.Reports().Get(ctx, id, repository.NoLock)
}

// ListReports returns one page of reports to staff.
func (s *ModerationService) ListReports(ctx context.Context, p policy.Principal, f model.ReportFilter, req model.PageRequest) (model.Page[*model.Report], error) {
	if err := policy.CanPerform(p, policy.OpReportView, policy.Subject{}); err != nil {
		return model.Page[*model.Report]{}, err
	}
	items, total, err := s.store.Reports().List(ctx, f, req)
	if err != nil {
		return model.Page[*model.Report]{}, err
	}
	return model.NewPage(items, req, total), nil
}

// GetModerationAction returns an action, retired or not, to staff.
func (s *ModerationService) GetModerationAction(ctx context.Context, p policy.Principal, id uuid.UUID) (*model.ModerationAction, error) {
	if err := policy.CanPerform(p, policy.OpActionView, policy.Subject{}); err != nil {
		return nil, err
	}
	return s.store.Actions().Get(ctx, id, repository.NoLock)
}

// ListModerationActions returns one page of actions to staff.
func (s *ModerationService) ListModerationActions(ctx context.Context, p policy.Principal, f model.ActionFilter, req model.PageRequest) (model.Page[*model.ModerationAction], error) {
	if err := policy.CanPerform(p, policy.OpActionView, policy.Subject{}); err != nil {
		return model.Page[*model.ModerationAction]{}, err
	}
	items, total, err := s.store.Actions().List(ctx, f, req)
	if err != nil {
		return model.Page[*model.ModerationAction]{}, err
	}
	return model.NewPage(items, req, total), nil
}
