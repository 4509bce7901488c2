package service

import (
	"context"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/auditlog"
	"github.com/jmerrifield20/threadboard/internal/board/model"
	"github.com/jmerrifield20/threadboard/internal/board/repository"
	"github.com/jmerrifield20/threadboard/internal/metrics"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// maxReasonLength bounds report reasons, resolution notes and action details.
const maxReasonLength = 2000

var bodyPolicy = bluemonday.UGCPolicy()

// maxSanitizePasses bounds sanitize. Ordinary text is stable after one pass;
// only input that encodes markup as entities needs a second.
const maxSanitizePasses = 4

// sanitize strips disallowed markup and returns plain text: the entity
// escaping bluemonday applies to text nodes is undone so "a & b" is stored
// as typed. Passes repeat until the output is stable, so escaped markup that
// unescaping reveals is sanitized too and an edit that resubmits a stored
// body leaves it unchanged.
func sanitize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for i := 0; i < maxSanitizePasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(bodyPolicy.Sanitize(s)))
		if next == s {
			return s, nil
		}
		s = next
	}
	return "", model.Invalid("text contains markup that cannot be sanitized")
}

// cleanBody sanitizes user-supplied markup and enforces the length bounds on
// the stored text.
func cleanBody(raw string) (string, error) {
	body, err := sanitize(raw)
	if err != nil {
		return "", err
	}
	if body == "" {
		return "", model.Invalid("body must not be empty")
	}
	if utf8.RuneCountInString(body) > model.MaxBodyLength {
		return "", model.Invalid("body exceeds 10000 characters")
	}
	return body, nil
}

// cleanText sanitizes free text and enforces maxReasonLength. Empty is
// allowed unless required is set.
func cleanText(field, raw string, required bool) (string, error) {
	s, err := sanitize(raw)
	if err != nil {
		return "", err
	}
	if required && s == "" {
		return "", model.Invalid(field + " is required")
	}
	if utf8.RuneCountInString(s) > maxReasonLength {
		return "", model.Invalid(field + " exceeds 2000 characters")
	}
	return s, nil
}

// parseTarget turns the two optional target ID strings into a Target with
// exactly one reference set.
func parseTarget(postID, commentID string) (model.Target, error) {
	postID, commentID = strings.TrimSpace(postID), strings.TrimSpace(commentID)
	switch {
	case postID != "" && commentID != "":
		return model.Target{}, model.Invalid("only one of target_post_id and target_comment_id may be set")
	case postID == "" && commentID == "":
		return model.Target{}, model.Invalid("one of target_post_id or target_comment_id is required")
	}

	raw, field := postID, "target_post_id"
	if commentID != "" {
		raw, field = commentID, "target_comment_id"
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return model.Target{}, model.Invalid(field + " must be a UUID")
	}
	if commentID != "" {
		return model.Target{CommentID: &id}, nil
	}
	return model.Target{PostID: &id}, nil
}

// requireLivePost fails with model.ErrNotFound unless the post exists and is
// not deleted.
func requireLivePost(ctx context.Context, tx repository.Store, id uuid.UUID, lock repository.Lock) (*model.Post, error) {
	p, err := tx.Posts().Get(ctx, id, lock)
	if err != nil {
		return nil, err
	}
	if p.DeletedAt != nil {
		return nil, model.ErrNotFound
	}
	return p, nil
}

// requireLiveTarget fails with model.ErrNotFound unless the referenced post
// or comment exists and is not deleted.
func requireLiveTarget(ctx context.Context, tx repository.Store, t model.Target, lock repository.Lock) error {
	if t.PostID != nil {
		_, err := requireLivePost(ctx, tx, *t.PostID, lock)
		return err
	}
	if t.CommentID != nil {
		c, err := tx.Comments().Get(ctx, *t.CommentID, lock)
		if err != nil {
			return err
		}
		if !c.IsActive() {
			return model.ErrNotFound
		}
		return nil
	}
	return model.Invalid("target is required")
}

// auditTrail appends moderation events to the hash chain. Failures are
// logged and counted but never fail the request; the database row is the
// system of record.
type auditTrail struct {
	chain  auditlog.Chain // nil = no chain
	logger *zap.Logger
}

func (a auditTrail) append(ctx context.Context, event, subject, actor string, payload any) {
	if a.chain == nil {
		return
	}
	// The request may already be cancelled once the transaction commits.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := a.chain.Append(ctx, event, subject, actor, payload); err != nil {
		metrics.RecordAuditAppend(false)
		a.logger.Error("audit append failed (non-fatal)",
			zap.String("event", event),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return
	}
	metrics.RecordAuditAppend(true)
}

func (a auditTrail) actionCreated(ctx context.Context, act *model.ModerationAction) {
	a.append(ctx, auditlog.EventActionCreate, act.ID.String(), act.ActorID().String(), act)
}

func (a auditTrail) actionRetired(ctx context.Context, act *model.ModerationAction) {
	a.append(ctx, auditlog.EventActionRetire, act.ID.String(), act.RetiredBy.String(), act)
}

func (a auditTrail) reportClosed(ctx context.Context, r *model.Report) {
	a.append(ctx, auditlog.EventReportClose, r.ID.String(), r.ResolvedBy.String(), r)
}
