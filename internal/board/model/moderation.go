package model

import (
	"time"

	"github.com/google/uuid"
)

// ActionType is the kind of enforcement a moderation action records.
type ActionType string

const (
	ActionDelete   ActionType = "delete"
	ActionWarn     ActionType = "warn"
	ActionHide     ActionType = "hide"
	ActionEdit     ActionType = "edit"
	ActionBan      ActionType = "ban"
	ActionRestrict ActionType = "restrict"
)

// Valid reports whether a is a known action type.
func (a ActionType) Valid() bool {
	switch a {
	case ActionDelete, ActionWarn, ActionHide, ActionEdit, ActionBan, ActionRestrict:
		return true
	}
	return false
}

// Target points at a post or a comment. At most one field is set.
type Target struct {
	PostID    *uuid.UUID `json:"target_post_id,omitempty"`
	CommentID *uuid.UUID `json:"target_comment_id,omitempty"`
}

// IsSet reports whether exactly one of the two references is present.
func (t Target) IsSet() bool {
	return (t.PostID != nil) != (t.CommentID != nil)
}

// ContentType returns the kind of content t references, or "" when unset.
func (t Target) ContentType() ContentType {
	switch {
	case t.PostID != nil && t.CommentID == nil:
		return ContentPost
	case t.CommentID != nil && t.PostID == nil:
		return ContentComment
	}
	return ""
}

// ModerationAction is an immutable audit record of an enforcement decision.
// Exactly one of ActorModeratorID and ActorAdminID is set. RetiredAt marks an
// administrative correction; the record itself is never removed.
type ModerationAction struct {
	ID               uuid.UUID  `json:"id"                 db:"id"`
	ActorModeratorID *uuid.UUID `json:"actor_moderator_id,omitempty" db:"actor_moderator_id"`
	ActorAdminID     *uuid.UUID `json:"actor_admin_id,omitempty"     db:"actor_admin_id"`
	TargetPostID     *uuid.UUID `json:"target_post_id,omitempty"     db:"target_post_id"`
	TargetCommentID  *uuid.UUID `json:"target_comment_id,omitempty"  db:"target_comment_id"`
	ReportID         *uuid.UUID `json:"report_id,omitempty"          db:"report_id"`
	ActionType       ActionType `json:"action_type"        db:"action_type"`
	ActionDetails    string     `json:"action_details"     db:"action_details"`
	CreatedAt        time.Time  `json:"created_at"         db:"created_at"`
	RetiredAt        *time.Time `json:"retired_at,omitempty" db:"retired_at"`
	RetiredBy        *uuid.UUID `json:"retired_by,omitempty" db:"retired_by"`
}

// ActorID returns whichever actor column is populated.
func (a *ModerationAction) ActorID() uuid.UUID {
	if a.ActorAdminID != nil {
		return *a.ActorAdminID
	}
	if a.ActorModeratorID != nil {
		return *a.ActorModeratorID
	}
	return uuid.Nil
}

// Target returns the moderated content as a Target.
func (a *ModerationAction) Target() Target {
	return Target{PostID: a.TargetPostID, CommentID: a.TargetCommentID}
}

// IsRetired reports whether an administrator has retired the record.
func (a *ModerationAction) IsRetired() bool { return a.RetiredAt != nil }

// ActionFilter narrows a moderation action listing.
type ActionFilter struct {
	ReportID        *uuid.UUID
	TargetPostID    *uuid.UUID
	TargetCommentID *uuid.UUID
	ActionType      ActionType
	IncludeRetired  bool
}

// ActionSortColumns is the allow-list of sortable action columns.
var ActionSortColumns = []string{"created_at", "action_type"}

// CreateModerationActionRequest is the payload for POST /moderationActions.
type CreateModerationActionRequest struct {
	ActionType      ActionType `json:"action_type"       binding:"required,actiontype"`
	TargetPostID    string     `json:"target_post_id"    binding:"omitempty,uuid"`
	TargetCommentID string     `json:"target_comment_id" binding:"omitempty,uuid"`
	ReportID        string     `json:"report_id"         binding:"omitempty,uuid"`
	Details         string     `json:"details"`
}

// Post is the subset of the post record the board needs.
type Post struct {
	ID        uuid.UUID  `json:"id"         db:"id"`
	AuthorID  uuid.UUID  `json:"author_id"  db:"author_id"`
	Title     string     `json:"title"      db:"title"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}
