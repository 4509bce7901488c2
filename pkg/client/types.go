package client

import "time"

// Comment is a node in a post's reply tree.
type Comment struct {
	ID              string     `json:"id"`
	PostID          string     `json:"post_id"`
	ParentID        *string    `json:"parent_id"`
	AuthorID        string     `json:"author_id"`
	Body            string     `json:"body"`
	NestingLevel    int        `json:"nesting_level"`
	IsEdited        bool       `json:"is_edited"`
	ModeratorEdited bool       `json:"moderator_edited"`
	State           string     `json:"state"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// Report is a member's complaint about a post or comment.
type Report struct {
	ID              string     `json:"id"`
	ReporterID      string     `json:"reporter_id"`
	ContentType     string     `json:"content_type"`
	TargetPostID    string     `json:"target_post_id,omitempty"`
	TargetCommentID string     `json:"target_comment_id,omitempty"`
	Reason          string     `json:"reason"`
	ResolutionNote  string     `json:"resolution_note"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy      string     `json:"resolved_by,omitempty"`
}

// Action is one entry of the moderation audit trail.
type Action struct {
	ID               string     `json:"id"`
	ActorModeratorID string     `json:"actor_moderator_id,omitempty"`
	ActorAdminID     string     `json:"actor_admin_id,omitempty"`
	TargetPostID     string     `json:"target_post_id,omitempty"`
	TargetCommentID  string     `json:"target_comment_id,omitempty"`
	ReportID         string     `json:"report_id,omitempty"`
	ActionType       string     `json:"action_type"`
	ActionDetails    string     `json:"action_details"`
	CreatedAt        time.Time  `json:"created_at"`
	RetiredAt        *time.Time `json:"retired_at,omitempty"`
	RetiredBy        string     `json:"retired_by,omitempty"`
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Current int   `json:"current"`
	Limit   int   `json:"limit"`
	Records int64 `json:"records"`
	Pages   int64 `json:"pages"`
}

// Page is the envelope returned by every list call.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// PageOptions selects a page. Zero values use the server defaults.
type PageOptions struct {
	Page  int
	Limit int
	Sort  string // "col", "-col" or "col:asc|desc"
}

// CommentQuery filters ListComments.
type CommentQuery struct {
	PostID         string
	ParentID       string
	AuthorID       string
	RootsOnly      bool
	IncludeDeleted bool
	PageOptions
}

// ReportQuery filters ListReports.
type ReportQuery struct {
	Status     string
	ReporterID string
	PageOptions
}

// ActionQuery filters ListActions.
type ActionQuery struct {
	ReportID        string
	TargetPostID    string
	TargetCommentID string
	ActionType      string
	IncludeRetired  bool
	PageOptions
}

// ReportRequest files a report. Set exactly one target.
type ReportRequest struct {
	ContentType     string `json:"content_type"`
	TargetPostID    string `json:"target_post_id,omitempty"`
	TargetCommentID string `json:"target_comment_id,omitempty"`
	Reason          string `json:"reason"`
}

// ResolveRequest closes a pending report, optionally enforcing an action.
type ResolveRequest struct {
	Status string         `json:"status"` // resolved or rejected
	Note   string         `json:"note,omitempty"`
	Action *ResolveAction `json:"action,omitempty"`
}

// ResolveAction is applied to the report's target when resolving.
type ResolveAction struct {
	ActionType string `json:"action_type"`
	Details    string `json:"details,omitempty"`
}

// ActionRequest records a moderation action. Set at most one target.
type ActionRequest struct {
	ActionType      string `json:"action_type"`
	TargetPostID    string `json:"target_post_id,omitempty"`
	TargetCommentID string `json:"target_comment_id,omitempty"`
	ReportID        string `json:"report_id,omitempty"`
	Details         string `json:"details,omitempty"`
}

// AuditOverview is the chain length and head hash.
type AuditOverview struct {
	Entries int    `json:"entries"`
	Head    string `json:"head"`
}

// AuditVerification is the result of walking the chain.
type AuditVerification struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}
