package model

import (
	"time"

	"github.com/google/uuid"
)

// ContentType names the kind of content a report or action points at.
type ContentType string

const (
	ContentPost    ContentType = "post"
	ContentComment ContentType = "comment"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return t == ContentPost || t == ContentComment
}

// ReportStatus represents the lifecycle state of a report.
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportResolved ReportStatus = "resolved"
	ReportRejected ReportStatus = "rejected"
)

// Terminal reports whether s is a final state a pending report may move to.
func (s ReportStatus) Terminal() bool {
	return s == ReportResolved || s == ReportRejected
}

// Report is a member's complaint about a post or comment.
//
// Reason is the reporter's text and is never overwritten; the moderator's
// note lives in ResolutionNote.
type Report struct {
	ID              uuid.UUID    `json:"id"                 db:"id"`
	ReporterID      uuid.UUID    `json:"reporter_id"        db:"reporter_id"`
	ContentType     ContentType  `json:"content_type"       db:"content_type"`
	TargetPostID    *uuid.UUID   `json:"target_post_id,omitempty"    db:"target_post_id"`
	TargetCommentID *uuid.UUID   `json:"target_comment_id,omitempty" db:"target_comment_id"`
	Reason          string       `json:"reason"             db:"reason"`
	ResolutionNote  string       `json:"resolution_note"    db:"resolution_note"`
	Status          ReportStatus `json:"status"             db:"status"`
	CreatedAt       time.Time    `json:"created_at"         db:"created_at"`
	ResolvedAt      *time.Time   `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy      *uuid.UUID   `json:"resolved_by,omitempty" db:"resolved_by"`
}

// Target returns the reported content as a Target.
func (r *Report) Target() Target {
	return Target{PostID: r.TargetPostID, CommentID: r.TargetCommentID}
}

// ReportFilter narrows a report listing.
type ReportFilter struct {
	Status     ReportStatus
	ReporterID *uuid.UUID
}

// ReportSortColumns is the allow-list of sortable report columns.
var ReportSortColumns = []string{"created_at", "status"}

// CreateReportRequest is the payload for POST /reports.
type CreateReportRequest struct {
	ContentType     ContentType `json:"content_type"      binding:"required,contenttype"`
	TargetPostID    string      `json:"target_post_id"    binding:"omitempty,uuid"`
	TargetCommentID string      `json:"target_comment_id" binding:"omitempty,uuid"`
	Reason          string      `json:"reason"            binding:"required"`
}

// ResolveReportRequest is the payload for PUT /reports/:id.
//
// Action, when present, is applied against the report's target in the same
// transaction as the status change.
type ResolveReportRequest struct {
	Status ReportStatus         `json:"status" binding:"required"`
	Note   string               `json:"note"`
	Action *ResolveReportAction `json:"action,omitempty"`
}

// ResolveReportAction is the optional enforcement attached to a resolution.
type ResolveReportAction struct {
	ActionType ActionType `json:"action_type" binding:"required,actiontype"`
	Details    string     `json:"details"`
}
