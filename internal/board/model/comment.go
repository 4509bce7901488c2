package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxDepth is the deepest nesting level a reply may be created at.
// Root comments sit at level 0.
const DefaultMaxDepth = 5

// MaxBodyLength is the upper bound on a comment body after sanitizing.
const MaxBodyLength = 10000

// CommentState is the lifecycle state of a comment.
type CommentState string

const (
	CommentActive      CommentState = "active"
	CommentSoftDeleted CommentState = "soft_deleted"
)

// Comment is a node in a post's reply tree.
type Comment struct {
	ID              uuid.UUID    `json:"id"               db:"id"`
	PostID          uuid.UUID    `json:"post_id"          db:"post_id"`
	ParentID        *uuid.UUID   `json:"parent_id"        db:"parent_id"`
	AuthorID        uuid.UUID    `json:"author_id"        db:"author_id"`
	Body            string       `json:"body"             db:"body"`
	NestingLevel    int          `json:"nesting_level"    db:"nesting_level"`
	IsEdited        bool         `json:"is_edited"        db:"is_edited"`
	ModeratorEdited bool         `json:"moderator_edited" db:"moderator_edited"`
	State           CommentState `json:"state"            db:"state"`
	CreatedAt       time.Time    `json:"created_at"       db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"       db:"updated_at"`
	DeletedAt       *time.Time   `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsRoot reports whether c hangs directly off its post.
func (c *Comment) IsRoot() bool { return c.ParentID == nil }

// IsActive reports whether c has not been soft-deleted.
func (c *Comment) IsActive() bool { return c.State == CommentActive }

// CommentFilter narrows a comment listing. Zero values are ignored.
type CommentFilter struct {
	PostID         *uuid.UUID
	ParentID       *uuid.UUID
	AuthorID       *uuid.UUID
	RootsOnly      bool
	IncludeDeleted bool
}

// CommentSortColumns is the allow-list of sortable comment columns.
var CommentSortColumns = []string{"created_at", "updated_at", "nesting_level"}

// CreateCommentRequest is the payload for POST /comments.
type CreateCommentRequest struct {
	PostID string `json:"post_id" binding:"required,uuid"`
	Body   string `json:"body"    binding:"required"`
}

// CreateReplyRequest is the payload for POST /comments/:id/replies.
type CreateReplyRequest struct {
	Body string `json:"body" binding:"required"`
}

// EditCommentRequest is the payload for PUT /comments/:id.
type EditCommentRequest struct {
	Body string `json:"body" binding:"required"`
}
