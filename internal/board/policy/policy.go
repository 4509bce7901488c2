// Package policy decides whether a principal may perform an operation on a
// comment, report or moderation action. It holds no state; callers load the
// entity and pass the facts the decision needs.
package policy

import (
	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/board/model"
)

// Role is the coarse permission level attached to a principal.
type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a token claim to a Role. Unknown or empty values are members.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleModerator:
		return RoleModerator
	case RoleAdmin:
		return RoleAdmin
	}
	return RoleMember
}

// Principal is the authenticated caller.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

// Authenticated reports whether p carries a user identity.
func (p Principal) Authenticated() bool { return p.ID != uuid.Nil }

// IsStaff reports whether p is a moderator or an admin.
func (p Principal) IsStaff() bool { return p.Role == RoleModerator || p.Role == RoleAdmin }

// Operation identifies what the principal is attempting.
type Operation int

const (
	OpCommentCreate Operation = iota
	OpCommentView
	OpCommentEdit
	OpCommentDelete
	OpReportCreate
	OpReportView
	OpReportResolve
	OpActionCreate
	OpActionView
	OpActionRetire
)

var opNames = map[Operation]string{
	OpCommentCreate: "comment.create",
	OpCommentView:   "comment.view",
	OpCommentEdit:   "comment.edit",
	OpCommentDelete: "comment.delete",
	OpReportCreate:  "report.create",
	OpReportView:    "report.view",
	OpReportResolve: "report.resolve",
	OpActionCreate:  "action.create",
	OpActionView:    "action.view",
	OpActionRetire:  "action.retire",
}

func (o Operation) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

// Subject is what the gate needs to know about the entity being acted on.
// OwnerID is the comment author; Deleted covers soft-deleted comments and
// retired moderation actions.
type Subject struct {
	OwnerID uuid.UUID
	Deleted bool
}

// SubjectOf describes a comment for the gate.
func SubjectOf(c *model.Comment) Subject {
	return Subject{OwnerID: c.AuthorID, Deleted: !c.IsActive()}
}

// CanPerform returns nil when p may perform op on s, otherwise
// model.ErrNotFound, model.ErrForbidden or a validation error.
//
// Deleted subjects read as absent to everybody except staff viewing history.
func CanPerform(p Principal, op Operation, s Subject) error {
	if !p.Authenticated() {
		return model.ErrForbidden
	}

	switch op {
	case OpCommentView:
		if s.Deleted && !p.IsStaff() {
			return model.ErrNotFound
		}
		return nil

	case OpCommentEdit, OpCommentDelete:
		if s.Deleted {
			return model.ErrNotFound
		}
		if p.ID == s.OwnerID || p.IsStaff() {
			return nil
		}
		return model.ErrForbidden

	case OpCommentCreate, OpReportCreate:
		return nil

	case OpReportView, OpReportResolve, OpActionView:
		if !p.IsStaff() {
			return model.ErrForbidden
		}
		return nil

	case OpActionCreate:
		if !p.IsStaff() {
			return model.ErrForbidden
		}
		if s.Deleted {
			return model.ErrNotFound
		}
		return nil

	case OpActionRetire:
		if p.Role != RoleAdmin {
			return model.ErrForbidden
		}
		if s.Deleted {
			return model.ErrNotFound
		}
		return nil
	}
	return model.ErrForbidden
}
