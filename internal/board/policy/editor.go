package policy

import (
	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/board/model"
)

// EditorKind tags who is mutating a comment. Author edits leave no audit
// record; moderator and admin edits emit a ModerationAction.
type EditorKind int

const (
	EditorAuthor EditorKind = iota + 1
	EditorModerator
	EditorAdmin
)

func (k EditorKind) String() string {
	switch k {
	case EditorAuthor:
		return "author"
	case EditorModerator:
		return "moderator"
	case EditorAdmin:
		return "admin"
	}
	return "unknown"
}

// Audited reports whether mutations by k must be written to the audit trail.
func (k EditorKind) Audited() bool { return k == EditorModerator || k == EditorAdmin }

// ClassifyEditor returns the editing variant for p acting on content owned by
// authorID. The author path wins when a moderator touches their own comment.
func ClassifyEditor(p Principal, authorID uuid.UUID) (EditorKind, error) {
	if !p.Authenticated() {
		return 0, model.ErrForbidden
	}
	switch {
	case p.ID == authorID:
		return EditorAuthor, nil
	case p.Role == RoleAdmin:
		return EditorAdmin, nil
	case p.Role == RoleModerator:
		return EditorModerator, nil
	}
	return 0, model.ErrForbidden
}

// ActorColumns returns the actor reference for a moderation action written by
// p, filling exactly one of the moderator and admin columns.
func ActorColumns(p Principal) (moderatorID, adminID *uuid.UUID, err error) {
	id := p.ID
	switch p.Role {
	case RoleAdmin:
		return nil, &id, nil
	case RoleModerator:
		return &id, nil, nil
	}
	return nil, nil, model.ErrForbidden
}
