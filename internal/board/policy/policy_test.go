package policy_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/board/model"
	"github.com/jmerrifield20/threadboard/internal/board/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanPerform(t *testing.T) {
	owner := policy.Principal{ID: uuid.New(), Role: policy.RoleMember}
	stranger := policy.Principal{ID: uuid.New(), Role: policy.RoleMember}
	mod := policy.Principal{ID: uuid.New(), Role: policy.RoleModerator}
	admin := policy.Principal{ID: uuid.New(), Role: policy.RoleAdmin}
	anon := policy.Principal{Role: policy.RoleAdmin}

	live := policy.Subject{OwnerID: owner.ID}
	gone := policy.Subject{OwnerID: owner.ID, Deleted: true}

	tests := []struct {
		name string
		p    policy.Principal
		op   policy.Operation
		s    policy.Subject
		want error
	}{
		{"anonymous is rejected", anon, policy.OpCommentView, live, model.ErrForbidden},
		{"member creates", stranger, policy.OpCommentCreate, policy.Subject{}, nil},
		{"member views live", stranger, policy.OpCommentView, live, nil},
		{"member cannot see deleted", stranger, policy.OpCommentView, gone, model.ErrNotFound},
		{"staff sees deleted", mod, policy.OpCommentView, gone, nil},
		{"owner edits", owner, policy.OpCommentEdit, live, nil},
		{"stranger edit forbidden", stranger, policy.OpCommentEdit, live, model.ErrForbidden},
		{"moderator edits", mod, policy.OpCommentEdit, live, nil},
		{"edit deleted", owner, policy.OpCommentEdit, gone, model.ErrNotFound},
		{"staff edit deleted", admin, policy.OpCommentEdit, gone, model.ErrNotFound},
		{"owner deletes", owner, policy.OpCommentDelete, live, nil},
		{"stranger delete forbidden", stranger, policy.OpCommentDelete, live, model.ErrForbidden},
		{"delete twice", owner, policy.OpCommentDelete, gone, model.ErrNotFound},
		{"member reports", stranger, policy.OpReportCreate, policy.Subject{}, nil},
		{"member cannot list reports", stranger, policy.OpReportView, policy.Subject{}, model.ErrForbidden},
		{"member cannot resolve", owner, policy.OpReportResolve, policy.Subject{}, model.ErrForbidden},
		{"moderator resolves", mod, policy.OpReportResolve, policy.Subject{}, nil},
		{"member cannot act", owner, policy.OpActionCreate, live, model.ErrForbidden},
		{"moderator acts", mod, policy.OpActionCreate, live, nil},
		{"act on deleted", mod, policy.OpActionCreate, gone, model.ErrNotFound},
		{"moderator views actions", mod, policy.OpActionView, policy.Subject{}, nil},
		{"moderator cannot retire", mod, policy.OpActionRetire, policy.Subject{}, model.ErrForbidden},
		{"admin retires", admin, policy.OpActionRetire, policy.Subject{}, nil},
		{"admin retires retired", admin, policy.OpActionRetire, policy.Subject{Deleted: true}, model.ErrNotFound},
		{"unknown op", admin, policy.Operation(99), live, model.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.CanPerform(tt.p, tt.op, tt.s)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, policy.RoleAdmin, policy.ParseRole("admin"))
	assert.Equal(t, policy.RoleModerator, policy.ParseRole("moderator"))
	assert.Equal(t, policy.RoleMember, policy.ParseRole("member"))
	assert.Equal(t, policy.RoleMember, policy.ParseRole(""))
	assert.Equal(t, policy.RoleMember, policy.ParseRole("root"))
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "report.resolve", policy.OpReportResolve.String())
	assert.Equal(t, "unknown", policy.Operation(-1).String())
}

func TestClassifyEditor(t *testing.T) {
	author := uuid.New()

	kind, err := policy.ClassifyEditor(policy.Principal{ID: author, Role: policy.RoleModerator}, author)
	require.NoError(t, err)
	assert.Equal(t, policy.EditorAuthor, kind, "staff editing their own comment is a self edit")
	assert.False(t, kind.Audited())

	kind, err = policy.ClassifyEditor(policy.Principal{ID: uuid.New(), Role: policy.RoleModerator}, author)
	require.NoError(t, err)
	assert.Equal(t, policy.EditorModerator, kind)
	assert.True(t, kind.Audited())

	kind, err = policy.ClassifyEditor(policy.Principal{ID: uuid.New(), Role: policy.RoleAdmin}, author)
	require.NoError(t, err)
	assert.Equal(t, policy.EditorAdmin, kind)

	_, err = policy.ClassifyEditor(policy.Principal{ID: uuid.New(), Role: policy.RoleMember}, author)
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestActorColumns(t *testing.T) {
	mod := policy.Principal{ID: uuid.New(), Role: policy.RoleModerator}
	modID, adminID, err := policy.ActorColumns(mod)
	require.NoError(t, err)
	require.NotNil(t, modID)
	assert.Equal(t, mod.ID, *modID)
	assert.Nil(t, adminID)

	adm := policy.Principal{ID: uuid.New(), Role: policy.RoleAdmin}
	modID, adminID, err = policy.ActorColumns(adm)
	require.NoError(t, err)
	assert.Nil(t, modID)
	require.NotNil(t, adminID)
	assert.Equal(t, adm.ID, *adminID)

	_, _, err = policy.ActorColumns(policy.Principal{ID: uuid.New(), Role: policy.RoleMember})
	assert.ErrorIs(t, err, model.ErrForbidden)
}
