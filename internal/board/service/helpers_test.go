package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/auditlog"
	"github.com/jmerrifield20/threadboard/internal/board/model"
	"github.com/jmerrifield20/threadboard/internal/board/policy"
	"github.com/jmerrifield20/threadboard/internal/board/repository"
	"github.com/jmerrifield20/threadboard/internal/board/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var ctx = context.Background()

type fixture struct {
	store   *repository.MemoryStore
	chain   *auditlog.MemoryChain
	threads *service.ThreadService
	mod     *service.ModerationService
	postID  uuid.UUID
}

func newFixture(t *testing.T, maxDepth int) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	chain := auditlog.NewMemoryChain()
	logger := zap.NewNop()

	threads := service.NewThreadService(store, maxDepth, logger)
	threads.SetAuditChain(chain)
	mod := service.NewModerationService(store, threads, logger)
	mod.SetAuditChain(chain)

	f := &fixture{store: store, chain: chain, threads: threads, mod: mod}
	f.postID = f.addPost(t)
	return f
}

func (f *fixture) addPost(t *testing.T) uuid.UUID {
	t.Helper()
	p := &model.Post{AuthorID: uuid.New(), Title: "hello"}
	require.NoError(t, f.store.Posts().Create(ctx, p))
	return p.ID
}

func (f *fixture) root(t *testing.T, author policy.Principal) *model.Comment {
	t.Helper()
	c, err := f.threads.CreateRootComment(ctx, author, f.postID, "first")
	require.NoError(t, err)
	return c
}

func (f *fixture) actions(t *testing.T) []*model.ModerationAction {
	t.Helper()
	items, _, err := f.store.Actions().List(ctx, model.ActionFilter{IncludeRetired: true}, model.PageRequest{Page: 1, Limit: 100, Sort: "created_at"})
	require.NoError(t, err)
	return items
}

func member() policy.Principal    { return policy.Principal{ID: uuid.New(), Role: policy.RoleMember} }
func moderator() policy.Principal { return policy.Principal{ID: uuid.New(), Role: policy.RoleModerator} }
func admin() policy.Principal     { return policy.Principal{ID: uuid.New(), Role: policy.RoleAdmin} }
