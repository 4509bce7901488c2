//go:build integration

package service_test

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmerrifield20/threadboard/internal/auditlog"
	"github.com/jmerrifield20/threadboard/internal/board/model"
	"github.com/jmerrifield20/threadboard/internal/board/repository"
	"github.com/jmerrifield20/threadboard/internal/board/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupPostgres wires the services to a migrated database. Tables are
// emptied first; the audit genesis row is kept.
func setupPostgres(t *testing.T) *fixture {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))

	_, err = pool.Exec(ctx, `TRUNCATE moderation_actions, reports, comments, posts`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM audit_chain WHERE seq > 0`)
	require.NoError(t, err)

	logger := zap.NewNop()
	store := repository.NewPostgresStore(pool)
	chain := auditlog.NewPostgresChain(pool, logger)

	threads := service.NewThreadService(store, model.DefaultMaxDepth, logger)
	threads.SetAuditChain(chain)
	mod := service.NewModerationService(store, threads, logger)
	mod.SetAuditChain(chain)

	f := &fixture{threads: threads, mod: mod}
	p := &model.Post{AuthorID: uuid.New(), Title: "integration"}
	require.NoError(t, store.Posts().Create(ctx, p))
	f.postID = p.ID

	t.Cleanup(func() {
		n, err := chain.Len(ctx)
		if assert.NoError(t, err) {
			t.Logf("audit chain length %d", n)
		}
		assert.NoError(t, chain.Verify(ctx))
	})
	return f
}

func TestPostgres_ThreadDepthLimit(t *testing.T) {
	f := setupPostgres(t)
	author := member()

	c := f.root(t, author)
	for depth := 1; depth <= model.DefaultMaxDepth; depth++ {
		reply, err := f.threads.CreateReply(ctx, author, c.ID, "deeper")
		require.NoError(t, err)
		require.Equal(t, depth, reply.NestingLevel)
		require.Equal(t, c.ID, *reply.ParentID)
		c = reply
	}

	_, err := f.threads.CreateReply(ctx, author, c.ID, "too deep")
	require.ErrorIs(t, err, model.ErrNestingLimitExceeded)

	page, err := f.threads.ListComments(ctx, author, model.CommentFilter{PostID: &f.postID},
		model.PageRequest{Page: 1, Limit: 2, Sort: "nesting_level"})
	require.NoError(t, err)
	assert.EqualValues(t, model.DefaultMaxDepth+1, page.Pagination.Records)
	assert.EqualValues(t, 3, page.Pagination.Pages)
	require.Len(t, page.Data, 2)
	assert.Equal(t, 0, page.Data[0].NestingLevel)
}

func TestPostgres_SoftDeleteHidesComment(t *testing.T) {
	f := setupPostgres(t)
	author := member()
	c := f.root(t, author)

	require.NoError(t, f.threads.SoftDeleteComment(ctx, author, c.ID))
	_, err := f.threads.GetComment(ctx, author, c.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
	require.ErrorIs(t, f.threads.SoftDeleteComment(ctx, author, c.ID), model.ErrNotFound)

	got, err := f.threads.GetComment(ctx, moderator(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CommentSoftDeleted, got.State)
	assert.NotNil(t, got.DeletedAt)
}

func TestPostgres_ReportLifecycle(t *testing.T) {
	f := setupPostgres(t)
	author, reporter, mod := member(), member(), moderator()
	c := f.root(t, author)

	req := &model.CreateReportRequest{ContentType: model.ContentComment, TargetCommentID: c.ID.String(), Reason: "spam"}
	r, err := f.mod.CreateReport(ctx, reporter, req)
	require.NoError(t, err)
	assert.Equal(t, model.ReportPending, r.Status)

	_, err = f.mod.CreateReport(ctx, reporter, req)
	require.ErrorIs(t, err, model.ErrConflict, "pending duplicate must hit the partial unique index")

	r, a, err := f.mod.ResolveReport(ctx, mod, r.ID, &model.ResolveReportRequest{
		Status: model.ReportResolved,
		Note:   "removed",
		Action: &model.ResolveReportAction{ActionType: model.ActionDelete},
	})
	require.NoError(t, err)
	assert.Equal(t, "spam", r.Reason)
	assert.Equal(t, "removed", r.ResolutionNote)
	require.NotNil(t, a)
	assert.Equal(t, mod.ID, *a.ActorModeratorID)
	assert.Nil(t, a.ActorAdminID)

	_, _, err = f.mod.ResolveReport(ctx, mod, r.ID, &model.ResolveReportRequest{Status: model.ReportRejected})
	require.ErrorIs(t, err, model.ErrInvalidStateTransition)

	_, err = f.threads.GetComment(ctx, author, c.ID)
	require.ErrorIs(t, err, model.ErrNotFound)

	retired, err := f.mod.RetireModerationAction(ctx, admin(), a.ID)
	require.NoError(t, err)
	assert.True(t, retired.IsRetired())

	page, err := f.mod.ListModerationActions(ctx, mod, model.ActionFilter{}, model.PageRequest{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}
