package handler_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/auditlog"
	"github.com/jmerrifield20/threadboard/internal/board/handler"
	"github.com/jmerrifield20/threadboard/internal/board/model"
	"github.com/jmerrifield20/threadboard/internal/board/policy"
	"github.com/jmerrifield20/threadboard/internal/board/repository"
	"github.com/jmerrifield20/threadboard/internal/board/service"
	"github.com/jmerrifield20/threadboard/internal/identity"
	"go.uber.org/zap"
)

var testKey *rsa.PrivateKey

func init() {
	var err error
	testKey, err = rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
}

type testEnv struct {
	router *gin.Engine
	store  *repository.MemoryStore
	chain  *auditlog.MemoryChain
	tokens *identity.TokenIssuer
	postID uuid.UUID
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := handler.RegisterValidators(); err != nil {
		t.Fatalf("RegisterValidators: %v", err)
	}

	logger := zap.NewNop()
	store := repository.NewMemoryStore()
	chain := auditlog.NewMemoryChain()
	tokens := identity.NewTokenIssuer(testKey, "http://test", time.Hour)

	threads := service.NewThreadService(store, model.DefaultMaxDepth, logger)
	threads.SetAuditChain(chain)
	mod := service.NewModerationService(store, threads, logger)
	mod.SetAuditChain(chain)

	r := gin.New()
	handler.NewHealthHandler(store, logger).Register(r)
	v1 := r.Group("/api/v1")
	handler.NewCommentHandler(threads, tokens, logger).Register(v1)
	handler.NewReportHandler(mod, tokens, logger).Register(v1)
	handler.NewActionHandler(mod, tokens, logger).Register(v1)
	handler.NewAuditHandler(chain, tokens, logger).Register(v1)

	post := &model.Post{AuthorID: uuid.New(), Title: "hello"}
	if err := store.Posts().Create(context.Background(), post); err != nil {
		t.Fatal(err)
	}
	return &testEnv{router: r, store: store, chain: chain, tokens: tokens, postID: post.ID}
}

type caller struct {
	id    uuid.UUID
	token string
}

func (e *testEnv) user(t *testing.T, role policy.Role) caller {
	t.Helper()
	id := uuid.New()
	tok, err := e.tokens.Issue(id, "", role)
	if err != nil {
		t.Fatal(err)
	}
	return caller{id: id, token: tok}
}

func (e *testEnv) do(t *testing.T, who caller, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if who.token != "" {
		req.Header.Set("Authorization", "Bearer "+who.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

// createComment posts a root comment and returns its id.
func (e *testEnv) createComment(t *testing.T, who caller) string {
	t.Helper()
	w := e.do(t, who, http.MethodPost, "/api/v1/comments",
		`{"post_id":"`+e.postID.String()+`","body":"hello world"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode(t, w)["comment"].(map[string]any)["id"].(string)
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
