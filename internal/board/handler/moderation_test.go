package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/board/policy"
)

func (e *testEnv) fileReport(t *testing.T, who caller, commentID string) string {
	t.Helper()
	w := e.do(t, who, http.MethodPost, "/api/v1/reports",
		`{"content_type":"comment","target_comment_id":"`+commentID+`","reason":"spam"}`)
	expectStatus(t, w, http.StatusCreated)
	return decode(t, w)["report"].(map[string]any)["id"].(string)
}

func TestCreateReport_201_pending(t *testing.T) {
	env := setupTestRouter(t)
	id := env.createComment(t, env.user(t, policy.RoleMember))
	reporter := env.user(t, policy.RoleMember)

	w := env.do(t, reporter, http.MethodPost, "/api/v1/reports",
		`{"content_type":"comment","target_comment_id":"`+id+`","reason":"spam"}`)
	expectStatus(t, w, http.StatusCreated)
	r := decode(t, w)["report"].(map[string]any)
	if r["status"] != "pending" {
		t.Errorf("expected pending, got %v", r["status"])
	}

	// second pending report on the same comment by the same member
	w = env.do(t, reporter, http.MethodPost, "/api/v1/reports",
		`{"content_type":"comment","target_comment_id":"`+id+`","reason":"spam"}`)
	expectStatus(t, w, http.StatusConflict)
}

func TestCreateReport_400(t *testing.T) {
	env := setupTestRouter(t)
	id := env.createComment(t, env.user(t, policy.RoleMember))
	reporter := env.user(t, policy.RoleMember)

	for name, body := range map[string]string{
		"unknown content type": `{"content_type":"user","target_comment_id":"` + id + `","reason":"x"}`,
		"mismatched target":    `{"content_type":"post","target_comment_id":"` + id + `","reason":"x"}`,
		"both targets":         `{"content_type":"comment","target_comment_id":"` + id + `","target_post_id":"` + env.postID.String() + `","reason":"x"}`,
		"no reason":            `{"content_type":"comment","target_comment_id":"` + id + `"}`,
	} {
		t.Run(name, func(t *testing.T) {
			expectStatus(t, env.do(t, reporter, http.MethodPost, "/api/v1/reports", body), http.StatusBadRequest)
		})
	}
}

func TestResolveReport_409_secondResolve(t *testing.T) {
	env := setupTestRouter(t)
	id := env.createComment(t, env.user(t, policy.RoleMember))
	reportID := env.fileReport(t, env.user(t, policy.RoleMember), id)
	mod := env.user(t, policy.RoleModerator)

	w := env.do(t, mod, http.MethodPut, "/api/v1/reports/"+reportID, `{"status":"resolved","note":"handled"}`)
	expectStatus(t, w, http.StatusOK)
	r := decode(t, w)["report"].(map[string]any)
	if r["status"] != "resolved" || r["reason"] != "spam" || r["resolution_note"] != "handled" {
		t.Errorf("unexpected report after resolve: %v", r)
	}
	if r["resolved_by"] != mod.id.String() {
		t.Errorf("resolved_by = %v, want %s", r["resolved_by"], mod.id)
	}

	w = env.do(t, mod, http.MethodPut, "/api/v1/reports/"+reportID, `{"status":"rejected"}`)
	expectStatus(t, w, http.StatusConflict)
}

func TestResolveReport_403_member(t *testing.T) {
	env := setupTestRouter(t)
	id := env.createComment(t, env.user(t, policy.RoleMember))
	member := env.user(t, policy.RoleMember)
	reportID := env.fileReport(t, member, id)

	expectStatus(t, env.do(t, member, http.MethodPut, "/api/v1/reports/"+reportID, `{"status":"resolved"}`), http.StatusForbidden)
	expectStatus(t, env.do(t, member, http.MethodGet, "/api/v1/reports", ""), http.StatusForbidden)
	expectStatus(t, env.do(t, member, http.MethodGet, "/api/v1/reports/"+reportID, ""), http.StatusForbidden)
}

func TestResolveReport_withAction(t *testing.T) {
	env := setupTestRouter(t)
	author := env.user(t, policy.RoleMember)
	id := env.createComment(t, author)
	reportID := env.fileReport(t, env.user(t, policy.RoleMember), id)
	admin := env.user(t, policy.RoleAdmin)

	w := env.do(t, admin, http.MethodPut, "/api/v1/reports/"+reportID,
		`{"status":"resolved","action":{"action_type":"delete","details":"spam"}}`)
	expectStatus(t, w, http.StatusOK)
	a := decode(t, w)["action"].(map[string]any)
	if a["report_id"] != reportID || a["actor_admin_id"] != admin.id.String() {
		t.Errorf("unexpected action: %v", a)
	}

	expectStatus(t, env.do(t, author, http.MethodGet, "/api/v1/comments/"+id, ""), http.StatusNotFound)
}

func TestResolveReport_400_unknownActionType(t *testing.T) {
	env := setupTestRouter(t)
	id := env.createComment(t, env.user(t, policy.RoleMember))
	reportID := env.fileReport(t, env.user(t, policy.RoleMember), id)

	w := env.do(t, env.user(t, policy.RoleModerator), http.MethodPut, "/api/v1/reports/"+reportID,
		`{"status":"resolved","action":{"action_type":"shadowban"}}`)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestListReports_filter(t *testing.T) {
	env := setupTestRouter(t)
	id := env.createComment(t, env.user(t, policy.RoleMember))
	env.fileReport(t, env.user(t, policy.RoleMember), id)
	mod := env.user(t, policy.RoleModerator)

	w := env.do(t, mod, http.MethodGet, "/api/v1/reports?status=pending", "")
	expectStatus(t, w, http.StatusOK)
	if n := len(decode(t, w)["data"].([]any)); n != 1 {
		t.Errorf("expected 1 pending report, got %d", n)
	}
	expectStatus(t, env.do(t, mod, http.MethodGet, "/api/v1/reports?status=closed", ""), http.StatusBadRequest)
}

func TestCreateAction_201_and_retire(t *testing.T) {
	env := setupTestRouter(t)
	author := env.user(t, policy.RoleMember)
	id := env.createComment(t, author)
	mod := env.user(t, policy.RoleModerator)
	admin := env.user(t, policy.RoleAdmin)

	w := env.do(t, mod, http.MethodPost, "/api/v1/moderationActions",
		`{"action_type":"delete","target_comment_id":"`+id+`","details":"rule 3"}`)
	expectStatus(t, w, http.StatusCreated)
	a := decode(t, w)["action"].(map[string]any)
	actionID := a["id"].(string)
	if a["actor_moderator_id"] != mod.id.String() {
		t.Errorf("actor_moderator_id = %v, want %s", a["actor_moderator_id"], mod.id)
	}

	expectStatus(t, env.do(t, author, http.MethodGet, "/api/v1/comments/"+id, ""), http.StatusNotFound)

	expectStatus(t, env.do(t, mod, http.MethodDelete, "/api/v1/moderationActions/"+actionID, ""), http.StatusForbidden)

	w = env.do(t, admin, http.MethodDelete, "/api/v1/moderationActions/"+actionID, "")
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["action"].(map[string]any)["retired_by"] != admin.id.String() {
		t.Error("expected retired_by to be the admin")
	}
	expectStatus(t, env.do(t, admin, http.MethodDelete, "/api/v1/moderationActions/"+actionID, ""), http.StatusNotFound)

	// retired actions stay readable but drop out of the default listing
	expectStatus(t, env.do(t, mod, http.MethodGet, "/api/v1/moderationActions/"+actionID, ""), http.StatusOK)
	w = env.do(t, mod, http.MethodGet, "/api/v1/moderationActions", "")
	expectStatus(t, w, http.StatusOK)
	if n := len(decode(t, w)["data"].([]any)); n != 0 {
		t.Errorf("expected no active actions, got %d", n)
	}
	w = env.do(t, mod, http.MethodGet, "/api/v1/moderationActions?include_retired=true", "")
	expectStatus(t, w, http.StatusOK)
	if n := len(decode(t, w)["data"].([]any)); n != 1 {
		t.Errorf("expected 1 action including retired, got %d", n)
	}
}

func TestCreateAction_errors(t *testing.T) {
	env := setupTestRouter(t)
	id := env.createComment(t, env.user(t, policy.RoleMember))
	mod := env.user(t, policy.RoleModerator)

	expectStatus(t, env.do(t, env.user(t, policy.RoleMember), http.MethodPost, "/api/v1/moderationActions",
		`{"action_type":"warn","target_comment_id":"`+id+`"}`), http.StatusForbidden)
	expectStatus(t, env.do(t, mod, http.MethodPost, "/api/v1/moderationActions",
		`{"action_type":"shadowban","target_comment_id":"`+id+`"}`), http.StatusBadRequest)
	expectStatus(t, env.do(t, mod, http.MethodPost, "/api/v1/moderationActions",
		`{"action_type":"warn","target_comment_id":"`+uuid.NewString()+`"}`), http.StatusNotFound)
	expectStatus(t, env.do(t, mod, http.MethodPost, "/api/v1/moderationActions",
		`{"action_type":"warn","target_comment_id":"`+id+`","report_id":"`+uuid.NewString()+`"}`), http.StatusNotFound)
}

func TestAudit_staffOnly(t *testing.T) {
	env := setupTestRouter(t)
	id := env.createComment(t, env.user(t, policy.RoleMember))
	mod := env.user(t, policy.RoleModerator)
	expectStatus(t, env.do(t, mod, http.MethodPost, "/api/v1/moderationActions",
		`{"action_type":"warn","target_comment_id":"`+id+`"}`), http.StatusCreated)

	expectStatus(t, env.do(t, env.user(t, policy.RoleMember), http.MethodGet, "/api/v1/audit", ""), http.StatusForbidden)

	w := env.do(t, mod, http.MethodGet, "/api/v1/audit", "")
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["entries"].(float64) != 2 {
		t.Errorf("expected genesis plus one entry: %s", w.Body.String())
	}

	w = env.do(t, mod, http.MethodGet, "/api/v1/audit/verify", "")
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["valid"] != true {
		t.Errorf("expected valid chain: %s", w.Body.String())
	}

	w = env.do(t, mod, http.MethodGet, "/api/v1/audit/entries/1", "")
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["event"] != "action.create" {
		t.Errorf("unexpected entry: %s", w.Body.String())
	}
	expectStatus(t, env.do(t, mod, http.MethodGet, "/api/v1/audit/entries/99", ""), http.StatusNotFound)
	expectStatus(t, env.do(t, mod, http.MethodGet, "/api/v1/audit/entries/-1", ""), http.StatusBadRequest)
}
