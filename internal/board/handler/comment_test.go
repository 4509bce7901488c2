package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jmerrifield20/threadboard/internal/board/policy"
)

func TestCreateComment_201(t *testing.T) {
	env := setupTestRouter(t)
	alice := env.user(t, policy.RoleMember)

	w := env.do(t, alice, http.MethodPost, "/api/v1/comments",
		`{"post_id":"`+env.postID.String()+`","body":"hello"}`)
	expectStatus(t, w, http.StatusCreated)

	c := decode(t, w)["comment"].(map[string]any)
	if c["nesting_level"].(float64) != 0 {
		t.Errorf("expected level 0, got %v", c["nesting_level"])
	}
	if c["parent_id"] != nil {
		t.Errorf("expected null parent_id, got %v", c["parent_id"])
	}
	if c["author_id"] != alice.id.String() {
		t.Errorf("author_id = %v, want %s", c["author_id"], alice.id)
	}
}

func TestCreateComment_201_bodyNotEscaped(t *testing.T) {
	env := setupTestRouter(t)
	alice := env.user(t, policy.RoleMember)

	w := env.do(t, alice, http.MethodPost, "/api/v1/comments",
		`{"post_id":"`+env.postID.String()+`","body":"Tom & Jerry: 3 < 5"}`)
	expectStatus(t, w, http.StatusCreated)

	c := decode(t, w)["comment"].(map[string]any)
	if c["body"] != "Tom & Jerry: 3 < 5" {
		t.Errorf("body = %q, want it unchanged", c["body"])
	}
}

func TestCreateComment_401_noToken(t *testing.T) {
	env := setupTestRouter(t)
	w := env.do(t, caller{}, http.MethodPost, "/api/v1/comments",
		`{"post_id":"`+env.postID.String()+`","body":"hello"}`)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestCreateComment_400(t *testing.T) {
	env := setupTestRouter(t)
	alice := env.user(t, policy.RoleMember)

	for name, body := range map[string]string{
		"missing body":   `{"post_id":"` + env.postID.String() + `"}`,
		"bad post id":    `{"post_id":"nope","body":"x"}`,
		"blank body":     `{"post_id":"` + env.postID.String() + `","body":"   "}`,
		"malformed json": `{`,
	} {
		t.Run(name, func(t *testing.T) {
			expectStatus(t, env.do(t, alice, http.MethodPost, "/api/v1/comments", body), http.StatusBadRequest)
		})
	}
}

func TestCreateComment_404_unknownPost(t *testing.T) {
	env := setupTestRouter(t)
	w := env.do(t, env.user(t, policy.RoleMember), http.MethodPost, "/api/v1/comments",
		`{"post_id":"`+uuid.NewString()+`","body":"hello"}`)
	expectStatus(t, w, http.StatusNotFound)
}

func TestCreateReply_422_atMaxDepth(t *testing.T) {
	env := setupTestRouter(t)
	alice := env.user(t, policy.RoleMember)

	parent := env.createComment(t, alice)
	for level := 1; level <= 5; level++ {
		w := env.do(t, alice, http.MethodPost, "/api/v1/comments/"+parent+"/replies", `{"body":"deeper"}`)
		expectStatus(t, w, http.StatusCreated)
		c := decode(t, w)["comment"].(map[string]any)
		if int(c["nesting_level"].(float64)) != level {
			t.Fatalf("expected level %d, got %v", level, c["nesting_level"])
		}
		parent = c["id"].(string)
	}

	w := env.do(t, alice, http.MethodPost, "/api/v1/comments/"+parent+"/replies", `{"body":"too deep"}`)
	expectStatus(t, w, http.StatusUnprocessableEntity)
}

func TestCreateReply_404_deletedParent(t *testing.T) {
	env := setupTestRouter(t)
	alice := env.user(t, policy.RoleMember)
	id := env.createComment(t, alice)

	expectStatus(t, env.do(t, alice, http.MethodDelete, "/api/v1/comments/"+id, ""), http.StatusNoContent)
	expectStatus(t, env.do(t, alice, http.MethodPost, "/api/v1/comments/"+id+"/replies", `{"body":"x"}`), http.StatusNotFound)
}

func TestGetComment_400_badUUID(t *testing.T) {
	env := setupTestRouter(t)
	expectStatus(t, env.do(t, env.user(t, policy.RoleMember), http.MethodGet, "/api/v1/comments/not-a-uuid", ""), http.StatusBadRequest)
}

func TestEditComment_200(t *testing.T) {
	env := setupTestRouter(t)
	alice := env.user(t, policy.RoleMember)
	id := env.createComment(t, alice)

	w := env.do(t, alice, http.MethodPut, "/api/v1/comments/"+id, `{"body":"changed"}`)
	expectStatus(t, w, http.StatusOK)
	c := decode(t, w)["comment"].(map[string]any)
	if c["body"] != "changed" || c["is_edited"] != true {
		t.Errorf("unexpected comment after edit: %v", c)
	}
	if c["moderator_edited"] != false {
		t.Errorf("self edit must not set moderator_edited")
	}
}

func TestEditComment_403_otherMember(t *testing.T) {
	env := setupTestRouter(t)
	id := env.createComment(t, env.user(t, policy.RoleMember))

	w := env.do(t, env.user(t, policy.RoleMember), http.MethodPut, "/api/v1/comments/"+id, `{"body":"mine now"}`)
	expectStatus(t, w, http.StatusForbidden)
}

func TestEditComment_moderatorWritesAction(t *testing.T) {
	env := setupTestRouter(t)
	id := env.createComment(t, env.user(t, policy.RoleMember))
	mod := env.user(t, policy.RoleModerator)

	w := env.do(t, mod, http.MethodPut, "/api/v1/comments/"+id, `{"body":"redacted"}`)
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["comment"].(map[string]any)["moderator_edited"] != true {
		t.Error("expected moderator_edited=true")
	}

	w = env.do(t, mod, http.MethodGet, "/api/v1/moderationActions?target_comment_id="+id, "")
	expectStatus(t, w, http.StatusOK)
	data := decode(t, w)["data"].([]any)
	if len(data) != 1 || data[0].(map[string]any)["action_type"] != "edit" {
		t.Errorf("expected one edit action, got %v", data)
	}
}

func TestDeleteComment_204_then404(t *testing.T) {
	env := setupTestRouter(t)
	alice := env.user(t, policy.RoleMember)
	id := env.createComment(t, alice)

	expectStatus(t, env.do(t, alice, http.MethodDelete, "/api/v1/comments/"+id, ""), http.StatusNoContent)
	expectStatus(t, env.do(t, alice, http.MethodDelete, "/api/v1/comments/"+id, ""), http.StatusNotFound)
	expectStatus(t, env.do(t, alice, http.MethodGet, "/api/v1/comments/"+id, ""), http.StatusNotFound)

	// staff keep the historical view
	w := env.do(t, env.user(t, policy.RoleAdmin), http.MethodGet, "/api/v1/comments/"+id, "")
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["comment"].(map[string]any)["state"] != "soft_deleted" {
		t.Error("expected soft_deleted state in staff view")
	}
}

func TestListComments_pagination(t *testing.T) {
	env := setupTestRouter(t)
	alice := env.user(t, policy.RoleMember)
	for i := 0; i < 5; i++ {
		env.createComment(t, alice)
	}

	w := env.do(t, alice, http.MethodGet, "/api/v1/comments?post_id="+env.postID.String()+"&page=2&limit=2", "")
	expectStatus(t, w, http.StatusOK)
	body := decode(t, w)
	if n := len(body["data"].([]any)); n != 2 {
		t.Errorf("expected 2 items, got %d", n)
	}
	p := body["pagination"].(map[string]any)
	if p["current"].(float64) != 2 || p["limit"].(float64) != 2 || p["records"].(float64) != 5 || p["pages"].(float64) != 3 {
		t.Errorf("unexpected pagination: %v", p)
	}
}

func TestListComments_emptyIsArray(t *testing.T) {
	env := setupTestRouter(t)
	w := env.do(t, env.user(t, policy.RoleMember), http.MethodGet, "/api/v1/comments?post_id="+uuid.NewString(), "")
	expectStatus(t, w, http.StatusOK)
	if string(w.Body.Bytes()[:10]) != `{"data":[]` {
		t.Errorf("expected empty data array, got %s", w.Body.String())
	}
}

func TestListComments_400(t *testing.T) {
	env := setupTestRouter(t)
	alice := env.user(t, policy.RoleMember)
	for _, q := range []string{"?page=0", "?limit=101", "?limit=abc", "?post_id=nope", "?include_deleted=maybe"} {
		expectStatus(t, env.do(t, alice, http.MethodGet, "/api/v1/comments"+q, ""), http.StatusBadRequest)
	}
}

func TestListReplies_200(t *testing.T) {
	env := setupTestRouter(t)
	alice := env.user(t, policy.RoleMember)
	root := env.createComment(t, alice)
	for i := 0; i < 3; i++ {
		expectStatus(t, env.do(t, alice, http.MethodPost, "/api/v1/comments/"+root+"/replies", `{"body":"r"}`), http.StatusCreated)
	}

	w := env.do(t, alice, http.MethodGet, "/api/v1/comments/"+root+"/replies?sort=created_at:asc", "")
	expectStatus(t, w, http.StatusOK)
	if n := len(decode(t, w)["data"].([]any)); n != 3 {
		t.Errorf("expected 3 replies, got %d", n)
	}
}

func TestHealth(t *testing.T) {
	env := setupTestRouter(t)
	expectStatus(t, env.do(t, caller{}, http.MethodGet, "/healthz", ""), http.StatusOK)
	expectStatus(t, env.do(t, caller{}, http.MethodGet, "/readyz", ""), http.StatusOK)
}
