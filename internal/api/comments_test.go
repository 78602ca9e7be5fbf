package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/scribehq/scribe/internal/api"
	"github.com/scribehq/scribe/internal/posts"
)

func TestComments_Create_AnyRoleMayComment(t *testing.T) {
	env := newTestEnv(t)
	author := seedUser(t, env, "author@example.com", posts.RoleCreator)
	seedUser(t, env, "reader@example.com", posts.RoleUser)

	post, err := env.PostStore.Create(context.Background(), "open-thread", "Open Thread", "d", "", author.ID)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	rec := do(env, "POST", "/api/v1/posts/"+post.ID+"/comments",
		api.CreateCommentRequest{Body: "nice post"}, login(t, env, "reader@example.com"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp api.CommentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Body != "nice post" {
		t.Errorf("body = %q", resp.Body)
	}
}

func TestComments_Create_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)
	author := seedUser(t, env, "author@example.com", posts.RoleCreator)
	post, err := env.PostStore.Create(context.Background(), "quiet", "Quiet", "d", "", author.ID)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	rec := do(env, "POST", "/api/v1/posts/"+post.ID+"/comments", api.CreateCommentRequest{Body: "hi"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestComments_Create_Validation(t *testing.T) {
	env := newTestEnv(t)
	author := seedUser(t, env, "author@example.com", posts.RoleCreator)
	cookies := login(t, env, "author@example.com")

	postA, err := env.PostStore.Create(context.Background(), "post-a", "Post A", "d", "", author.ID)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	postB, err := env.PostStore.Create(context.Background(), "post-b", "Post B", "d", "", author.ID)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	onA, err := env.CommentStore.Create(context.Background(), postA.ID, author.ID, "", "on a")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	// Blank body.
	rec := do(env, "POST", "/api/v1/posts/"+postA.ID+"/comments", api.CreateCommentRequest{Body: "   "}, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank body: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// Parent from a different post.
	rec = do(env, "POST", "/api/v1/posts/"+postB.ID+"/comments",
		api.CreateCommentRequest{Body: "reply", ParentID: onA.ID}, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("cross-post parent: status = %d, want %d; body: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}

	// Unknown parent.
	rec = do(env, "POST", "/api/v1/posts/"+postA.ID+"/comments",
		api.CreateCommentRequest{Body: "reply", ParentID: "no-such-comment"}, cookies)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown parent: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// Comment on a post that does not exist.
	rec = do(env, "POST", "/api/v1/posts/no-such-post/comments", api.CreateCommentRequest{Body: "hi"}, cookies)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing post: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestComments_MutationInvalidatesCachedPost(t *testing.T) {
	env := newTestEnv(t)
	author := seedUser(t, env, "author@example.com", posts.RoleCreator)
	seedUser(t, env, "commenter@example.com", posts.RoleUser)

	post, err := env.PostStore.Create(context.Background(), "cached", "Cached", "d", "", author.ID)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	// Prime the cache with the empty-thread payload.
	rec := do(env, "GET", "/cached", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("prime: status = %d", rec.Code)
	}
	if _, ok := env.Cache.entries["cached"]; !ok {
		t.Fatal("detail read did not populate the cache")
	}

	// Creating a comment must drop the stale payload.
	cookies := login(t, env, "commenter@example.com")
	rec = do(env, "POST", "/api/v1/posts/"+post.ID+"/comments", api.CreateCommentRequest{Body: "fresh"}, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment: status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if _, ok := env.Cache.entries["cached"]; ok {
		t.Fatal("cached payload survived comment creation")
	}

	// The next read sees the new comment and re-primes the cache.
	rec = do(env, "GET", "/cached", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("re-read: status = %d", rec.Code)
	}
	var detail api.PostDetailResponse
	if err := json.NewDecoder(rec.Body).Decode(&detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(detail.Comments) != 1 {
		t.Fatalf("len(comments) = %d, want 1", len(detail.Comments))
	}
	if _, ok := env.Cache.entries["cached"]; !ok {
		t.Fatal("re-read did not repopulate the cache")
	}

	// Deleting the comment must drop it again.
	rec = do(env, "DELETE", "/api/v1/comments/"+detail.Comments[0].ID, nil, cookies)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete comment: status = %d", rec.Code)
	}
	if _, ok := env.Cache.entries["cached"]; ok {
		t.Error("cached payload survived comment deletion")
	}
}

func TestComments_Delete_AuthorOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	author := seedUser(t, env, "author@example.com", posts.RoleCreator)
	commenter := seedUser(t, env, "commenter@example.com", posts.RoleUser)
	seedUser(t, env, "bystander@example.com", posts.RoleUser)
	seedUser(t, env, "admin@example.com", posts.RoleAdmin)

	post, err := env.PostStore.Create(context.Background(), "modded", "Modded", "d", "", author.ID)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	first, err := env.CommentStore.Create(context.Background(), post.ID, commenter.ID, "", "first")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	second, err := env.CommentStore.Create(context.Background(), post.ID, commenter.ID, "", "second")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	// A bystander cannot delete someone else's comment.
	rec := do(env, "DELETE", "/api/v1/comments/"+first.ID, nil, login(t, env, "bystander@example.com"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("bystander delete: status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	// The comment's author can.
	rec = do(env, "DELETE", "/api/v1/comments/"+first.ID, nil, login(t, env, "commenter@example.com"))
	if rec.Code != http.StatusNoContent {
		t.Errorf("author delete: status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	// So can an admin.
	rec = do(env, "DELETE", "/api/v1/comments/"+second.ID, nil, login(t, env, "admin@example.com"))
	if rec.Code != http.StatusNoContent {
		t.Errorf("admin delete: status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
