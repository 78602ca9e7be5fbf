package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/scribehq/scribe/internal/auth"
	"github.com/scribehq/scribe/internal/metrics"
	"github.com/scribehq/scribe/internal/posts"
	"github.com/scribehq/scribe/internal/store"
)

// commentsHandler provides comment creation and removal. Any authenticated
// user may comment; removal is the comment author's or an admin's call.
// Comment mutations drop the post's cached payload, since the cached detail
// response embeds the comment tree.
type commentsHandler struct {
	posts    *store.PostStore
	comments *store.CommentStore
	cache    PostCache
}

func newCommentsHandler(ps *store.PostStore, cs *store.CommentStore, pc PostCache) *commentsHandler {
	return &commentsHandler{posts: ps, comments: cs, cache: pc}
}

// Create adds a comment (or a reply, when parent_id is set) to a post.
// POST /api/v1/posts/{id}/comments
func (h *commentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required", "UNAUTHENTICATED")
		return
	}

	post, err := h.posts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	if d := posts.Authorize(user.Actor(), posts.Resource{AuthorID: post.AuthorID}, posts.ActionComment); !d.Allowed {
		writeError(w, http.StatusForbidden, d.Reason, "FORBIDDEN")
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		writeFieldError(w, http.StatusBadRequest, "body", "body can not be blank", "INVALID_BODY")
		return
	}

	comment, err := h.comments.Create(r.Context(), post.ID, user.ID, req.ParentID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeFieldError(w, http.StatusBadRequest, "parent_id", "parent comment does not exist", "INVALID_PARENT")
		case errors.Is(err, store.ErrParentMismatch):
			writeFieldError(w, http.StatusBadRequest, "parent_id", "parent comment belongs to a different post", "INVALID_PARENT")
		default:
			log.Printf("api: create comment on %s: %v", post.ID, err)
			writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		}
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(r.Context(), post.Slug)
	}
	metrics.CommentsCreatedTotal.Inc()
	writeJSON(w, http.StatusCreated, CommentResponse{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	})
}

// Delete removes a comment and, via cascade, its replies. Allowed for the
// comment's author and for admins.
// DELETE /api/v1/comments/{id}
func (h *commentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required", "UNAUTHENTICATED")
		return
	}

	comment, err := h.comments.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "comment not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	if comment.AuthorID != user.ID && !user.IsAdmin() {
		writeError(w, http.StatusForbidden, posts.ReasonUnauthorized, "FORBIDDEN")
		return
	}

	if err := h.comments.Delete(r.Context(), comment.ID); err != nil {
		log.Printf("api: delete comment %s: %v", comment.ID, err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	if h.cache != nil {
		if post, err := h.posts.GetByID(r.Context(), comment.PostID); err == nil {
			h.cache.Invalidate(r.Context(), post.Slug)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
