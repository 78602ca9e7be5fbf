package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scribehq/scribe/internal/auth"
	"github.com/scribehq/scribe/internal/metrics"
	"github.com/scribehq/scribe/internal/posts"
	"github.com/scribehq/scribe/internal/store"
)

// postsHandler provides the post CRUD handlers and the public slug resolver.
// Every mutation runs the access policy before the slug machinery or the
// store is touched.
type postsHandler struct {
	store    *store.PostStore
	comments *store.CommentStore
	gen      *posts.Generator
	cache    PostCache
}

func newPostsHandler(ps *store.PostStore, cs *store.CommentStore, pc PostCache) *postsHandler {
	return &postsHandler{
		store:    ps,
		comments: cs,
		gen:      posts.NewGenerator(ps),
		cache:    pc,
	}
}

// List returns all published posts, newest first.
// GET /api/v1/posts
func (h *postsHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.ListPublished(r.Context())
	if err != nil {
		log.Printf("api: list posts: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := PostListResponse{Posts: make([]PostResponse, 0, len(all))}
	for _, p := range all {
		resp.Posts = append(resp.Posts, toPostResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetBySlug returns a post and its comment thread.
// GET /{slug}
func (h *postsHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if h.cache != nil {
		if payload, ok := h.cache.Get(r.Context(), slug); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(payload)
			return
		}
	}

	post, err := h.store.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found", "NOT_FOUND")
			return
		}
		log.Printf("api: get post %q: %v", slug, err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	thread, err := h.comments.ListByPost(r.Context(), post.ID)
	if err != nil {
		log.Printf("api: list comments for %q: %v", slug, err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := PostDetailResponse{
		PostResponse: toPostResponse(post),
		Comments:     toCommentResponses(thread),
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	if h.cache != nil {
		h.cache.Set(r.Context(), slug, payload)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// Create makes a new post authored by the caller. The slug is derived from
// the title; a storage-level slug collision (lost race) comes back as a
// field error on slug, not a retry.
// POST /api/v1/posts
func (h *postsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required", "UNAUTHENTICATED")
		return
	}

	if d := posts.Authorize(user.Actor(), posts.Resource{}, posts.ActionCreate); !d.Allowed {
		writeError(w, http.StatusForbidden, d.Reason, "FORBIDDEN")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if !h.validateFields(w, req.Title, req.Description) {
		return
	}

	slug, err := h.gen.Generate(r.Context(), req.Title)
	if err != nil {
		h.writeSlugError(w, err)
		return
	}
	if slug != posts.Normalize(req.Title) {
		metrics.SlugCollisionsTotal.Inc()
	}

	post, err := h.store.Create(r.Context(), slug, req.Title, req.Description, req.Content, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			metrics.SlugConflictsTotal.Inc()
			writeFieldError(w, http.StatusConflict, "slug", "has already been taken", "SLUG_CONFLICT")
			return
		}
		log.Printf("api: create post %q: %v", slug, err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	metrics.PostsCreatedTotal.Inc()
	writeJSON(w, http.StatusCreated, toPostResponse(post))
}

// Update rewrites a post's mutable fields. The slug is regenerated only when
// the new title no longer normalizes to the current slug's base, so
// punctuation-only edits keep inbound links working.
// PUT /api/v1/posts/{id}
func (h *postsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required", "UNAUTHENTICATED")
		return
	}

	post, err := h.store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	if d := posts.Authorize(user.Actor(), posts.Resource{AuthorID: post.AuthorID}, posts.ActionEdit); !d.Allowed {
		writeError(w, http.StatusForbidden, d.Reason, "FORBIDDEN")
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if !h.validateFields(w, req.Title, req.Description) {
		return
	}

	slug := post.Slug
	if posts.NeedsRegeneration(post.Slug, req.Title) {
		slug, err = h.gen.Generate(r.Context(), req.Title)
		if err != nil {
			h.writeSlugError(w, err)
			return
		}
	}

	updated, err := h.store.Update(r.Context(), post.ID, slug, req.Title, req.Description, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			metrics.SlugConflictsTotal.Inc()
			writeFieldError(w, http.StatusConflict, "slug", "has already been taken", "SLUG_CONFLICT")
			return
		}
		log.Printf("api: update post %s: %v", post.ID, err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(r.Context(), post.Slug, updated.Slug)
	}
	writeJSON(w, http.StatusOK, toPostResponse(updated))
}

// Delete removes a post. Deletion is permanent; its slug (or a freed numeric
// suffix) becomes available again.
// DELETE /api/v1/posts/{id}
func (h *postsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required", "UNAUTHENTICATED")
		return
	}

	post, err := h.store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	if d := posts.Authorize(user.Actor(), posts.Resource{AuthorID: post.AuthorID}, posts.ActionDelete); !d.Allowed {
		writeError(w, http.StatusForbidden, d.Reason, "FORBIDDEN")
		return
	}

	if err := h.store.Delete(r.Context(), post.ID); err != nil {
		log.Printf("api: delete post %s: %v", post.ID, err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(r.Context(), post.Slug)
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateFields checks title and description, writing a field error and
// returning false on the first violation.
func (h *postsHandler) validateFields(w http.ResponseWriter, title, description string) bool {
	if err := posts.ValidateTitle(title); err != nil {
		writeFieldError(w, http.StatusBadRequest, "title", err.Error(), "INVALID_TITLE")
		return false
	}
	if err := posts.ValidateDescription(description); err != nil {
		writeFieldError(w, http.StatusBadRequest, "description", err.Error(), "INVALID_DESCRIPTION")
		return false
	}
	return true
}

// writeSlugError maps slug generation failures onto the title field: the
// client never sent a slug, so the title is what they can fix.
func (h *postsHandler) writeSlugError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, posts.ErrSlugEmpty):
		writeFieldError(w, http.StatusBadRequest, "title", "title must contain at least one letter or digit", "INVALID_TITLE")
	case errors.Is(err, posts.ErrSlugReserved):
		writeFieldError(w, http.StatusBadRequest, "title", "title is reserved", "INVALID_TITLE")
	case errors.Is(err, posts.ErrSlugTooLong), errors.Is(err, posts.ErrSlugFormat):
		writeFieldError(w, http.StatusBadRequest, "title", err.Error(), "INVALID_TITLE")
	default:
		log.Printf("api: generate slug: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
	}
}
