package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scribehq/scribe/internal/posts"
	"github.com/scribehq/scribe/internal/store"
)

// adminHandler provides the admin-only user management endpoints. Routing
// guards these with RequireRole("admin").
type adminHandler struct {
	users *store.UserStore
}

func newAdminHandler(us *store.UserStore) *adminHandler {
	return &adminHandler{users: us}
}

// ListUsers returns all users.
// GET /api/v1/admin/users
func (h *adminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListAll(r.Context())
	if err != nil {
		log.Printf("api: list users: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}

	resp := UserListResponse{Users: make([]UserResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateRole changes a user's role. Promoting to creator is how an account
// gains authoring rights.
// PUT /api/v1/admin/users/{id}/role
func (h *adminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}

	switch req.Role {
	case posts.RoleUser, posts.RoleCreator, posts.RoleAdmin:
	default:
		writeFieldError(w, http.StatusBadRequest, "role", "role must be one of: user, creator, admin", "INVALID_ROLE")
		return
	}

	user, err := h.users.UpdateRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found", "NOT_FOUND")
			return
		}
		log.Printf("api: update role: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
