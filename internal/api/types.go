package api

import (
	"time"

	"github.com/scribehq/scribe/internal/store"
)

// --- Post types ---

// CreatePostRequest is the request body for POST /api/v1/posts. The slug is
// never supplied by the client; it is derived from the title.
type CreatePostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// UpdatePostRequest is the request body for PUT /api/v1/posts/{id}.
type UpdatePostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// PostResponse is the JSON representation of a single post.
type PostResponse struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Content       string     `json:"content"`
	AuthorID      string     `json:"author_id"`
	PublishedAt   time.Time  `json:"published_at"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
}

func toPostResponse(p *store.Post) PostResponse {
	resp := PostResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		Content:     p.Content,
		AuthorID:    p.AuthorID,
		PublishedAt: p.PublishedAt,
	}
	if p.LastUpdatedAt.Valid {
		t := p.LastUpdatedAt.Time
		resp.LastUpdatedAt = &t
	}
	return resp
}

// PostListResponse is the response for post list endpoints.
type PostListResponse struct {
	Posts []PostResponse `json:"posts"`
}

// PostDetailResponse is a post together with its comment thread.
type PostDetailResponse struct {
	PostResponse
	Comments []CommentResponse `json:"comments"`
}

// --- Comment types ---

// CreateCommentRequest is the request body for POST /api/v1/posts/{id}/comments.
// ParentID, when set, makes the comment a reply.
type CreateCommentRequest struct {
	Body     string `json:"body"`
	ParentID string `json:"parent_id,omitempty"`
}

// CommentResponse is the JSON representation of a comment and its replies.
type CommentResponse struct {
	ID        string            `json:"id"`
	AuthorID  string            `json:"author_id"`
	Body      string            `json:"body"`
	CreatedAt time.Time         `json:"created_at"`
	Replies   []CommentResponse `json:"replies,omitempty"`
}

func toCommentResponses(cs []*store.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, CommentResponse{
			ID:        c.ID,
			AuthorID:  c.AuthorID,
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
			Replies:   toCommentResponses(c.Replies),
		})
	}
	return out
}

// --- User types ---

// UserResponse is the JSON representation of a user.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
	}
}

// UserListResponse is the response for user list endpoints.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// UpdateRoleRequest is the request body for PUT /api/v1/admin/users/{id}/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}
