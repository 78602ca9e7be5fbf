package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrParentMismatch is returned when a reply names a parent comment that
// belongs to a different post.
var ErrParentMismatch = errors.New("parent comment belongs to a different post")

// Comment represents a row in the comments table. Replies is populated only
// by ListByPost, which returns the thread as a tree.
type Comment struct {
	ID        string         `db:"id"`
	PostID    string         `db:"post_id"`
	AuthorID  string         `db:"author_id"`
	ParentID  sql.NullString `db:"parent_id"`
	Body      string         `db:"body"`
	CreatedAt time.Time      `db:"created_at"`

	Replies []*Comment `db:"-"`
}

type CommentStore struct {
	db *sqlx.DB
}

func NewCommentStore(db *sqlx.DB) *CommentStore {
	return &CommentStore{db: db}
}

func (s *CommentStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a comment on postID. parentID may be empty for a top-level
// comment; when set, the parent must exist and belong to the same post.
func (s *CommentStore) Create(ctx context.Context, postID, authorID, parentID, body string) (*Comment, error) {
	var parent sql.NullString
	if parentID != "" {
		p, err := s.GetByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if p.PostID != postID {
			return nil, ErrParentMismatch
		}
		parent = sql.NullString{String: parentID, Valid: true}
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO comments (id, post_id, author_id, parent_id, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), id, postID, authorID, parent, body, now)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the comment matching id, or ErrNotFound.
func (s *CommentStore) GetByID(ctx context.Context, id string) (*Comment, error) {
	var c Comment
	err := s.db.GetContext(ctx, &c, s.q(`SELECT * FROM comments WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByPost returns the post's comments as a tree: top-level comments in
// creation order, each with its replies nested, recursively. One query; the
// tree is assembled here.
func (s *CommentStore) ListByPost(ctx context.Context, postID string) ([]*Comment, error) {
	var flat []*Comment
	err := s.db.SelectContext(ctx, &flat, s.q(`
		SELECT * FROM comments WHERE post_id = ? ORDER BY created_at ASC, id ASC
	`), postID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Comment, len(flat))
	for _, c := range flat {
		byID[c.ID] = c
	}

	roots := make([]*Comment, 0, len(flat))
	for _, c := range flat {
		if c.ParentID.Valid {
			if parent, ok := byID[c.ParentID.String]; ok {
				parent.Replies = append(parent.Replies, c)
				continue
			}
		}
		roots = append(roots, c)
	}
	return roots, nil
}

// Delete removes a comment by ID. CASCADE deletes take its replies with it.
func (s *CommentStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM comments WHERE id = ?`), id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
