package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Post represents a row in the posts table.
type Post struct {
	ID            string       `db:"id"`
	Slug          string       `db:"slug"`
	Title         string       `db:"title"`
	Description   string       `db:"description"`
	Content       string       `db:"content"`
	AuthorID      string       `db:"author_id"`
	PublishedAt   time.Time    `db:"published_at"`
	LastUpdatedAt sql.NullTime `db:"last_updated_at"`
}

// PostStore is the sqlx-backed post store. It also serves as the slug
// generator's index via SlugExists and SlugSuffixes.
type PostStore struct {
	db *sqlx.DB
}

func NewPostStore(db *sqlx.DB) *PostStore {
	return &PostStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *PostStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a new post. published_at is set once here and never touched
// again; last_updated_at stays NULL until the first update. A collision on
// the slug unique index returns ErrSlugTaken.
func (s *PostStore) Create(ctx context.Context, slug, title, description, content, authorID string) (*Post, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO posts (id, slug, title, description, content, author_id, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), id, slug, title, description, content, authorID, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the post matching id, or ErrNotFound.
func (s *PostStore) GetByID(ctx context.Context, id string) (*Post, error) {
	var p Post
	err := s.db.GetContext(ctx, &p, s.q(`SELECT * FROM posts WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetBySlug returns the post matching slug, or ErrNotFound.
func (s *PostStore) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	var p Post
	err := s.db.GetContext(ctx, &p, s.q(`SELECT * FROM posts WHERE slug = ?`), slug)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPublished returns all posts, newest first.
func (s *PostStore) ListPublished(ctx context.Context) ([]*Post, error) {
	var ps []*Post
	err := s.db.SelectContext(ctx, &ps, `SELECT * FROM posts ORDER BY published_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return ps, nil
}

// ListByAuthor returns all posts by authorID, newest first.
func (s *PostStore) ListByAuthor(ctx context.Context, authorID string) ([]*Post, error) {
	var ps []*Post
	err := s.db.SelectContext(ctx, &ps, s.q(`
		SELECT * FROM posts WHERE author_id = ? ORDER BY published_at DESC, id DESC
	`), authorID)
	if err != nil {
		return nil, err
	}
	return ps, nil
}

// Update rewrites the mutable fields of a post and stamps last_updated_at.
// author_id and published_at are immutable and deliberately absent from the
// SET list. A slug collision returns ErrSlugTaken.
func (s *PostStore) Update(ctx context.Context, id, slug, title, description, content string) (*Post, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE posts SET slug = ?, title = ?, description = ?, content = ?, last_updated_at = ?
		WHERE id = ?
	`), slug, title, description, content, now, id)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes a post by ID. CASCADE deletes handle its comments.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM posts WHERE id = ?`), id)
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

// CountPosts returns the total number of posts, for the metrics gauge.
func (s *PostStore) CountPosts(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts`)
	return n, err
}

// SlugExists reports whether any post currently owns slug.
func (s *PostStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM posts WHERE slug = ?`), slug)
	return n > 0, err
}

// SlugSuffixes returns the numeric suffixes of slugs of the form "base-<n>".
// One LIKE query narrows the candidates; the exact "<digits> only" check
// happens here because regexp support differs per driver. base is already a
// validated slug, so it contains no LIKE metacharacters.
func (s *PostStore) SlugSuffixes(ctx context.Context, base string) ([]int, error) {
	var slugs []string
	err := s.db.SelectContext(ctx, &slugs, s.q(`SELECT slug FROM posts WHERE slug LIKE ?`), base+"-%")
	if err != nil {
		return nil, err
	}

	var out []int
	for _, slug := range slugs {
		suffix, ok := strings.CutPrefix(slug, base+"-")
		if !ok || !allDigits(suffix) {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
