package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scribehq/scribe/internal/store"
)

// ErrTokenInvalid is returned when a magic-link token is unknown, expired,
// or already consumed. Callers get one error for all three so a probing
// client learns nothing about which it was.
var ErrTokenInvalid = errors.New("login token is invalid or expired")

// LoginToken represents a row in the login_tokens table.
type LoginToken struct {
	ID         string       `db:"id"`
	UserID     string       `db:"user_id"`
	TokenHash  string       `db:"token_hash"`
	ExpiresAt  time.Time    `db:"expires_at"`
	ConsumedAt sql.NullTime `db:"consumed_at"`
	CreatedAt  time.Time    `db:"created_at"`
}

// MagicLinkStore manages single-use login tokens.
type MagicLinkStore struct {
	db *sqlx.DB
}

func NewMagicLinkStore(db *sqlx.DB) *MagicLinkStore {
	return &MagicLinkStore{db: db}
}

func (s *MagicLinkStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a login token record for userID expiring after ttl.
func (s *MagicLinkStore) Create(ctx context.Context, userID, tokenHash string, ttl time.Duration) (*LoginToken, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO login_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), id, userID, tokenHash, now.Add(ttl), now)
	if err != nil {
		return nil, err
	}

	var rec LoginToken
	err = s.db.GetContext(ctx, &rec, s.q(`SELECT * FROM login_tokens WHERE id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Consume atomically marks the token matching hash as used and returns it.
// Expired, unknown, or already-consumed tokens all return ErrTokenInvalid.
// The UPDATE guard (consumed_at IS NULL) makes redeeming single-use even
// under concurrent requests.
func (s *MagicLinkStore) Consume(ctx context.Context, tokenHash string) (*LoginToken, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE login_tokens SET consumed_at = ?
		WHERE token_hash = ? AND consumed_at IS NULL AND expires_at > ?
	`), now, tokenHash, now)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrTokenInvalid
	}

	var rec LoginToken
	err = s.db.GetContext(ctx, &rec, s.q(`SELECT * FROM login_tokens WHERE token_hash = ?`), tokenHash)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// PurgeExpired removes tokens past their expiry, consumed or not.
func (s *MagicLinkStore) PurgeExpired(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM login_tokens WHERE expires_at <= ?`), time.Now().UTC())
	return err
}

// GenerateLoginToken creates a new magic-link token with the "sb_" prefix.
// It returns the plaintext token and its SHA-256 hash.
// Plaintext = "sb_" + base62-encoded 32 cryptographically random bytes.
// Hash = hex-encoded SHA-256 of the plaintext; only the hash is stored.
func GenerateLoginToken() (plaintext, hash string, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}

	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	encoded := make([]byte, 0, 44)
	n := new(big.Int).SetBytes(b)
	base := big.NewInt(62)
	mod := new(big.Int)
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		encoded = append(encoded, alphabet[mod.Int64()])
	}

	plaintext = "sb_" + string(encoded)
	return plaintext, HashToken(plaintext), nil
}

// HashToken returns the hex-encoded SHA-256 of a plaintext token.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
