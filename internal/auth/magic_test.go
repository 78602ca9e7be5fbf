package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/scribehq/scribe/internal/auth"
	"github.com/scribehq/scribe/internal/posts"
	"github.com/scribehq/scribe/internal/store"
	"github.com/scribehq/scribe/internal/testutil"
)

func TestGenerateLoginToken(t *testing.T) {
	plaintext, hash, err := auth.GenerateLoginToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(plaintext, "sb_") {
		t.Errorf("plaintext %q missing sb_ prefix", plaintext)
	}
	if hash != auth.HashToken(plaintext) {
		t.Error("returned hash does not match HashToken(plaintext)")
	}
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(hash))
	}

	other, _, err := auth.GenerateLoginToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if other == plaintext {
		t.Error("two generated tokens are identical")
	}
}

func TestMagicLinkConsumeOnce(t *testing.T) {
	db := testutil.NewTestDB(t)
	us := store.NewUserStore(db)
	ms := auth.NewMagicLinkStore(db)
	ctx := context.Background()

	u, err := us.Create(ctx, "link@example.com", "Link", "", posts.RoleUser)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	plaintext, hash, err := auth.GenerateLoginToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ms.Create(ctx, u.ID, hash, 15*time.Minute); err != nil {
		t.Fatalf("store token: %v", err)
	}

	rec, err := ms.Consume(ctx, auth.HashToken(plaintext))
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if rec.UserID != u.ID {
		t.Errorf("consumed token user = %s, want %s", rec.UserID, u.ID)
	}
	if !rec.ConsumedAt.Valid {
		t.Error("consumed_at not stamped")
	}

	// Second redemption must fail: tokens are single-use.
	if _, err := ms.Consume(ctx, auth.HashToken(plaintext)); !errors.Is(err, auth.ErrTokenInvalid) {
		t.Errorf("second consume = %v, want ErrTokenInvalid", err)
	}
}

func TestMagicLinkExpiry(t *testing.T) {
	db := testutil.NewTestDB(t)
	us := store.NewUserStore(db)
	ms := auth.NewMagicLinkStore(db)
	ctx := context.Background()

	u, err := us.Create(ctx, "late@example.com", "Late", "", posts.RoleUser)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	plaintext, hash, err := auth.GenerateLoginToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ms.Create(ctx, u.ID, hash, -time.Minute); err != nil {
		t.Fatalf("store token: %v", err)
	}

	if _, err := ms.Consume(ctx, auth.HashToken(plaintext)); !errors.Is(err, auth.ErrTokenInvalid) {
		t.Errorf("consume expired = %v, want ErrTokenInvalid", err)
	}
}

func TestMagicLinkUnknownToken(t *testing.T) {
	db := testutil.NewTestDB(t)
	ms := auth.NewMagicLinkStore(db)

	if _, err := ms.Consume(context.Background(), auth.HashToken("sb_bogus")); !errors.Is(err, auth.ErrTokenInvalid) {
		t.Errorf("consume unknown = %v, want ErrTokenInvalid", err)
	}
}

func TestMagicLinkPurgeExpired(t *testing.T) {
	db := testutil.NewTestDB(t)
	us := store.NewUserStore(db)
	ms := auth.NewMagicLinkStore(db)
	ctx := context.Background()

	u, err := us.Create(ctx, "sweep@example.com", "Sweep", "", posts.RoleUser)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, staleHash, err := auth.GenerateLoginToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ms.Create(ctx, u.ID, staleHash, -time.Hour); err != nil {
		t.Fatalf("store stale token: %v", err)
	}
	freshPlain, freshHash, err := auth.GenerateLoginToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ms.Create(ctx, u.ID, freshHash, time.Hour); err != nil {
		t.Fatalf("store fresh token: %v", err)
	}

	if err := ms.PurgeExpired(ctx); err != nil {
		t.Fatalf("purge: %v", err)
	}

	// The live token survives the sweep.
	if _, err := ms.Consume(ctx, auth.HashToken(freshPlain)); err != nil {
		t.Errorf("consume fresh after purge = %v", err)
	}
}
