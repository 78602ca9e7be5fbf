package auth_test

import (
	"testing"

	"github.com/scribehq/scribe/internal/auth"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals plaintext")
	}
	if !auth.CheckPassword(hash, "correct horse battery staple") {
		t.Error("correct password rejected")
	}
	if auth.CheckPassword(hash, "wrong password") {
		t.Error("wrong password accepted")
	}
	if auth.CheckPassword("not-a-bcrypt-hash", "anything") {
		t.Error("garbage hash accepted")
	}
}
