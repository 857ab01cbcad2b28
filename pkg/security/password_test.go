package security_test

import (
	"strings"
	"testing"

	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/angelmondragon/its27-backend/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	hash, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=32768,t=1,p=1$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := security.HashPassword("", config.PasswordConfig{}); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := security.ValidatePassword("short"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
	if err := security.ValidatePassword(" padded-password "); err == nil {
		t.Fatal("expected padded password to be rejected")
	}
	if err := security.ValidatePassword("joyeria-its27-admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRandomString(t *testing.T) {
	got, err := security.RandomString(security.UpperAlphaNumeric, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 chars, got %q", got)
	}
	for _, r := range got {
		if !strings.ContainsRune(security.UpperAlphaNumeric, r) {
			t.Fatalf("unexpected rune %q in %q", r, got)
		}
	}
	if _, err := security.RandomString("", 4); err == nil {
		t.Fatal("expected error for empty alphabet")
	}
	if _, err := security.RandomString("AB", 0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestNeedsRehash(t *testing.T) {
	current := config.PasswordConfig{ArgonMemoryKB: 16384, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	hash, err := security.HashPassword("joyeria-its27-admin", current)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if security.NeedsRehash(hash, current) {
		t.Fatal("hash made with current params should not need rehash")
	}

	stronger := current
	stronger.ArgonTime = 2
	if !security.NeedsRehash(hash, stronger) {
		t.Fatal("changed time cost should require rehash")
	}
	if !security.NeedsRehash("garbage", current) {
		t.Fatal("malformed hash should require rehash")
	}
}

func TestVerifyPasswordRejectsTamperedParams(t *testing.T) {
	for _, encoded := range []string{
		"$argon2id$v=18$m=8,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=8,t=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5",
		"$argon2i$v=19$m=8,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5",
	} {
		if _, err := security.VerifyPassword("x", encoded); err == nil {
			t.Fatalf("expected error for %q", encoded)
		}
	}
}
