package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/scrypt"
)

func TestPasswordHashingLifecycle(t *testing.T) {
	password := "S3curePass!"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}
	if hash == "" {
		t.Fatal("expected hash to be populated")
	}

	if err := VerifyPassword(hash, password); err != nil {
		t.Fatalf("expected password to verify, got error: %v", err)
	}

	if err := VerifyPassword(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch error for wrong password, got %v", err)
	}
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	first, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatal("expected different salts to yield different hashes")
	}
}

func TestHashPasswordLayout(t *testing.T) {
	hash, err := HashPassword("layout-check")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	salt, derived, ok := strings.Cut(hash, ":")
	if !ok {
		t.Fatalf("expected salt:hash layout, got %q", hash)
	}
	if len(salt) != saltLen*2 {
		t.Fatalf("expected %d hex chars of salt, got %d", saltLen*2, len(salt))
	}
	if len(derived) != scryptKeyLen*2 {
		t.Fatalf("expected %d hex chars of hash, got %d", scryptKeyLen*2, len(derived))
	}

	// The hex-encoded salt string is the scrypt salt input.
	recomputed, err := scrypt.Key([]byte("layout-check"), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := hash[len(salt)+1:]; got != hexString(recomputed) {
		t.Fatalf("stored hash does not match recomputation: %q vs %q", got, hexString(recomputed))
	}
}

func hexString(data []byte) string {
	const digits = "0123456789abcdef"
	builder := strings.Builder{}
	builder.Grow(len(data) * 2)
	for _, b := range data {
		builder.WriteByte(digits[b>>4])
		builder.WriteByte(digits[b&0x0f])
	}
	return builder.String()
}

func TestVerifyPasswordMalformedStored(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{name: "Empty", stored: ""},
		{name: "NoSeparator", stored: "abcdef0123456789"},
		{name: "EmptySalt", stored: ":abcdef"},
		{name: "EmptyHash", stored: "abcdef:"},
		{name: "NonHexHash", stored: "abcdef:zzzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifyPassword(tt.stored, "whatever"); !errors.Is(err, ErrMalformedHash) {
				t.Fatalf("expected malformed-hash error, got %v", err)
			}
		})
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword("   "); err == nil {
		t.Fatal("expected error for blank password")
	}
}
