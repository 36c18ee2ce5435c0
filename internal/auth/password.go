package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters, 32-byte derived key.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 16
)

// ErrMalformedHash indicates a stored password that is not in the
// expected "hex(salt):hex(hash)" layout.
var ErrMalformedHash = errors.New("stored password hash is malformed")

// ErrPasswordMismatch indicates the candidate password does not match.
var ErrPasswordMismatch = errors.New("password does not match")

// HashPassword derives a salted scrypt hash from the plaintext password
// and returns it encoded as "hex(salt):hex(hash)".
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must not be empty")
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	encodedSalt := hex.EncodeToString(salt)
	hash, err := scrypt.Key([]byte(password), []byte(encodedSalt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", err
	}
	return encodedSalt + ":" + hex.EncodeToString(hash), nil
}

// VerifyPassword recomputes the hash of the candidate with the stored salt
// and compares against the stored hash in constant time. Returns
// ErrMalformedHash when the stored value cannot be split into salt and hash,
// ErrPasswordMismatch when the candidate is wrong.
func VerifyPassword(stored, candidate string) error {
	salt, storedHash, ok := strings.Cut(stored, ":")
	if !ok || salt == "" || storedHash == "" {
		return ErrMalformedHash
	}
	storedHashBytes, err := hex.DecodeString(storedHash)
	if err != nil {
		return ErrMalformedHash
	}
	hash, err := scrypt.Key([]byte(candidate), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(storedHashBytes, hash) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
