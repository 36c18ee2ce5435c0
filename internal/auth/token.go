package auth

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// Account token prefixes. The user token column is overloaded: "ac:" marks a
// pending account confirmation, "rp:" marks a password reset in flight.
const (
	ConfirmationPrefix = "ac:"
	ResetPrefix        = "rp:"

	accountTokenLen = 32
)

func randomToken(prefix string) (string, error) {
	raw := make([]byte, accountTokenLen)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return prefix + hex.EncodeToString(raw), nil
}

// NewConfirmationToken issues a fresh account-confirmation token.
func NewConfirmationToken() (string, error) {
	return randomToken(ConfirmationPrefix)
}

// NewResetToken issues a fresh password-reset token.
func NewResetToken() (string, error) {
	return randomToken(ResetPrefix)
}

// ConfirmationPending reports whether the stored token still carries the
// confirmation prefix. Such accounts cannot authenticate.
func ConfirmationPending(token *string) bool {
	return token != nil && strings.HasPrefix(*token, ConfirmationPrefix)
}

// ResetPending reports whether the stored token is a password-reset token.
func ResetPending(token *string) bool {
	return token != nil && strings.HasPrefix(*token, ResetPrefix)
}
