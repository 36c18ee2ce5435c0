package auth

import (
	"strings"
	"testing"
)

func TestTokenPrefixes(t *testing.T) {
	confirmation, err := NewConfirmationToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(confirmation, ConfirmationPrefix) {
		t.Fatalf("expected %q prefix, got %q", ConfirmationPrefix, confirmation)
	}
	if len(confirmation) != len(ConfirmationPrefix)+accountTokenLen*2 {
		t.Fatalf("unexpected confirmation token length %d", len(confirmation))
	}

	reset, err := NewResetToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(reset, ResetPrefix) {
		t.Fatalf("expected %q prefix, got %q", ResetPrefix, reset)
	}
}

func TestTokensAreUnique(t *testing.T) {
	first, err := NewConfirmationToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NewConfirmationToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct tokens")
	}
}

func TestPendingChecks(t *testing.T) {
	confirmation := ConfirmationPrefix + "abc"
	reset := ResetPrefix + "abc"
	plain := "abc"

	tests := []struct {
		name             string
		token            *string
		wantConfirmation bool
		wantReset        bool
	}{
		{name: "Nil", token: nil},
		{name: "Confirmation", token: &confirmation, wantConfirmation: true},
		{name: "Reset", token: &reset, wantReset: true},
		{name: "Unprefixed", token: &plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConfirmationPending(tt.token); got != tt.wantConfirmation {
				t.Fatalf("ConfirmationPending = %v, want %v", got, tt.wantConfirmation)
			}
			if got := ResetPending(tt.token); got != tt.wantReset {
				t.Fatalf("ResetPending = %v, want %v", got, tt.wantReset)
			}
		})
	}
}
