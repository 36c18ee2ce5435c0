package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Mailer dispatches account-lifecycle notifications. Implementations must be
// safe for concurrent use.
type Mailer interface {
	SendConfirmation(ctx context.Context, toEmail, username, token string) error
	SendPasswordReset(ctx context.Context, toEmail, username, token string) error
}

// Disabled is a no-op Mailer used when no mail provider is configured.
// Sends are logged and dropped.
type Disabled struct{}

func (Disabled) SendConfirmation(_ context.Context, toEmail, _, _ string) error {
	logrus.WithField("to", toEmail).Info("mailer disabled, skipping confirmation mail")
	return nil
}

func (Disabled) SendPasswordReset(_ context.Context, toEmail, _, _ string) error {
	logrus.WithField("to", toEmail).Info("mailer disabled, skipping password reset mail")
	return nil
}
