package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"shelfmark/internal/config"
)

// SendgridMailer delivers account mails through the SendGrid API.
type SendgridMailer struct {
	client      *sendgrid.Client
	fromName    string
	fromAddress string
	linkBaseURL string
}

// NewMailer builds a Mailer from config. Without an API key the disabled
// implementation is returned.
func NewMailer(cfg config.Config) Mailer {
	key := strings.TrimSpace(cfg.SendgridAPIKey)
	if key == "" {
		return Disabled{}
	}
	return &SendgridMailer{
		client:      sendgrid.NewSendClient(key),
		fromName:    cfg.MailFromName,
		fromAddress: cfg.MailFromAddress,
		linkBaseURL: strings.TrimRight(cfg.MailLinkBaseURL, "/"),
	}
}

// SendConfirmation mails the account-confirmation link.
func (m *SendgridMailer) SendConfirmation(ctx context.Context, toEmail, username, token string) error {
	subject := "Confirm your account"
	link := fmt.Sprintf("%s/confirm?token=%s", m.linkBaseURL, token)
	plain := fmt.Sprintf("Hi %s,\n\nConfirm your account by opening this link:\n%s\n", username, link)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Confirm your account by clicking <a href=%q>this link</a>.</p>", username, link)
	return m.send(ctx, toEmail, username, subject, plain, html)
}

// SendPasswordReset mails the password-reset link.
func (m *SendgridMailer) SendPasswordReset(ctx context.Context, toEmail, username, token string) error {
	subject := "Reset your password"
	link := fmt.Sprintf("%s/reset-password?token=%s", m.linkBaseURL, token)
	plain := fmt.Sprintf("Hi %s,\n\nReset your password by opening this link:\n%s\n\nIgnore this mail if you did not request a reset.\n", username, link)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Reset your password by clicking <a href=%q>this link</a>.</p><p>Ignore this mail if you did not request a reset.</p>", username, link)
	return m.send(ctx, toEmail, username, subject, plain, html)
}

func (m *SendgridMailer) send(ctx context.Context, toEmail, toName, subject, plain, html string) error {
	from := mail.NewEmail(m.fromName, m.fromAddress)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected mail: status %d", response.StatusCode)
	}
	return nil
}
