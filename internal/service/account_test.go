package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"shelfmark/internal/auth"
	"shelfmark/internal/entity"
	"shelfmark/internal/model"
)

// fakeRepo keeps users in memory. Only the methods the account service
// touches are implemented, anything else panics through the embedded nil
// interface.
type fakeRepo struct {
	model.Repository

	users       map[uint]*entity.DbUser
	permissions map[uint]*entity.DbUserPermission
	nextID      uint

	failCreateWith error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       map[uint]*entity.DbUser{},
		permissions: map[uint]*entity.DbUserPermission{},
		nextID:      1,
	}
}

func (f *fakeRepo) CreateUserWithPermission(ctx context.Context, user *entity.DbUser) error {
	if f.failCreateWith != nil {
		return f.failCreateWith
	}
	for _, existing := range f.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	f.nextID++
	f.users[user.ID] = user
	f.permissions[user.ID] = &entity.DbUserPermission{
		ID:     user.ID,
		UserID: user.ID,
		Member: true,
	}
	return nil
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeRepo) GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetUserByUsername(ctx context.Context, username string) (*entity.DbUser, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetUserByToken(ctx context.Context, token string) (*entity.DbUser, error) {
	for _, user := range f.users {
		if user.Token != nil && *user.Token == token && !user.Deleted() {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateUser(ctx context.Context, id uint, updates map[string]interface{}) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if value, ok := updates["token"]; ok {
		if value == nil {
			user.Token = nil
		} else {
			token := value.(string)
			user.Token = &token
		}
	}
	if value, ok := updates["verified_at"]; ok {
		at := value.(time.Time)
		user.VerifiedAt = &at
	}
	if value, ok := updates["modified_at"]; ok {
		at := value.(time.Time)
		user.ModifiedAt = &at
	}
	if value, ok := updates["password"]; ok {
		user.Password = value.(string)
	}
	if value, ok := updates["username"]; ok {
		user.Username = value.(string)
	}
	if value, ok := updates["email"]; ok {
		user.Email = value.(string)
	}
	return nil
}

// recordingMailer captures outgoing tokens instead of sending mail.
type recordingMailer struct {
	confirmations map[string]string
	resets        map[string]string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{
		confirmations: map[string]string{},
		resets:        map[string]string{},
	}
}

func (m *recordingMailer) SendConfirmation(ctx context.Context, toEmail, username, token string) error {
	m.confirmations[toEmail] = token
	return nil
}

func (m *recordingMailer) SendPasswordReset(ctx context.Context, toEmail, username, token string) error {
	m.resets[toEmail] = token
	return nil
}

func register(t *testing.T, svc *AccountService, username, email string) *entity.DbUser {
	t.Helper()
	user, err := svc.Register(context.Background(), entity.AuthRegisterRequest{
		Username: username,
		Email:    email,
		Password: "S3curePass!",
	})
	if err != nil {
		t.Fatalf("unexpected error registering: %v", err)
	}
	return user
}

func TestRegisterCreatesUnconfirmedUserWithPermission(t *testing.T) {
	repo := newFakeRepo()
	mails := newRecordingMailer()
	svc := NewAccountService(repo, mails)

	user := register(t, svc, "reader", "Reader@Example.com")

	if user.Email != "reader@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if !auth.ConfirmationPending(user.Token) {
		t.Fatal("expected a pending confirmation token")
	}
	if user.VerifiedAt != nil {
		t.Fatal("expected no verification timestamp yet")
	}
	if strings.Contains(user.Password, "S3curePass!") {
		t.Fatal("expected password to be hashed")
	}

	permission, ok := repo.permissions[user.ID]
	if !ok {
		t.Fatal("expected a permission row to be created")
	}
	if !permission.Member || permission.Moderator || permission.Administrator {
		t.Fatalf("expected a member-only permission row, got %+v", permission)
	}

	if mails.confirmations[user.Email] == "" {
		t.Fatal("expected a confirmation mail")
	}
}

func TestRegisterDuplicatePrecedence(t *testing.T) {
	repo := newFakeRepo()
	svc := NewAccountService(repo, newRecordingMailer())
	register(t, svc, "reader", "reader@example.com")

	tests := []struct {
		name     string
		username string
		email    string
		want     error
	}{
		{name: "DuplicateEmail", username: "other", email: "reader@example.com", want: ErrEmailAlreadyExists},
		{name: "DuplicateUsername", username: "reader", email: "other@example.com", want: ErrUsernameAlreadyExists},
		// The email check runs first, so a double collision reports the email.
		{name: "DuplicateBoth", username: "reader", email: "reader@example.com", want: ErrEmailAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), entity.AuthRegisterRequest{
				Username: tt.username,
				Email:    tt.email,
				Password: "S3curePass!",
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRegisterClassifiesRacingDuplicate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewAccountService(repo, newRecordingMailer())

	// The pre-insert checks find nothing, the insert itself collides.
	repo.failCreateWith = gorm.ErrDuplicatedKey
	_, err := svc.Register(context.Background(), entity.AuthRegisterRequest{
		Username: "reader",
		Email:    "reader@example.com",
		Password: "S3curePass!",
	})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected the duplicate-key failure to classify as email conflict, got %v", err)
	}
}

func TestRegisterRequiredFields(t *testing.T) {
	svc := NewAccountService(newFakeRepo(), newRecordingMailer())

	tests := []struct {
		name string
		req  entity.AuthRegisterRequest
	}{
		{name: "MissingUsername", req: entity.AuthRegisterRequest{Email: "a@b.c", Password: "x"}},
		{name: "MissingEmail", req: entity.AuthRegisterRequest{Username: "a", Password: "x"}},
		{name: "MissingPassword", req: entity.AuthRegisterRequest{Username: "a", Email: "a@b.c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tt.req); !errors.Is(err, ErrRequiredField) {
				t.Fatalf("expected required-field error, got %v", err)
			}
		})
	}
}

func TestLoginLifecycle(t *testing.T) {
	repo := newFakeRepo()
	mails := newRecordingMailer()
	svc := NewAccountService(repo, mails)
	user := register(t, svc, "reader", "reader@example.com")

	// Unconfirmed accounts cannot log in.
	_, err := svc.Login(context.Background(), entity.AuthLoginRequest{Email: user.Email, Password: "S3curePass!"})
	if !errors.Is(err, ErrUserNotConfirmed) {
		t.Fatalf("expected not-confirmed rejection, got %v", err)
	}

	if _, err := svc.Confirm(context.Background(), mails.confirmations[user.Email]); err != nil {
		t.Fatalf("unexpected error confirming: %v", err)
	}

	logged, err := svc.Login(context.Background(), entity.AuthLoginRequest{Email: "Reader@Example.com", Password: "S3curePass!"})
	if err != nil {
		t.Fatalf("unexpected error logging in: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, logged.ID)
	}

	_, err = svc.Login(context.Background(), entity.AuthLoginRequest{Email: user.Email, Password: "wrong"})
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected invalid-password rejection, got %v", err)
	}

	_, err = svc.Login(context.Background(), entity.AuthLoginRequest{Email: "unknown@example.com", Password: "x"})
	if !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected invalid-email rejection, got %v", err)
	}
}

func TestLoginRejectsDeletedUser(t *testing.T) {
	repo := newFakeRepo()
	mails := newRecordingMailer()
	svc := NewAccountService(repo, mails)
	user := register(t, svc, "reader", "reader@example.com")
	if _, err := svc.Confirm(context.Background(), mails.confirmations[user.Email]); err != nil {
		t.Fatalf("unexpected error confirming: %v", err)
	}

	now := time.Now().UTC()
	repo.users[user.ID].DeletedAt = &now

	_, err := svc.Login(context.Background(), entity.AuthLoginRequest{Email: user.Email, Password: "S3curePass!"})
	if !errors.Is(err, ErrUserDeleted) {
		t.Fatalf("expected deleted rejection, got %v", err)
	}
}

func TestConfirmRejectsBadTokens(t *testing.T) {
	svc := NewAccountService(newFakeRepo(), newRecordingMailer())

	if _, err := svc.Confirm(context.Background(), "rp:not-a-confirmation"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected token-not-found for reset-prefixed token, got %v", err)
	}
	if _, err := svc.Confirm(context.Background(), "ac:unknown"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected token-not-found for unknown token, got %v", err)
	}
	if _, err := svc.Confirm(context.Background(), "   "); !errors.Is(err, ErrRequiredField) {
		t.Fatalf("expected required-field for blank token, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	repo := newFakeRepo()
	mails := newRecordingMailer()
	svc := NewAccountService(repo, mails)
	user := register(t, svc, "reader", "reader@example.com")
	if _, err := svc.Confirm(context.Background(), mails.confirmations[user.Email]); err != nil {
		t.Fatalf("unexpected error confirming: %v", err)
	}

	if err := svc.RequestPasswordReset(context.Background(), user.Email); err != nil {
		t.Fatalf("unexpected error requesting reset: %v", err)
	}
	token := mails.resets[user.Email]
	if !strings.HasPrefix(token, auth.ResetPrefix) {
		t.Fatalf("expected a reset token, got %q", token)
	}

	if err := svc.ResetPassword(context.Background(), token, "N3wPass!"); err != nil {
		t.Fatalf("unexpected error resetting: %v", err)
	}

	if _, err := svc.Login(context.Background(), entity.AuthLoginRequest{Email: user.Email, Password: "S3curePass!"}); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected old password to stop working, got %v", err)
	}
	if _, err := svc.Login(context.Background(), entity.AuthLoginRequest{Email: user.Email, Password: "N3wPass!"}); err != nil {
		t.Fatalf("expected new password to work, got %v", err)
	}

	// The token is single use.
	if err := svc.ResetPassword(context.Background(), token, "AnotherPass!"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected spent token to be rejected, got %v", err)
	}
}

func TestRequestPasswordResetStaysSilent(t *testing.T) {
	repo := newFakeRepo()
	mails := newRecordingMailer()
	svc := NewAccountService(repo, mails)

	// Unknown accounts are not revealed.
	if err := svc.RequestPasswordReset(context.Background(), "unknown@example.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if len(mails.resets) != 0 {
		t.Fatal("expected no reset mail for unknown account")
	}

	// Unconfirmed accounts keep their confirmation token.
	user := register(t, svc, "reader", "reader@example.com")
	if err := svc.RequestPasswordReset(context.Background(), user.Email); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if !auth.ConfirmationPending(repo.users[user.ID].Token) {
		t.Fatal("expected confirmation token to survive a reset request")
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeRepo()
	mails := newRecordingMailer()
	svc := NewAccountService(repo, mails)
	user := register(t, svc, "reader", "reader@example.com")
	other := register(t, svc, "other", "other@example.com")

	newName := "bookworm"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, entity.UserUpdateRequest{Username: &newName})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Username != "bookworm" {
		t.Fatalf("expected renamed user, got %q", updated.Username)
	}

	taken := other.Email
	if _, err := svc.UpdateProfile(context.Background(), user.ID, entity.UserUpdateRequest{Email: &taken}); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected email conflict, got %v", err)
	}

	// Re-submitting the current email is not a conflict.
	own := user.Email
	if _, err := svc.UpdateProfile(context.Background(), user.ID, entity.UserUpdateRequest{Email: &own}); err != nil {
		t.Fatalf("unexpected error keeping own email: %v", err)
	}

	blank := "  "
	if _, err := svc.UpdateProfile(context.Background(), user.ID, entity.UserUpdateRequest{Username: &blank}); !errors.Is(err, ErrRequiredField) {
		t.Fatalf("expected required-field for blank username, got %v", err)
	}
}
