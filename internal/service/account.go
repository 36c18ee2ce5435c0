package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shelfmark/internal/auth"
	"shelfmark/internal/entity"
	"shelfmark/internal/mailer"
	"shelfmark/internal/model"
)

// Domain failures surfaced by the account service. Handlers translate these
// to catalog errors, everything else maps to an internal error.
var (
	ErrRequiredField         = errors.New("required field is empty")
	ErrEmailAlreadyExists    = errors.New("email already registered")
	ErrUsernameAlreadyExists = errors.New("username already taken")
	ErrInvalidEmail          = errors.New("no account for this email")
	ErrInvalidPassword       = errors.New("password does not match")
	ErrUserNotConfirmed      = errors.New("account not confirmed")
	ErrUserDeleted           = errors.New("account is deleted")
	ErrTokenNotFound         = errors.New("account token not found")
)

// AccountService implements registration, login, confirmation, and password
// reset on top of the repository and the mail collaborator.
type AccountService struct {
	repo   model.Repository
	mailer mailer.Mailer
}

// NewAccountService creates an account service instance.
func NewAccountService(repo model.Repository, m mailer.Mailer) *AccountService {
	if m == nil {
		m = mailer.Disabled{}
	}
	return &AccountService{repo: repo, mailer: m}
}

// Register creates an unconfirmed user with a salted scrypt password hash, a
// confirmation token, and a default permission row, all in one transaction.
//
// The pre-insert uniqueness checks give precise errors, but the database
// unique constraints are the authority: a duplicate-key failure from the
// insert is translated the same way so a racing registration cannot slip
// past the check.
func (s *AccountService) Register(ctx context.Context, req entity.AuthRegisterRequest) (*entity.DbUser, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := req.Password

	if username == "" || email == "" || password == "" {
		return nil, ErrRequiredField
	}

	// Email first, username second: the order is observable in the error.
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && !existing.Deleted() {
		return nil, ErrEmailAlreadyExists
	}

	existing, err = s.repo.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && !existing.Deleted() {
		return nil, ErrUsernameAlreadyExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	token, err := auth.NewConfirmationToken()
	if err != nil {
		return nil, err
	}

	user := &entity.DbUser{
		Username: username,
		Email:    email,
		Password: hash,
		Token:    &token,
	}

	if err := s.repo.CreateUserWithPermission(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.classifyDuplicate(ctx, username, email)
		}
		return nil, err
	}

	if err := s.mailer.SendConfirmation(ctx, user.Email, user.Username, token); err != nil {
		// Mail delivery failure must not undo the registration.
		logrus.WithError(err).WithField("email", user.Email).Warn("failed to send confirmation mail")
	}

	return user, nil
}

// classifyDuplicate decides which column collided after a unique-constraint
// violation on insert. When the colliding row cannot be read back (for
// instance both lookups race again) the email error wins, matching the
// check order.
func (s *AccountService) classifyDuplicate(ctx context.Context, username, email string) error {
	if existing, err := s.repo.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return ErrEmailAlreadyExists
	}
	if existing, err := s.repo.GetUserByUsername(ctx, username); err == nil && existing != nil {
		return ErrUsernameAlreadyExists
	}
	return ErrEmailAlreadyExists
}

// Login authenticates the credentials and returns the matching user.
// Soft-deleted users never authenticate; unconfirmed users are rejected
// before any password work; the hash comparison itself is constant time.
func (s *AccountService) Login(ctx context.Context, req entity.AuthLoginRequest) (*entity.DbUser, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := req.Password

	if email == "" || password == "" {
		return nil, ErrRequiredField
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}

	if user.Deleted() {
		return nil, ErrUserDeleted
	}

	if auth.ConfirmationPending(user.Token) {
		return nil, ErrUserNotConfirmed
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidPassword
		}
		return nil, err
	}

	return user, nil
}

// Confirm redeems an account-confirmation token: the token column is cleared
// and the verification timestamp set, unlocking login.
func (s *AccountService) Confirm(ctx context.Context, token string) (*entity.DbUser, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, ErrRequiredField
	}
	if !strings.HasPrefix(trimmed, auth.ConfirmationPrefix) {
		return nil, ErrTokenNotFound
	}

	user, err := s.repo.GetUserByToken(ctx, trimmed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"token":       nil,
		"verified_at": now,
		"modified_at": now,
	}
	if err := s.repo.UpdateUser(ctx, user.ID, updates); err != nil {
		return nil, err
	}

	user.Token = nil
	user.VerifiedAt = &now
	user.ModifiedAt = &now
	return user, nil
}

// RequestPasswordReset issues a reset token and mails it. Unknown or deleted
// accounts are not revealed: the call succeeds silently.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return ErrRequiredField
	}

	user, err := s.repo.GetUserByEmail(ctx, trimmed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if user.Deleted() || auth.ConfirmationPending(user.Token) {
		return nil
	}

	token, err := auth.NewResetToken()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"token":       token,
		"modified_at": now,
	}
	if err := s.repo.UpdateUser(ctx, user.ID, updates); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Username, token); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Warn("failed to send password reset mail")
	}
	return nil
}

// UpdateProfile applies a partial update to an account. Username and email
// changes go through the same uniqueness checks as registration, and a new
// password is rehashed. The caller is expected to have loaded and authorized
// the target user already.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, req entity.UserUpdateRequest) (*entity.DbUser, error) {
	updates := map[string]interface{}{}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, ErrRequiredField
		}
		existing, err := s.repo.GetUserByEmail(ctx, email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != userID && !existing.Deleted() {
			return nil, ErrEmailAlreadyExists
		}
		updates["email"] = email
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, ErrRequiredField
		}
		existing, err := s.repo.GetUserByUsername(ctx, username)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != userID && !existing.Deleted() {
			return nil, ErrUsernameAlreadyExists
		}
		updates["username"] = username
	}

	if req.Password != nil {
		if *req.Password == "" {
			return nil, ErrRequiredField
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}

	if len(updates) > 0 {
		updates["modified_at"] = time.Now().UTC()
		if err := s.repo.UpdateUser(ctx, userID, updates); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				username, _ := updates["username"].(string)
				email, _ := updates["email"].(string)
				return nil, s.classifyDuplicate(ctx, username, email)
			}
			return nil, err
		}
	}

	return s.repo.GetUserByID(ctx, userID)
}

// ResetPassword redeems a reset token, rehashes the new password, and clears
// the token.
func (s *AccountService) ResetPassword(ctx context.Context, token, password string) error {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" || password == "" {
		return ErrRequiredField
	}
	if !strings.HasPrefix(trimmed, auth.ResetPrefix) {
		return ErrTokenNotFound
	}

	user, err := s.repo.GetUserByToken(ctx, trimmed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"password":    hash,
		"token":       nil,
		"modified_at": time.Now().UTC(),
	}
	return s.repo.UpdateUser(ctx, user.ID, updates)
}
