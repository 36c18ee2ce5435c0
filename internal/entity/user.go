package entity

import "time"

// DbUser represents a persisted user account.
//
// Password holds "hex(salt):hex(hash)". Token is overloaded: a value with the
// "ac:" prefix means the account awaits confirmation, "rp:" means a password
// reset is in flight, nil means neither. A user with a non-nil DeletedAt is
// soft-deleted and excluded from login and most queries.
type DbUser struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Username   string     `gorm:"column:username;type:varchar(255);uniqueIndex;not null" json:"username"`
	Email      string     `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   string     `gorm:"column:password;type:varchar(255);not null" json:"-"`
	Token      *string    `gorm:"column:token;type:varchar(255);uniqueIndex" json:"-"`
	VerifiedAt *time.Time `gorm:"column:verified_at" json:"verified_at"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	ModifiedAt *time.Time `gorm:"column:modified_at;index" json:"modified_at"`
	DeletedAt  *time.Time `gorm:"column:deleted_at;index" json:"deleted_at"`
}

// TableName overrides default pluralised name.
func (DbUser) TableName() string {
	return "user"
}

// Deleted reports whether the user is soft-deleted.
func (u *DbUser) Deleted() bool {
	return u != nil && u.DeletedAt != nil
}

// DbUserPermission holds the role flags consulted by the authorization gate.
// Every user owns exactly one row, created together with the account.
type DbUserPermission struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	UserID        uint       `gorm:"column:user_id;index;not null" json:"user_id"`
	Member        bool       `gorm:"column:member;not null;default:true" json:"member"`
	Moderator     bool       `gorm:"column:moderator;not null;default:false" json:"moderator"`
	Administrator bool       `gorm:"column:administrator;not null;default:false" json:"administrator"`
	ModifiedAt    *time.Time `gorm:"column:modified_at;index" json:"modified_at"`
}

func (DbUserPermission) TableName() string {
	return "user_permission"
}

// UserSummary is a lightweight user description returned to clients.
type UserSummary struct {
	ID         uint       `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	VerifiedAt *time.Time `json:"verified_at"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt *time.Time `json:"modified_at"`
	DeletedAt  *time.Time `json:"deleted_at"`
}

// UserQuery supports listing users with filters and pagination.
type UserQuery struct {
	BaseParams
	Username       string `json:"username" form:"username" query:"username"`
	Email          string `json:"email" form:"email" query:"email"`
	IncludeDeleted bool   `json:"include_deleted" form:"include_deleted" query:"include_deleted"`
}

type AuthRegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthConfirmRequest struct {
	Token string `json:"token"`
}

type AuthForgotPasswordRequest struct {
	Email string `json:"email"`
}

type AuthResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type AuthTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserUpdateRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

type PermissionCreateRequest struct {
	UserID uint `json:"userId"`
}

type PermissionUpdateRequest struct {
	Member        *bool `json:"member,omitempty"`
	Moderator     *bool `json:"moderator,omitempty"`
	Administrator *bool `json:"administrator,omitempty"`
}
