package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shelfmark/internal/entity"
)

const sessionMaxAge = 7 * 24 * 60 * 60

// Register creates an account. The new user starts unconfirmed: login stays
// rejected until the mailed token is redeemed.
func (h *HTTPHandler) Register(c *gin.Context) {
	var req entity.AuthRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), accountTimeout)
	defer cancel()

	user, err := h.accounts.Register(ctx, req)
	if err != nil {
		logrus.WithError(err).WithField("email", req.Email).Warn("registration rejected")
		SendAccountError(c, err)
		return
	}

	SendValue(c, http.StatusCreated, makeUserSummary(user))
}

// Login verifies the credentials and issues a signed bearer token.
func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), accountTimeout)
	defer cancel()

	user, err := h.accounts.Login(ctx, req)
	if err != nil {
		logrus.WithError(err).WithField("email", req.Email).Warn("login attempt failed")
		SendAccountError(c, err)
		return
	}

	token, expiresAt, err := h.authManager.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).Error("failed to generate token")
		InternalError(c)
		return
	}

	SendValue(c, http.StatusOK, entity.AuthTokenResponse{Token: token, ExpiresAt: expiresAt})
}

// LoginSession verifies the credentials and establishes the cookie session:
// an HTTP-only SameSite=Lax cookie holding the user id, Secure in
// production, 7-day max-age.
func (h *HTTPHandler) LoginSession(c *gin.Context) {
	var req entity.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), accountTimeout)
	defer cancel()

	user, err := h.accounts.Login(ctx, req)
	if err != nil {
		logrus.WithError(err).WithField("email", req.Email).Warn("session login attempt failed")
		SendAccountError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, strconv.FormatUint(uint64(user.ID), 10),
		sessionMaxAge, "/", "", h.cfg.IsProduction(), true)

	SendValue(c, http.StatusOK, makeUserSummary(user))
}

// Logout clears the session cookie.
func (h *HTTPHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.cfg.IsProduction(), true)
	SendValue(c, http.StatusOK, gin.H{})
}

// Confirm redeems an account-confirmation token.
func (h *HTTPHandler) Confirm(c *gin.Context) {
	var req entity.AuthConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), accountTimeout)
	defer cancel()

	user, err := h.accounts.Confirm(ctx, req.Token)
	if err != nil {
		SendAccountError(c, err)
		return
	}

	SendValue(c, http.StatusOK, makeUserSummary(user))
}

// ForgotPassword issues and mails a password-reset token. Whether the email
// is registered is never revealed.
func (h *HTTPHandler) ForgotPassword(c *gin.Context) {
	var req entity.AuthForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), accountTimeout)
	defer cancel()

	if err := h.accounts.RequestPasswordReset(ctx, req.Email); err != nil {
		SendAccountError(c, err)
		return
	}

	SendValue(c, http.StatusOK, gin.H{})
}

// ResetPassword redeems a password-reset token.
func (h *HTTPHandler) ResetPassword(c *gin.Context) {
	var req entity.AuthResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), accountTimeout)
	defer cancel()

	if err := h.accounts.ResetPassword(ctx, req.Token, req.Password); err != nil {
		SendAccountError(c, err)
		return
	}

	SendValue(c, http.StatusOK, gin.H{})
}

// Me returns the caller's profile.
func (h *HTTPHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load profile")
		InternalError(c)
		return
	}

	SendValue(c, http.StatusOK, makeUserSummary(dbUser))
}

func makeUserSummary(user *entity.DbUser) entity.UserSummary {
	if user == nil {
		return entity.UserSummary{}
	}
	return entity.UserSummary{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		VerifiedAt: user.VerifiedAt,
		CreatedAt:  user.CreatedAt,
		ModifiedAt: user.ModifiedAt,
		DeletedAt:  user.DeletedAt,
	}
}
