package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shelfmark/internal/entity"
)

// ListUsers returns a paginated user listing. Moderator access is enforced at
// the route level.
func (h *HTTPHandler) ListUsers(c *gin.Context) {
	var query entity.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	users, meta, err := h.repo.ListUsers(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list users")
		InternalError(c)
		return
	}

	summaries := make([]entity.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, makeUserSummary(&users[i]))
	}

	SendList(c, summaries, meta)
}

// GetUser returns one user. Callers may read their own account, anyone else's
// requires moderator access.
func (h *HTTPHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if !h.allowSelfOr(c, id, RoleModerator) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	user, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, makeUserSummary(user))
}

// UpdateUser patches username, email, or password. Callers may update their
// own account, anyone else's requires moderator access.
func (h *HTTPHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if !h.allowSelfOr(c, id, RoleModerator) {
		return
	}

	var req entity.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	// Password hashing makes this slower than a plain row update.
	ctx, cancel := context.WithTimeout(c.Request.Context(), accountTimeout)
	defer cancel()

	if _, ok := h.fetchUsableUser(c, ctx, id); !ok {
		return
	}

	user, err := h.accounts.UpdateProfile(ctx, id, req)
	if err != nil {
		logrus.WithError(err).WithField("user_id", id).Warn("profile update rejected")
		SendAccountError(c, err)
		return
	}

	SendValue(c, http.StatusOK, makeUserSummary(user))
}

// DeleteUser soft-deletes an account. Callers may delete their own account,
// anyone else's requires moderator access.
func (h *HTTPHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if !h.allowSelfOr(c, id, RoleModerator) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	user, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}
	if user.Deleted() {
		AlreadyDeleted(c)
		return
	}

	if err := h.repo.SoftDeleteUser(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			AlreadyDeleted(c)
			return
		}
		logrus.WithError(err).WithField("user_id", id).Error("failed to delete user")
		InternalError(c)
		return
	}

	updated, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, makeUserSummary(updated))
}
