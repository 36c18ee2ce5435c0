package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shelfmark/internal/entity"
)

// CreatePermission creates a default member-only permission row for a user.
// Registration already does this transactionally, so the endpoint exists to
// repair accounts whose row went missing. Administrator access is enforced at
// the route level.
func (h *HTTPHandler) CreatePermission(c *gin.Context) {
	var req entity.PermissionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}
	if req.UserID == 0 {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if _, ok := h.fetchUsableUser(c, ctx, req.UserID); !ok {
		return
	}

	if existing, err := h.repo.GetPermissionByUserID(ctx, req.UserID); err == nil && existing != nil {
		SendError(c, http.StatusConflict, ErrRessourceAlreadyExists)
		return
	}

	permission := &entity.DbUserPermission{
		UserID: req.UserID,
		Member: true,
	}

	if err := h.repo.CreatePermission(ctx, permission); err != nil {
		logrus.WithError(err).WithField("user_id", req.UserID).Error("failed to create permission")
		InternalError(c)
		return
	}

	SendValue(c, http.StatusCreated, permission)
}

// GetPermission returns the permission row of a user, addressed by user id.
// Callers may read their own row, anyone else's requires moderator access.
func (h *HTTPHandler) GetPermission(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		InvalidID(c)
		return
	}
	if !h.allowSelfOr(c, uint(userID), RoleModerator) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	permission, err := h.repo.GetPermissionByUserID(ctx, uint(userID))
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, permission)
}

// UpdatePermission patches role flags. Administrator access is enforced at
// the route level.
func (h *HTTPHandler) UpdatePermission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.PermissionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if _, err := h.repo.GetPermissionByID(ctx, id); err != nil {
		sendRepoError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Member != nil {
		updates["member"] = *req.Member
	}
	if req.Moderator != nil {
		updates["moderator"] = *req.Moderator
	}
	if req.Administrator != nil {
		updates["administrator"] = *req.Administrator
	}

	if len(updates) > 0 {
		updates["modified_at"] = time.Now().UTC()
		if err := h.repo.UpdatePermission(ctx, id, updates); err != nil {
			logrus.WithError(err).WithField("permission_id", id).Error("failed to update permission")
			InternalError(c)
			return
		}
	}

	permission, err := h.repo.GetPermissionByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, permission)
}

// DeletePermission removes a permission row for good. Administrator access is
// enforced at the route level.
func (h *HTTPHandler) DeletePermission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if _, err := h.repo.GetPermissionByID(ctx, id); err != nil {
		sendRepoError(c, err)
		return
	}

	if err := h.repo.DeletePermission(ctx, id); err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, gin.H{})
}
