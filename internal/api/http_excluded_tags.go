package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shelfmark/internal/entity"
)

// CreateExcludedTag hides books carrying the tag from the user's browsing.
// A caller may only exclude tags for themselves unless they hold moderator
// access.
func (h *HTTPHandler) CreateExcludedTag(c *gin.Context) {
	var req entity.ExcludedTagCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}
	if req.UserID == 0 || req.TagID == 0 {
		RequiredField(c)
		return
	}

	if !h.allowSelfOr(c, req.UserID, RoleModerator) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if _, ok := h.fetchUsableUser(c, ctx, req.UserID); !ok {
		return
	}
	if _, ok := h.fetchUsableTag(c, ctx, req.TagID); !ok {
		return
	}

	excluded := &entity.DbUserExcludedTag{
		UserID: req.UserID,
		TagID:  req.TagID,
	}

	if err := h.repo.CreateExcludedTag(ctx, excluded); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": req.UserID,
			"tag_id":  req.TagID,
		}).Error("failed to create excluded tag")
		InternalError(c)
		return
	}

	SendValue(c, http.StatusCreated, excluded)
}

// ListExcludedTags returns the tags a user excluded. Callers may list their
// own, listing another user's requires moderator access.
func (h *HTTPHandler) ListExcludedTags(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("userId"), 10, 64)
	if err != nil || userID == 0 {
		InvalidID(c)
		return
	}
	if !h.allowSelfOr(c, uint(userID), RoleModerator) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	excluded, err := h.repo.ListExcludedTagsByUser(ctx, uint(userID))
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("failed to list excluded tags")
		InternalError(c)
		return
	}

	SendList(c, excluded, nil)
}

// UpdateExcludedTag repoints an exclusion at another tag or user. Callers may
// edit their own exclusions, touching another user's requires moderator
// access.
func (h *HTTPHandler) UpdateExcludedTag(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.ExcludedTagUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	excluded, err := h.repo.GetExcludedTagByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}
	if !h.allowSelfOr(c, excluded.UserID, RoleModerator) {
		return
	}

	updates := map[string]interface{}{}
	if req.UserID != nil {
		if _, ok := h.fetchUsableUser(c, ctx, *req.UserID); !ok {
			return
		}
		updates["user_id"] = *req.UserID
	}
	if req.TagID != nil {
		if _, ok := h.fetchUsableTag(c, ctx, *req.TagID); !ok {
			return
		}
		updates["tag_id"] = *req.TagID
	}

	if len(updates) > 0 {
		if err := h.repo.UpdateExcludedTag(ctx, id, updates); err != nil {
			logrus.WithError(err).WithField("excluded_tag_id", id).Error("failed to update excluded tag")
			InternalError(c)
			return
		}
	}

	excluded, err = h.repo.GetExcludedTagByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, excluded)
}

// DeleteExcludedTag removes an exclusion for good.
func (h *HTTPHandler) DeleteExcludedTag(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	excluded, err := h.repo.GetExcludedTagByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}
	if !h.allowSelfOr(c, excluded.UserID, RoleModerator) {
		return
	}

	if err := h.repo.DeleteExcludedTag(ctx, id); err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, gin.H{})
}
