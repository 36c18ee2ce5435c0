package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shelfmark/internal/entity"
)

// CreateComment posts a comment on a book. A caller may only post as
// themselves unless they hold moderator access.
func (h *HTTPHandler) CreateComment(c *gin.Context) {
	var req entity.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}
	if req.UserID == 0 || req.BookID == 0 || req.Message == "" {
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
	if _, ok := h.fetchUsableBook(c, ctx, req.BookID); !ok {
		return
	}

	comment := &entity.DbUserComment{
		UserID:  req.UserID,
		BookID:  req.BookID,
		Message: req.Message,
	}

	if err := h.repo.CreateComment(ctx, comment); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": req.UserID,
			"book_id": req.BookID,
		}).Error("failed to create comment")
		InternalError(c)
		return
	}

	SendValue(c, http.StatusCreated, comment)
}

// ListComments returns comments with filters and pagination.
func (h *HTTPHandler) ListComments(c *gin.Context) {
	var query entity.CommentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	comments, meta, err := h.repo.ListComments(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list comments")
		InternalError(c)
		return
	}

	SendList(c, comments, meta)
}

// GetComment returns one comment.
func (h *HTTPHandler) GetComment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	comment, err := h.repo.GetCommentByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, comment)
}

// UpdateComment patches a comment. The author may edit the message;
// moderation fields (like count, highlighted, hidden) require moderator
// access even on the author's own comment.
func (h *HTTPHandler) UpdateComment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	comment, err := h.repo.GetCommentByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}
	if comment.Deleted() {
		Deleted(c)
		return
	}

	moderationChange := req.Like != nil || req.Highlighted != nil || req.Hidden != nil
	if moderationChange {
		if !h.allowSelfOr(c, 0, RoleModerator) {
			return
		}
	} else if !h.allowSelfOr(c, comment.UserID, RoleModerator) {
		return
	}

	updates := map[string]interface{}{"modified_at": time.Now().UTC()}
	if req.Message != nil {
		if *req.Message == "" {
			RequiredField(c)
			return
		}
		updates["message"] = *req.Message
	}
	if req.Like != nil {
		updates["like"] = *req.Like
	}
	if req.Highlighted != nil {
		updates["highlighted"] = *req.Highlighted
	}
	if req.Hidden != nil {
		updates["hidden"] = *req.Hidden
	}

	if err := h.repo.UpdateComment(ctx, comment.ID, updates); err != nil {
		logrus.WithError(err).WithField("comment_id", comment.ID).Error("failed to update comment")
		InternalError(c)
		return
	}

	updated, err := h.repo.GetCommentByID(ctx, comment.ID)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, updated)
}

// DeleteComment soft-deletes a comment. The author may delete their own,
// anyone else's requires moderator access.
func (h *HTTPHandler) DeleteComment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	comment, err := h.repo.GetCommentByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}
	if !h.allowSelfOr(c, comment.UserID, RoleModerator) {
		return
	}
	if comment.Deleted() {
		AlreadyDeleted(c)
		return
	}

	if err := h.repo.SoftDeleteComment(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			AlreadyDeleted(c)
			return
		}
		logrus.WithError(err).WithField("comment_id", id).Error("failed to delete comment")
		InternalError(c)
		return
	}

	updated, err := h.repo.GetCommentByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, updated)
}
