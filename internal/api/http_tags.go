package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shelfmark/internal/entity"
)

// CreateTag attaches a genre or descriptor to a book.
func (h *HTTPHandler) CreateTag(c *gin.Context) {
	var req entity.TagCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}
	if req.BookID == 0 || req.Name == "" {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if _, ok := h.fetchUsableBook(c, ctx, req.BookID); !ok {
		return
	}

	tag := &entity.DbBookTag{
		BookID: req.BookID,
		Name:   req.Name,
	}

	if err := h.repo.CreateTag(ctx, tag); err != nil {
		logrus.WithError(err).WithField("book_id", req.BookID).Error("failed to create tag")
		InternalError(c)
		return
	}

	SendValue(c, http.StatusCreated, tag)
}

// ListTags returns the live tags of a book.
func (h *HTTPHandler) ListTags(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Query("bookId"), 10, 64)
	if err != nil || bookID == 0 {
		InvalidID(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	tags, err := h.repo.ListTagsByBook(ctx, uint(bookID))
	if err != nil {
		logrus.WithError(err).WithField("book_id", bookID).Error("failed to list tags")
		InternalError(c)
		return
	}

	SendList(c, tags, nil)
}

// GetTag returns a single tag row.
func (h *HTTPHandler) GetTag(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	tag, err := h.repo.GetTagByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, tag)
}

// UpdateTag renames a tag.
func (h *HTTPHandler) UpdateTag(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.TagUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}
	if req.Name == nil || *req.Name == "" {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	tag, ok := h.fetchUsableTag(c, ctx, id)
	if !ok {
		return
	}

	updates := map[string]interface{}{
		"name":        *req.Name,
		"modified_at": time.Now().UTC(),
	}
	if err := h.repo.UpdateTag(ctx, tag.ID, updates); err != nil {
		logrus.WithError(err).WithField("tag_id", tag.ID).Error("failed to update tag")
		InternalError(c)
		return
	}

	updated, err := h.repo.GetTagByID(ctx, tag.ID)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, updated)
}

// DeleteTag soft-deletes a tag.
func (h *HTTPHandler) DeleteTag(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	tag, err := h.repo.GetTagByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}
	if tag.Deleted() {
		AlreadyDeleted(c)
		return
	}

	if err := h.repo.SoftDeleteTag(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			AlreadyDeleted(c)
			return
		}
		logrus.WithError(err).WithField("tag_id", id).Error("failed to delete tag")
		InternalError(c)
		return
	}

	updated, err := h.repo.GetTagByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, updated)
}
