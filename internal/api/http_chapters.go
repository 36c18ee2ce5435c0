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

// CreateChapter adds a chapter to an existing book.
func (h *HTTPHandler) CreateChapter(c *gin.Context) {
	var req entity.ChapterCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}
	if req.BookID == 0 || req.Name == "" || req.Link == "" {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if _, ok := h.fetchUsableBook(c, ctx, req.BookID); !ok {
		return
	}

	chapter := &entity.DbBookChapter{
		BookID: req.BookID,
		Name:   req.Name,
		Link:   req.Link,
	}
	if req.Number != nil {
		chapter.Number = *req.Number
	}

	if err := h.repo.CreateChapter(ctx, chapter); err != nil {
		logrus.WithError(err).WithField("book_id", req.BookID).Error("failed to create chapter")
		InternalError(c)
		return
	}

	SendValue(c, http.StatusCreated, chapter)
}

// ListChapters returns the non-deleted chapters of a book.
func (h *HTTPHandler) ListChapters(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Query("bookId"), 10, 64)
	if err != nil || bookID == 0 {
		InvalidID(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	chapters, err := h.repo.ListChaptersByBook(ctx, uint(bookID))
	if err != nil {
		logrus.WithError(err).WithField("book_id", bookID).Error("failed to list chapters")
		InternalError(c)
		return
	}

	SendList(c, chapters, nil)
}

// GetChapter returns a single chapter row.
func (h *HTTPHandler) GetChapter(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	chapter, err := h.repo.GetChapterByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, chapter)
}

// UpdateChapter applies a partial update to a non-deleted chapter.
func (h *HTTPHandler) UpdateChapter(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.ChapterUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	chapter, ok := h.fetchUsableChapter(c, ctx, id)
	if !ok {
		return
	}

	updates := map[string]interface{}{"modified_at": time.Now().UTC()}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Link != nil {
		updates["link"] = *req.Link
	}
	if req.Number != nil {
		updates["number"] = *req.Number
	}

	if err := h.repo.UpdateChapter(ctx, chapter.ID, updates); err != nil {
		logrus.WithError(err).WithField("chapter_id", chapter.ID).Error("failed to update chapter")
		InternalError(c)
		return
	}

	updated, err := h.repo.GetChapterByID(ctx, chapter.ID)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, updated)
}

// DeleteChapter soft-deletes a chapter.
func (h *HTTPHandler) DeleteChapter(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	chapter, err := h.repo.GetChapterByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}
	if chapter.Deleted() {
		AlreadyDeleted(c)
		return
	}

	if err := h.repo.SoftDeleteChapter(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			AlreadyDeleted(c)
			return
		}
		logrus.WithError(err).WithField("chapter_id", id).Error("failed to delete chapter")
		InternalError(c)
		return
	}

	updated, err := h.repo.GetChapterByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, updated)
}
