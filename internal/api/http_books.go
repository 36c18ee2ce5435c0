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

// CreateBook registers a new book.
func (h *HTTPHandler) CreateBook(c *gin.Context) {
	var req entity.BookCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}
	if req.Type == "" || req.Synopsis == "" || req.PublicationStatus == "" || req.ChaptersAvailable == nil {
		RequiredField(c)
		return
	}
	if !entity.ValidBookType(req.Type) {
		RequiredField(c)
		return
	}

	book := &entity.DbBook{
		Type:              req.Type,
		Score:             req.Score,
		Synopsis:          req.Synopsis,
		PublicationStatus: req.PublicationStatus,
		ChaptersAvailable: *req.ChaptersAvailable,
	}
	if req.Hidden != nil {
		book.Hidden = *req.Hidden
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if err := h.repo.CreateBook(ctx, book); err != nil {
		logrus.WithError(err).Error("failed to create book")
		InternalError(c)
		return
	}

	SendValue(c, http.StatusCreated, book)
}

// ListBooks returns books matching the query filters.
func (h *HTTPHandler) ListBooks(c *gin.Context) {
	var query entity.BookQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	books, meta, err := h.repo.ListBooks(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list books")
		InternalError(c)
		return
	}

	SendList(c, books, meta)
}

// GetBook returns a single book row, soft-deleted included.
func (h *HTTPHandler) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	book, err := h.repo.GetBookByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, book)
}

// UpdateBook applies a partial update to a non-deleted book.
func (h *HTTPHandler) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.BookUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}
	if req.Type != nil && !entity.ValidBookType(*req.Type) {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	book, ok := h.fetchUsableBook(c, ctx, id)
	if !ok {
		return
	}

	updates := map[string]interface{}{"modified_at": time.Now().UTC()}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Score != nil {
		updates["score"] = *req.Score
	}
	if req.Synopsis != nil {
		updates["synopsis"] = *req.Synopsis
	}
	if req.PublicationStatus != nil {
		updates["publication_status"] = *req.PublicationStatus
	}
	if req.ChaptersAvailable != nil {
		updates["chapters_available"] = *req.ChaptersAvailable
	}
	if req.Hidden != nil {
		updates["hidden"] = *req.Hidden
	}

	if err := h.repo.UpdateBook(ctx, book.ID, updates); err != nil {
		logrus.WithError(err).WithField("book_id", book.ID).Error("failed to update book")
		InternalError(c)
		return
	}

	updated, err := h.repo.GetBookByID(ctx, book.ID)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, updated)
}

// DeleteBook soft-deletes a book.
func (h *HTTPHandler) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	book, err := h.repo.GetBookByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}
	if book.Deleted() {
		AlreadyDeleted(c)
		return
	}

	if err := h.repo.SoftDeleteBook(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost the race against a concurrent delete.
			AlreadyDeleted(c)
			return
		}
		logrus.WithError(err).WithField("book_id", id).Error("failed to delete book")
		InternalError(c)
		return
	}

	updated, err := h.repo.GetBookByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, updated)
}
