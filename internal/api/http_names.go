package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shelfmark/internal/entity"
)

// CreateName attaches an alternative title to a book.
func (h *HTTPHandler) CreateName(c *gin.Context) {
	var req entity.NameCreateRequest
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

	name := &entity.DbBookName{
		BookID: req.BookID,
		Name:   req.Name,
	}

	if err := h.repo.CreateName(ctx, name); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Titles are globally unique.
			SendError(c, http.StatusConflict, ErrRessourceAlreadyExists)
			return
		}
		logrus.WithError(err).WithField("book_id", req.BookID).Error("failed to create name")
		InternalError(c)
		return
	}

	SendValue(c, http.StatusCreated, name)
}

// ListNames returns the alternative titles of a book.
func (h *HTTPHandler) ListNames(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Query("bookId"), 10, 64)
	if err != nil || bookID == 0 {
		InvalidID(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	names, err := h.repo.ListNamesByBook(ctx, uint(bookID))
	if err != nil {
		logrus.WithError(err).WithField("book_id", bookID).Error("failed to list names")
		InternalError(c)
		return
	}

	SendList(c, names, nil)
}

// GetName returns a single alternative title row.
func (h *HTTPHandler) GetName(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	name, err := h.repo.GetNameByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, name)
}

// UpdateName corrects an alternative title or moves it to another book.
func (h *HTTPHandler) UpdateName(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.NameUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if _, err := h.repo.GetNameByID(ctx, id); err != nil {
		sendRepoError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.BookID != nil {
		if _, ok := h.fetchUsableBook(c, ctx, *req.BookID); !ok {
			return
		}
		updates["book_id"] = *req.BookID
	}
	if req.Name != nil {
		if *req.Name == "" {
			RequiredField(c)
			return
		}
		updates["name"] = *req.Name
	}

	if len(updates) > 0 {
		if err := h.repo.UpdateName(ctx, id, updates); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				SendError(c, http.StatusConflict, ErrRessourceAlreadyExists)
				return
			}
			logrus.WithError(err).WithField("name_id", id).Error("failed to update name")
			InternalError(c)
			return
		}
	}

	name, err := h.repo.GetNameByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, name)
}

// DeleteName removes an alternative title.
func (h *HTTPHandler) DeleteName(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if _, err := h.repo.GetNameByID(ctx, id); err != nil {
		sendRepoError(c, err)
		return
	}

	if err := h.repo.DeleteName(ctx, id); err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, gin.H{})
}
