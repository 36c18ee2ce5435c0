package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shelfmark/internal/entity"
)

// CreateProvider registers a reading site for a book.
func (h *HTTPHandler) CreateProvider(c *gin.Context) {
	var req entity.ProviderCreateRequest
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

	provider := &entity.DbBookProvider{
		BookID:  req.BookID,
		Name:    req.Name,
		Link:    req.Link,
		LinkAPI: req.LinkAPI,
	}

	if err := h.repo.CreateProvider(ctx, provider); err != nil {
		logrus.WithError(err).WithField("book_id", req.BookID).Error("failed to create provider")
		InternalError(c)
		return
	}

	SendValue(c, http.StatusCreated, provider)
}

// ListProviders returns every reading site recorded for a book.
func (h *HTTPHandler) ListProviders(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Query("bookId"), 10, 64)
	if err != nil || bookID == 0 {
		InvalidID(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	providers, err := h.repo.ListProvidersByBook(ctx, uint(bookID))
	if err != nil {
		logrus.WithError(err).WithField("book_id", bookID).Error("failed to list providers")
		InternalError(c)
		return
	}

	SendList(c, providers, nil)
}

// GetProvider returns a single provider row.
func (h *HTTPHandler) GetProvider(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	provider, err := h.repo.GetProviderByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, provider)
}

// UpdateProvider patches the name or links of a provider.
func (h *HTTPHandler) UpdateProvider(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.ProviderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if _, err := h.repo.GetProviderByID(ctx, id); err != nil {
		sendRepoError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			RequiredField(c)
			return
		}
		updates["name"] = *req.Name
	}
	if req.Link != nil {
		if *req.Link == "" {
			RequiredField(c)
			return
		}
		updates["link"] = *req.Link
	}
	if req.LinkAPI != nil {
		updates["link_api"] = *req.LinkAPI
	}

	if len(updates) > 0 {
		if err := h.repo.UpdateProvider(ctx, id, updates); err != nil {
			logrus.WithError(err).WithField("provider_id", id).Error("failed to update provider")
			InternalError(c)
			return
		}
	}

	provider, err := h.repo.GetProviderByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, provider)
}

// DeleteProvider removes a provider row for good.
func (h *HTTPHandler) DeleteProvider(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if _, err := h.repo.GetProviderByID(ctx, id); err != nil {
		sendRepoError(c, err)
		return
	}

	if err := h.repo.DeleteProvider(ctx, id); err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, gin.H{})
}
