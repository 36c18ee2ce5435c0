package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shelfmark/internal/entity"
	"shelfmark/internal/storage"
	"shelfmark/internal/utils"
)

// CreateCover attaches a cover to a book. The request either names an
// external image by link or embeds base64 image bytes, which are persisted
// through the configured storage backend and served by their public URL.
func (h *HTTPHandler) CreateCover(c *gin.Context) {
	var req entity.CoverCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}
	if req.BookID == 0 || (req.Link == "" && req.ImageData == "") {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if _, ok := h.fetchUsableBook(c, ctx, req.BookID); !ok {
		return
	}

	link := strings.TrimSpace(req.Link)
	if link == "" {
		stored, ok := h.storeCoverImage(c, req)
		if !ok {
			return
		}
		link = stored
	}

	cover := &entity.DbBookCover{
		BookID: req.BookID,
		Link:   link,
	}

	if err := h.repo.CreateCover(ctx, cover); err != nil {
		logrus.WithError(err).WithField("book_id", req.BookID).Error("failed to create cover")
		InternalError(c)
		return
	}

	SendValue(c, http.StatusCreated, cover)
}

// storeCoverImage decodes the embedded image and saves it to the storage
// backend, returning the public URL. Rejections are already written when
// ok is false.
func (h *HTTPHandler) storeCoverImage(c *gin.Context, req entity.CoverCreateRequest) (string, bool) {
	if h.storage == nil {
		InternalError(c)
		return "", false
	}

	// Accept a full data URL or bare base64, the extension comes from the
	// declared media type or the sniffed bytes.
	data, ext, err := utils.DecodeMediaPayload(req.ImageData)
	if err != nil {
		RequiredField(c)
		return "", false
	}
	if override := strings.TrimSpace(req.Extension); override != "" {
		ext = override
	}

	key, err := h.storage.Save(c.Request.Context(), data, storage.SaveOptions{
		Category:  "covers",
		Extension: ext,
		BaseName:  uuid.NewString(),
	})
	if err != nil {
		logrus.WithError(err).Error("failed to store cover image")
		InternalError(c)
		return "", false
	}
	return h.publicURL(key), true
}

// ListCovers returns the covers of a book.
func (h *HTTPHandler) ListCovers(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Query("bookId"), 10, 64)
	if err != nil || bookID == 0 {
		InvalidID(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	covers, err := h.repo.ListCoversByBook(ctx, uint(bookID))
	if err != nil {
		logrus.WithError(err).WithField("book_id", bookID).Error("failed to list covers")
		InternalError(c)
		return
	}

	SendList(c, covers, nil)
}

// GetCover returns a single cover row.
func (h *HTTPHandler) GetCover(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	cover, err := h.repo.GetCoverByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, cover)
}

// UpdateCover repoints a cover at another link or book.
func (h *HTTPHandler) UpdateCover(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.CoverUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if _, err := h.repo.GetCoverByID(ctx, id); err != nil {
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
	if req.Link != nil {
		if strings.TrimSpace(*req.Link) == "" {
			RequiredField(c)
			return
		}
		updates["link"] = strings.TrimSpace(*req.Link)
	}

	if len(updates) > 0 {
		if err := h.repo.UpdateCover(ctx, id, updates); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Links are globally unique.
				SendError(c, http.StatusConflict, ErrRessourceAlreadyExists)
				return
			}
			logrus.WithError(err).WithField("cover_id", id).Error("failed to update cover")
			InternalError(c)
			return
		}
	}

	cover, err := h.repo.GetCoverByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, cover)
}

// DeleteCover removes a cover.
func (h *HTTPHandler) DeleteCover(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if _, err := h.repo.GetCoverByID(ctx, id); err != nil {
		sendRepoError(c, err)
		return
	}

	if err := h.repo.DeleteCover(ctx, id); err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, gin.H{})
}
