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

// accountTimeout is wider than dbTimeout: registration and login pay for a
// deliberately slow key derivation on top of the database round trips.
const accountTimeout = 15 * time.Second

// parseIDParam reads the numeric :id path parameter. On failure the invalid-id
// rejection is already written and ok is false.
func parseIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		InvalidID(c)
		return 0, false
	}
	return uint(id), true
}

// fetchUsableUser loads a referenced user and rejects the request when the
// row is missing (404) or soft-deleted (410).
func (h *HTTPHandler) fetchUsableUser(c *gin.Context, ctx context.Context, id uint) (*entity.DbUser, bool) {
	user, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c)
		} else {
			logrus.WithError(err).WithField("user_id", id).Error("failed to load user")
			InternalError(c)
		}
		return nil, false
	}
	if user.Deleted() {
		Deleted(c)
		return nil, false
	}
	return user, true
}

// fetchUsableBook loads a referenced book and rejects the request when the
// row is missing or soft-deleted.
func (h *HTTPHandler) fetchUsableBook(c *gin.Context, ctx context.Context, id uint) (*entity.DbBook, bool) {
	book, err := h.repo.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c)
		} else {
			logrus.WithError(err).WithField("book_id", id).Error("failed to load book")
			InternalError(c)
		}
		return nil, false
	}
	if book.Deleted() {
		Deleted(c)
		return nil, false
	}
	return book, true
}

// fetchUsableChapter loads a referenced chapter and rejects the request when
// the row is missing or soft-deleted.
func (h *HTTPHandler) fetchUsableChapter(c *gin.Context, ctx context.Context, id uint) (*entity.DbBookChapter, bool) {
	chapter, err := h.repo.GetChapterByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c)
		} else {
			logrus.WithError(err).WithField("chapter_id", id).Error("failed to load chapter")
			InternalError(c)
		}
		return nil, false
	}
	if chapter.Deleted() {
		Deleted(c)
		return nil, false
	}
	return chapter, true
}

// fetchUsableTag loads a referenced tag and rejects the request when the row
// is missing or soft-deleted.
func (h *HTTPHandler) fetchUsableTag(c *gin.Context, ctx context.Context, id uint) (*entity.DbBookTag, bool) {
	tag, err := h.repo.GetTagByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c)
		} else {
			logrus.WithError(err).WithField("tag_id", id).Error("failed to load tag")
			InternalError(c)
		}
		return nil, false
	}
	if tag.Deleted() {
		Deleted(c)
		return nil, false
	}
	return tag, true
}

// sendRepoError maps a read failure on a direct target row: missing rows are
// 404, everything else is internal.
func sendRepoError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c)
		return
	}
	logrus.WithError(err).Error("repository failure")
	InternalError(c)
}

// listEnvelope wraps list payloads together with pagination metadata.
type listEnvelope struct {
	Items any          `json:"items"`
	Meta  *entity.Meta `json:"meta,omitempty"`
}

// SendList writes a success envelope for a paginated collection.
func SendList(c *gin.Context, items any, meta *entity.Meta) {
	SendValue(c, http.StatusOK, listEnvelope{Items: items, Meta: meta})
}
