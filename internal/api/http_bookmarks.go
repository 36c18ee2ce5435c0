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

// CreateBookmark starts tracking a book for a user. A caller may only create
// bookmarks for themselves unless they hold moderator access. Each user keeps
// at most one bookmark per book, the unique index is the authority for races.
func (h *HTTPHandler) CreateBookmark(c *gin.Context) {
	var req entity.BookmarkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}
	if req.UserID == 0 || req.BookID == 0 {
		RequiredField(c)
		return
	}
	status := req.Status
	if status == "" {
		status = entity.BookmarkStatusReading
	}
	if !entity.ValidBookmarkStatus(status) {
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
	if req.ChapterID != nil {
		chapter, ok := h.fetchUsableChapter(c, ctx, *req.ChapterID)
		if !ok {
			return
		}
		if chapter.BookID != req.BookID {
			RequiredField(c)
			return
		}
	}

	now := time.Now().UTC()
	bookmark := &entity.DbUserBookmark{
		UserID:     req.UserID,
		BookID:     req.BookID,
		ChapterID:  req.ChapterID,
		Status:     status,
		LastReadAt: &now,
	}

	if err := h.repo.CreateBookmark(ctx, bookmark); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			SendError(c, http.StatusConflict, ErrRessourceAlreadyExists)
			return
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": req.UserID,
			"book_id": req.BookID,
		}).Error("failed to create bookmark")
		InternalError(c)
		return
	}

	SendValue(c, http.StatusCreated, bookmark)
}

// ListBookmarks returns bookmarks with filters and pagination. Callers may
// list their own, listing another user's requires moderator access.
func (h *HTTPHandler) ListBookmarks(c *gin.Context) {
	var query entity.BookmarkQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RequiredField(c)
		return
	}
	if query.UserID == 0 {
		// Listing across all users is a moderation view.
		if !h.allowSelfOr(c, 0, RoleModerator) {
			return
		}
	} else if !h.allowSelfOr(c, query.UserID, RoleModerator) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	bookmarks, meta, err := h.repo.ListBookmarks(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list bookmarks")
		InternalError(c)
		return
	}

	SendList(c, bookmarks, meta)
}

// GetBookmark returns one bookmark. Callers may read their own, reading
// another user's requires moderator access.
func (h *HTTPHandler) GetBookmark(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	bookmark, err := h.repo.GetBookmarkByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}
	if !h.allowSelfOr(c, bookmark.UserID, RoleModerator) {
		return
	}

	SendValue(c, http.StatusOK, bookmark)
}

// UpdateBookmark moves the reading position or status. Progress updates also
// refresh the last-read timestamp.
func (h *HTTPHandler) UpdateBookmark(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.BookmarkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RequiredField(c)
		return
	}
	if req.Status != nil && !entity.ValidBookmarkStatus(*req.Status) {
		RequiredField(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	bookmark, err := h.repo.GetBookmarkByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}
	if bookmark.Deleted() {
		Deleted(c)
		return
	}
	if !h.allowSelfOr(c, bookmark.UserID, RoleModerator) {
		return
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{"modified_at": now}
	if req.ChapterID != nil {
		chapter, ok := h.fetchUsableChapter(c, ctx, *req.ChapterID)
		if !ok {
			return
		}
		if chapter.BookID != bookmark.BookID {
			RequiredField(c)
			return
		}
		updates["chapter_id"] = *req.ChapterID
		updates["last_read_at"] = now
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if err := h.repo.UpdateBookmark(ctx, bookmark.ID, updates); err != nil {
		logrus.WithError(err).WithField("bookmark_id", bookmark.ID).Error("failed to update bookmark")
		InternalError(c)
		return
	}

	updated, err := h.repo.GetBookmarkByID(ctx, bookmark.ID)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, updated)
}

// DeleteBookmark soft-deletes a bookmark.
func (h *HTTPHandler) DeleteBookmark(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	bookmark, err := h.repo.GetBookmarkByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}
	if !h.allowSelfOr(c, bookmark.UserID, RoleModerator) {
		return
	}
	if bookmark.Deleted() {
		AlreadyDeleted(c)
		return
	}

	if err := h.repo.SoftDeleteBookmark(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			AlreadyDeleted(c)
			return
		}
		logrus.WithError(err).WithField("bookmark_id", id).Error("failed to delete bookmark")
		InternalError(c)
		return
	}

	updated, err := h.repo.GetBookmarkByID(ctx, id)
	if err != nil {
		sendRepoError(c, err)
		return
	}

	SendValue(c, http.StatusOK, updated)
}
