package sql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shelfmark/internal/entity"
)

// CreateBookmark persists a new bookmark. The database enforces one bookmark
// per user and book pair.
func (r *GormRepository) CreateBookmark(ctx context.Context, bookmark *entity.DbUserBookmark) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if bookmark == nil {
		return fmt.Errorf("bookmark is nil")
	}
	return r.db.WithContext(ctx).Create(bookmark).Error
}

// GetBookmarkByID loads a bookmark by ID, soft-deleted rows included.
func (r *GormRepository) GetBookmarkByID(ctx context.Context, id uint) (*entity.DbUserBookmark, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid bookmark id")
	}
	var bookmark entity.DbUserBookmark
	if err := r.db.WithContext(ctx).First(&bookmark, id).Error; err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// ListBookmarks returns paginated bookmarks matching the filters, soft-deleted
// rows excluded.
func (r *GormRepository) ListBookmarks(ctx context.Context, params *entity.BookmarkQuery) ([]entity.DbUserBookmark, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbUserBookmark{}).Where("deleted_at IS NULL")
	if params != nil {
		if params.UserID != 0 {
			query = query.Where("user_id = ?", params.UserID)
		}
		if params.BookID != 0 {
			query = query.Where("book_id = ?", params.BookID)
		}
		if params.Status != "" {
			query = query.Where("status = ?", params.Status)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var base *entity.BaseParams
	if params != nil {
		base = &params.BaseParams
	}
	page, pageSize, offset := pageWindow(base)

	var bookmarks []entity.DbUserBookmark
	if err := query.Order(orderClause(base, bookmarkSortColumns)).Offset(offset).Limit(pageSize).Find(&bookmarks).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return bookmarks, meta, nil
}

// bookmarkSortColumns whitelists the sortable bookmark columns.
var bookmarkSortColumns = map[string]string{
	"user_id":      "user_id",
	"book_id":      "book_id",
	"chapter_id":   "chapter_id",
	"status":       "status",
	"last_read_at": "last_read_at",
	"created_at":   "created_at",
	"modified_at":  "modified_at",
}

// UpdateBookmark applies column updates to a bookmark.
func (r *GormRepository) UpdateBookmark(ctx context.Context, id uint, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid bookmark id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbUserBookmark{}).Where("id = ?", id).Updates(updates).Error
}

// SoftDeleteBookmark marks the bookmark deleted without removing the row.
func (r *GormRepository) SoftDeleteBookmark(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid bookmark id")
	}
	result := r.db.WithContext(ctx).Model(&entity.DbUserBookmark{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now().UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateComment persists a new comment.
func (r *GormRepository) CreateComment(ctx context.Context, comment *entity.DbUserComment) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if comment == nil {
		return fmt.Errorf("comment is nil")
	}
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetCommentByID loads a comment by ID, soft-deleted rows included.
func (r *GormRepository) GetCommentByID(ctx context.Context, id uint) (*entity.DbUserComment, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid comment id")
	}
	var comment entity.DbUserComment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments returns paginated comments matching the filters, soft-deleted
// rows excluded.
func (r *GormRepository) ListComments(ctx context.Context, params *entity.CommentQuery) ([]entity.DbUserComment, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbUserComment{}).Where("deleted_at IS NULL")
	if params != nil {
		if params.UserID != 0 {
			query = query.Where("user_id = ?", params.UserID)
		}
		if params.BookID != 0 {
			query = query.Where("book_id = ?", params.BookID)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var base *entity.BaseParams
	if params != nil {
		base = &params.BaseParams
	}
	page, pageSize, offset := pageWindow(base)

	var comments []entity.DbUserComment
	if err := query.Order(orderClause(base, commentSortColumns)).Offset(offset).Limit(pageSize).Find(&comments).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return comments, meta, nil
}

// commentSortColumns whitelists the sortable comment columns. "like" is a
// reserved word in most dialects, quoting is handled by the clause builder.
var commentSortColumns = map[string]string{
	"user_id":     "user_id",
	"book_id":     "book_id",
	"like":        "like",
	"highlighted": "highlighted",
	"hidden":      "hidden",
	"created_at":  "created_at",
	"modified_at": "modified_at",
}

// UpdateComment applies column updates to a comment.
func (r *GormRepository) UpdateComment(ctx context.Context, id uint, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid comment id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbUserComment{}).Where("id = ?", id).Updates(updates).Error
}

// SoftDeleteComment marks the comment deleted without removing the row.
func (r *GormRepository) SoftDeleteComment(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid comment id")
	}
	result := r.db.WithContext(ctx).Model(&entity.DbUserComment{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now().UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateExcludedTag persists a new excluded-tag row.
func (r *GormRepository) CreateExcludedTag(ctx context.Context, excluded *entity.DbUserExcludedTag) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if excluded == nil {
		return fmt.Errorf("excluded tag is nil")
	}
	return r.db.WithContext(ctx).Create(excluded).Error
}

// GetExcludedTagByID loads an excluded-tag row by ID.
func (r *GormRepository) GetExcludedTagByID(ctx context.Context, id uint) (*entity.DbUserExcludedTag, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid excluded tag id")
	}
	var excluded entity.DbUserExcludedTag
	if err := r.db.WithContext(ctx).First(&excluded, id).Error; err != nil {
		return nil, err
	}
	return &excluded, nil
}

// ListExcludedTagsByUser returns the tags a user excludes from browsing.
func (r *GormRepository) ListExcludedTagsByUser(ctx context.Context, userID uint) ([]entity.DbUserExcludedTag, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	var excluded []entity.DbUserExcludedTag
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&excluded).Error; err != nil {
		return nil, err
	}
	return excluded, nil
}

// UpdateExcludedTag applies column updates to an excluded-tag row.
func (r *GormRepository) UpdateExcludedTag(ctx context.Context, id uint, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid excluded tag id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbUserExcludedTag{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteExcludedTag removes an excluded-tag row.
func (r *GormRepository) DeleteExcludedTag(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid excluded tag id")
	}
	result := r.db.WithContext(ctx).Delete(&entity.DbUserExcludedTag{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
