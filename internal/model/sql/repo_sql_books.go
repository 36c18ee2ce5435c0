package sql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"shelfmark/internal/entity"
)

// CreateBook persists a new book record.
func (r *GormRepository) CreateBook(ctx context.Context, book *entity.DbBook) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if book == nil {
		return fmt.Errorf("book is nil")
	}
	return r.db.WithContext(ctx).Create(book).Error
}

// GetBookByID loads a book by ID, soft-deleted rows included.
func (r *GormRepository) GetBookByID(ctx context.Context, id uint) (*entity.DbBook, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid book id")
	}
	var book entity.DbBook
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks returns paginated books matching the filters.
func (r *GormRepository) ListBooks(ctx context.Context, params *entity.BookQuery) ([]entity.DbBook, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbBook{})
	if params != nil {
		if trimmed := strings.TrimSpace(params.Type); trimmed != "" {
			query = query.Where("type = ?", trimmed)
		}
		if trimmed := strings.TrimSpace(params.PublicationStatus); trimmed != "" {
			query = query.Where("publication_status = ?", trimmed)
		}
		if !params.IncludeHidden {
			query = query.Where("hidden = ?", false)
		}
		if !params.IncludeDeleted {
			query = query.Where("deleted_at IS NULL")
		}
	} else {
		query = query.Where("hidden = ?", false).Where("deleted_at IS NULL")
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

	var books []entity.DbBook
	if err := query.Order(orderClause(base, bookSortColumns)).Offset(offset).Limit(pageSize).Find(&books).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return books, meta, nil
}

// bookSortColumns whitelists the sortable book columns.
var bookSortColumns = map[string]string{
	"type":               "type",
	"score":              "score",
	"publication_status": "publication_status",
	"chapters_available": "chapters_available",
	"created_at":         "created_at",
	"modified_at":        "modified_at",
}

// UpdateBook applies column updates to an existing book.
func (r *GormRepository) UpdateBook(ctx context.Context, id uint, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid book id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbBook{}).Where("id = ?", id).Updates(updates).Error
}

// SoftDeleteBook marks the book deleted without removing the row.
func (r *GormRepository) SoftDeleteBook(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid book id")
	}
	result := r.db.WithContext(ctx).Model(&entity.DbBook{}).
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
