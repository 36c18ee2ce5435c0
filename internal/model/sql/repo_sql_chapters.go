package sql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shelfmark/internal/entity"
)

// CreateChapter persists a new chapter record.
func (r *GormRepository) CreateChapter(ctx context.Context, chapter *entity.DbBookChapter) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if chapter == nil {
		return fmt.Errorf("chapter is nil")
	}
	return r.db.WithContext(ctx).Create(chapter).Error
}

// GetChapterByID loads a chapter by ID, soft-deleted rows included.
func (r *GormRepository) GetChapterByID(ctx context.Context, id uint) (*entity.DbBookChapter, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid chapter id")
	}
	var chapter entity.DbBookChapter
	if err := r.db.WithContext(ctx).First(&chapter, id).Error; err != nil {
		return nil, err
	}
	return &chapter, nil
}

// ListChaptersByBook returns non-deleted chapters of a book ordered by number.
func (r *GormRepository) ListChaptersByBook(ctx context.Context, bookID uint) ([]entity.DbBookChapter, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if bookID == 0 {
		return nil, fmt.Errorf("invalid book id")
	}
	var chapters []entity.DbBookChapter
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND deleted_at IS NULL", bookID).
		Order("number ASC").
		Find(&chapters).Error
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

// UpdateChapter applies column updates to an existing chapter.
func (r *GormRepository) UpdateChapter(ctx context.Context, id uint, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid chapter id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbBookChapter{}).Where("id = ?", id).Updates(updates).Error
}

// SoftDeleteChapter marks the chapter deleted without removing the row.
func (r *GormRepository) SoftDeleteChapter(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid chapter id")
	}
	result := r.db.WithContext(ctx).Model(&entity.DbBookChapter{}).
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
