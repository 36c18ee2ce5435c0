package sql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"shelfmark/internal/entity"
)

// CreateCover persists a new cover record.
func (r *GormRepository) CreateCover(ctx context.Context, cover *entity.DbBookCover) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if cover == nil {
		return fmt.Errorf("cover is nil")
	}
	return r.db.WithContext(ctx).Create(cover).Error
}

// GetCoverByID loads a cover by ID.
func (r *GormRepository) GetCoverByID(ctx context.Context, id uint) (*entity.DbBookCover, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid cover id")
	}
	var cover entity.DbBookCover
	if err := r.db.WithContext(ctx).First(&cover, id).Error; err != nil {
		return nil, err
	}
	return &cover, nil
}

// ListCoversByBook returns the covers attached to a book.
func (r *GormRepository) ListCoversByBook(ctx context.Context, bookID uint) ([]entity.DbBookCover, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if bookID == 0 {
		return nil, fmt.Errorf("invalid book id")
	}
	var covers []entity.DbBookCover
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Find(&covers).Error; err != nil {
		return nil, err
	}
	return covers, nil
}

// UpdateCover applies column updates to a cover row.
func (r *GormRepository) UpdateCover(ctx context.Context, id uint, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid cover id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbBookCover{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteCover removes a cover row. Covers carry no deletion timestamp.
func (r *GormRepository) DeleteCover(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid cover id")
	}
	result := r.db.WithContext(ctx).Delete(&entity.DbBookCover{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateName persists a new alternative name.
func (r *GormRepository) CreateName(ctx context.Context, name *entity.DbBookName) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if name == nil {
		return fmt.Errorf("name is nil")
	}
	return r.db.WithContext(ctx).Create(name).Error
}

// GetNameByID loads an alternative name by ID.
func (r *GormRepository) GetNameByID(ctx context.Context, id uint) (*entity.DbBookName, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid name id")
	}
	var name entity.DbBookName
	if err := r.db.WithContext(ctx).First(&name, id).Error; err != nil {
		return nil, err
	}
	return &name, nil
}

// ListNamesByBook returns a book's alternative names.
func (r *GormRepository) ListNamesByBook(ctx context.Context, bookID uint) ([]entity.DbBookName, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if bookID == 0 {
		return nil, fmt.Errorf("invalid book id")
	}
	var names []entity.DbBookName
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Find(&names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// UpdateName applies column updates to an alternative name row.
func (r *GormRepository) UpdateName(ctx context.Context, id uint, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid name id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbBookName{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteName removes an alternative name row.
func (r *GormRepository) DeleteName(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid name id")
	}
	result := r.db.WithContext(ctx).Delete(&entity.DbBookName{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
