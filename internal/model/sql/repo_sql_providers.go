package sql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shelfmark/internal/entity"
)

// CreateProvider persists a new provider record.
func (r *GormRepository) CreateProvider(ctx context.Context, provider *entity.DbBookProvider) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if provider == nil {
		return fmt.Errorf("provider is nil")
	}
	return r.db.WithContext(ctx).Create(provider).Error
}

// GetProviderByID loads a provider by ID.
func (r *GormRepository) GetProviderByID(ctx context.Context, id uint) (*entity.DbBookProvider, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid provider id")
	}
	var provider entity.DbBookProvider
	if err := r.db.WithContext(ctx).First(&provider, id).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

// ListProvidersByBook returns a book's reading providers.
func (r *GormRepository) ListProvidersByBook(ctx context.Context, bookID uint) ([]entity.DbBookProvider, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if bookID == 0 {
		return nil, fmt.Errorf("invalid book id")
	}
	var providers []entity.DbBookProvider
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

// UpdateProvider applies column updates to a provider.
func (r *GormRepository) UpdateProvider(ctx context.Context, id uint, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid provider id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbBookProvider{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteProvider removes a provider row.
func (r *GormRepository) DeleteProvider(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid provider id")
	}
	result := r.db.WithContext(ctx).Delete(&entity.DbBookProvider{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateTag persists a new tag record.
func (r *GormRepository) CreateTag(ctx context.Context, tag *entity.DbBookTag) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if tag == nil {
		return fmt.Errorf("tag is nil")
	}
	return r.db.WithContext(ctx).Create(tag).Error
}

// GetTagByID loads a tag by ID, soft-deleted rows included.
func (r *GormRepository) GetTagByID(ctx context.Context, id uint) (*entity.DbBookTag, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid tag id")
	}
	var tag entity.DbBookTag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// ListTagsByBook returns a book's non-deleted tags.
func (r *GormRepository) ListTagsByBook(ctx context.Context, bookID uint) ([]entity.DbBookTag, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if bookID == 0 {
		return nil, fmt.Errorf("invalid book id")
	}
	var tags []entity.DbBookTag
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND deleted_at IS NULL", bookID).
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// UpdateTag applies column updates to a tag.
func (r *GormRepository) UpdateTag(ctx context.Context, id uint, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid tag id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbBookTag{}).Where("id = ?", id).Updates(updates).Error
}

// SoftDeleteTag marks the tag deleted without removing the row.
func (r *GormRepository) SoftDeleteTag(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid tag id")
	}
	result := r.db.WithContext(ctx).Model(&entity.DbBookTag{}).
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
