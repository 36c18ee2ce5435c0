package sql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"shelfmark/internal/entity"
)

// CreatePermission persists a permission row for an existing user.
func (r *GormRepository) CreatePermission(ctx context.Context, permission *entity.DbUserPermission) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if permission == nil {
		return fmt.Errorf("permission is nil")
	}
	return r.db.WithContext(ctx).Create(permission).Error
}

// GetPermissionByID loads a permission row by its own ID.
func (r *GormRepository) GetPermissionByID(ctx context.Context, id uint) (*entity.DbUserPermission, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid permission id")
	}
	var permission entity.DbUserPermission
	if err := r.db.WithContext(ctx).First(&permission, id).Error; err != nil {
		return nil, err
	}
	return &permission, nil
}

// GetPermissionByUserID loads the permission row owned by the given user.
func (r *GormRepository) GetPermissionByUserID(ctx context.Context, userID uint) (*entity.DbUserPermission, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	var permission entity.DbUserPermission
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&permission).Error; err != nil {
		return nil, err
	}
	return &permission, nil
}

// UpdatePermission applies column updates to a permission row.
func (r *GormRepository) UpdatePermission(ctx context.Context, id uint, updates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid permission id")
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbUserPermission{}).Where("id = ?", id).Updates(updates).Error
}

// DeletePermission removes a permission row. Permissions carry no deletion
// timestamp, removal is physical.
func (r *GormRepository) DeletePermission(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid permission id")
	}
	result := r.db.WithContext(ctx).Delete(&entity.DbUserPermission{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
