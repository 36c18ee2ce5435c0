package sql

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shelfmark/internal/entity"
)

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository instance
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// calculatePagination calculates pagination metrics
func (r *GormRepository) calculatePagination(totalCount int64, page, pageSize int) *entity.Meta {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}

	return &entity.Meta{
		Total:    totalCount,
		Page:     int64(page),
		PageSize: int64(pageSize),
	}
}

// orderClause resolves the requested sort into an ORDER BY clause. The sort
// key must appear in the per-resource whitelist, anything else falls back to
// newest first. Columns go through clause.Column so reserved words stay
// quoted per dialect.
func orderClause(params *entity.BaseParams, columns map[string]string) clause.OrderByColumn {
	if params != nil {
		key := strings.ToLower(strings.TrimSpace(params.SortBy))
		if column, ok := columns[key]; ok {
			return clause.OrderByColumn{
				Column: clause.Column{Name: column},
				Desc:   params.SortDesc,
			}
		}
	}
	return clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}
}

func pageWindow(params *entity.BaseParams) (page, pageSize, offset int) {
	page = 1
	pageSize = 20
	if params != nil {
		if params.Page > 0 {
			page = int(params.Page)
		}
		if params.PageSize > 0 {
			pageSize = int(params.PageSize)
		}
	}
	offset = (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	return page, pageSize, offset
}
