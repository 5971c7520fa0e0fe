package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paginate applies offset/limit when a page size is provided.
func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page <= 0 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

// countAndFind counts the filtered rows before paginating and loading them.
// Preloads are applied after counting.
func countAndFind[T any](query *gorm.DB, page, pageSize int, order string, preloads ...string) ([]T, int64, error) {
	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, page, pageSize).Order(order)
	for _, association := range preloads {
		query = query.Preload(association)
	}

	var items []T
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// insert creates a row without touching its associations.
func insert(tx *gorm.DB, value interface{}) error {
	return tx.Omit(clause.Associations).Create(value).Error
}

// persist saves every column of a row without touching its associations.
func persist(tx *gorm.DB, value interface{}) error {
	return tx.Omit(clause.Associations).Save(value).Error
}
