// Package scope holds reusable gorm scopes.
package scope

import (
	"go-leave/internal/shared/request"

	"gorm.io/gorm"
)

// OwnedBy restricts rows to the given user_id. An empty id leaves the query
// unscoped.
func OwnedBy(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if userID == "" {
			return db
		}
		return db.Where("user_id = ?", userID)
	}
}

// WithStatus filters on status when one is given.
func WithStatus(status string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}
}

func Paginate(page request.Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(page.Offset()).Limit(page.Limit)
	}
}
