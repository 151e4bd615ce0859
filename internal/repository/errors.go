package repository

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFound reports whether err is GORM's record-not-found sentinel.
func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// IsDuplicate reports whether err is a translated unique-constraint violation.
func IsDuplicate(err error) bool { return errors.Is(err, gorm.ErrDuplicatedKey) }

// IsForeignKeyViolation reports whether err is a translated foreign-key failure.
func IsForeignKeyViolation(err error) bool { return errors.Is(err, gorm.ErrForeignKeyViolated) }

// activeScope applies the common "true" (default) | "false" | "all" filter.
func activeScope(q *gorm.DB, active string) *gorm.DB {
	switch active {
	case "false":
		return q.Where("is_active = ?", false)
	case "all":
		return q
	default:
		return q.Where("is_active = ?", true)
	}
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
