// Package option provides composable gorm query modifiers.
package option

import (
	"strings"

	"gorm.io/gorm"
)

// Option mutates a gorm statement before execution.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type optionFunc func(stmt *gorm.DB) *gorm.DB

func (f optionFunc) Apply(stmt *gorm.DB) *gorm.DB { return f(stmt) }

// WithSkipLimit applies offset/limit pagination.
func WithSkipLimit(skip, limit int) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		if skip > 0 {
			stmt = stmt.Offset(skip)
		}
		if limit > 0 {
			stmt = stmt.Limit(limit)
		}
		return stmt
	})
}

// WithSortBy orders by a whitelisted column, newest-first by default.
func WithSortBy(sortBy, orderBy string, allowed map[string]bool) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		column := strings.TrimSpace(sortBy)
		if column == "" || !allowed[column] {
			column = "created_at"
		}
		direction := "DESC"
		if strings.EqualFold(strings.TrimSpace(orderBy), "asc") {
			direction = "ASC"
		}
		return stmt.Order(column + " " + direction)
	})
}

// Apply runs all options in order.
func Apply(stmt *gorm.DB, opts ...Option) *gorm.DB {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		stmt = opt.Apply(stmt)
	}
	return stmt
}
