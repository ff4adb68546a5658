package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows product listings.
type ListFilter struct {
	Search string
	Skip   int
	Limit  int
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Product, error)
	FindByBarcode(ctx context.Context, db *gorm.DB, userID snowflake.ID, barcode string) (*Product, error)
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter ListFilter) ([]Product, error)
	LowStock(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error

	// DeductStock atomically decrements stock, refusing to go below zero.
	// Returns ErrInsufficientStock when the decrement would overdraw and
	// ErrNotFound when the product does not exist for this owner.
	DeductStock(ctx context.Context, db *gorm.DB, userID, id snowflake.ID, quantity int64) error
}
