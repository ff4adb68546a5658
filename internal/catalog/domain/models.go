// Package domain contains the product catalog models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Product is one SKU in a store owner's inventory. Monetary amounts are
// stored in integer minor units; tax rates in basis points.
type Product struct {
	ID            snowflake.ID      `gorm:"primaryKey"`
	UserID        snowflake.ID      `gorm:"column:user_id;not null;index:ux_products_user_barcode,priority:1"`
	Name          string            `gorm:"type:text;not null"`
	Barcode       string            `gorm:"type:text;not null;index:ux_products_user_barcode,priority:2,unique"`
	PriceMinor    int64             `gorm:"column:price_minor;not null"`
	Stock         int64             `gorm:"not null;default:0"`
	MinStockAlert int64             `gorm:"column:min_stock_alert;not null;default:10"`
	Category      *string           `gorm:"type:text"`
	ImageBase64   *string           `gorm:"column:image_base64;type:text"`
	GSTRateBP     int64             `gorm:"column:gst_rate_bp;not null;default:1800"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
