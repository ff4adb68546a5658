// Package domain contains core types for the billing service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Bill is a finalized sale. Amounts are stored in integer minor units;
// line items are immutable once the bill is written.
type Bill struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	UserID          snowflake.ID `gorm:"column:user_id;not null;index:idx_bills_user_created"`
	BillNumber      string       `gorm:"column:bill_number;type:text;not null;uniqueIndex"`
	CustomerName    *string      `gorm:"column:customer_name;type:text"`
	PaymentMethod   string       `gorm:"column:payment_method;type:text;not null"`
	SubtotalMinor   int64        `gorm:"column:subtotal_minor;not null"`
	TaxTotalMinor   int64        `gorm:"column:tax_total_minor;not null"`
	GrandTotalMinor int64        `gorm:"column:grand_total_minor;not null"`
	CreatedAt       time.Time    `gorm:"column:created_at;not null;index:idx_bills_user_created"`

	Items []BillItem `gorm:"foreignKey:BillID"`
}

// TableName sets the database table name.
func (Bill) TableName() string { return "bills" }

// BillItem is one line on a bill, frozen at checkout time.
type BillItem struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	BillID         snowflake.ID `gorm:"column:bill_id;not null;index"`
	ProductID      snowflake.ID `gorm:"column:product_id;not null"`
	ProductName    string       `gorm:"column:product_name;type:text;not null"`
	Barcode        string       `gorm:"column:barcode;type:text;not null"`
	Quantity       int64        `gorm:"column:quantity;not null"`
	UnitPriceMinor int64        `gorm:"column:unit_price_minor;not null"`
	TaxRateBP      int64        `gorm:"column:gst_rate_bp;not null"`
	ItemTotalMinor int64        `gorm:"column:item_total_minor;not null"`
	TaxAmountMinor int64        `gorm:"column:gst_amount_minor;not null"`
}

// TableName sets the database table name.
func (BillItem) TableName() string { return "bill_items" }

// SalesLog is the per-product audit trail of stock movement at checkout.
type SalesLog struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	UserID      snowflake.ID `gorm:"column:user_id;not null;index"`
	BillID      snowflake.ID `gorm:"column:bill_id;not null;index"`
	ProductID   snowflake.ID `gorm:"column:product_id;not null;index"`
	ProductName string       `gorm:"column:product_name;type:text;not null"`
	Quantity    int64        `gorm:"column:quantity;not null"`
	AmountMinor int64        `gorm:"column:amount_minor;not null"`
	CreatedAt   time.Time    `gorm:"column:created_at;not null"`
}

// TableName sets the database table name.
func (SalesLog) TableName() string { return "sales_logs" }
