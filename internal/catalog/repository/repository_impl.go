package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tillpoint/internal/catalog/domain"
	"github.com/smallbiznis/tillpoint/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindByBarcode(ctx context.Context, db *gorm.DB, userID snowflake.ID, barcode string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Where("user_id = ? AND barcode = ?", userID, barcode).
		First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter domain.ListFilter) ([]domain.Product, error) {
	var items []domain.Product
	stmt := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("user_id = ?", userID)

	if search := strings.TrimSpace(filter.Search); search != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	stmt = option.Apply(stmt,
		option.WithSortBy("created_at", "asc", map[string]bool{"created_at": true}),
		option.WithSkipLimit(filter.Skip, filter.Limit),
	)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) LowStock(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("user_id = ? AND stock <= min_stock_alert", userID).
		Order("stock ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET name = ?, barcode = ?, price_minor = ?, stock = ?, min_stock_alert = ?,
		     category = ?, image_base64 = ?, gst_rate_bp = ?, updated_at = ?
		 WHERE user_id = ? AND id = ?`,
		product.Name,
		product.Barcode,
		product.PriceMinor,
		product.Stock,
		product.MinStockAlert,
		product.Category,
		product.ImageBase64,
		product.GSTRateBP,
		product.UpdatedAt,
		product.UserID,
		product.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error {
	result := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&domain.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) DeductStock(ctx context.Context, db *gorm.DB, userID, id snowflake.ID, quantity int64) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE products SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND id = ? AND stock >= ?`,
		quantity, userID, id, quantity,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		existing, err := r.FindByID(ctx, db, userID, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}
