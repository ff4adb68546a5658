// Package seed bootstraps a demo store so a fresh install is usable
// immediately.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/tillpoint/internal/auth/domain"
	"github.com/smallbiznis/tillpoint/internal/auth/password"
	catalogdomain "github.com/smallbiznis/tillpoint/internal/catalog/domain"
	"gorm.io/gorm"
)

const (
	demoEmail     = "demo@tillpoint.local"
	demoPassword  = "demo-store-1"
	demoStoreName = "Demo Store"
	demoStoreCode = "DEMO"
)

type demoProduct struct {
	name       string
	barcode    string
	priceMinor int64
	stock      int64
	gstRateBP  int64
}

var demoProducts = []demoProduct{
	{"Masala Tea 250g", "8901000000011", 12500, 40, 500},
	{"Basmati Rice 1kg", "8901000000028", 9900, 25, 500},
	{"Sunflower Oil 1L", "8901000000035", 17500, 30, 500},
	{"Toothpaste 100g", "8901000000042", 5500, 60, 1800},
	{"Dish Soap 500ml", "8901000000059", 7900, 8, 1800},
}

// EnsureDemoStore creates the demo owner and a small catalog. Running it
// again is a no-op once the owner exists.
func EnsureDemoStore(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing authdomain.User
		err := tx.Where("email = ?", demoEmail).First(&existing).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		hashed, err := password.Hash(demoPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		owner := &authdomain.User{
			ID:           node.Generate(),
			Email:        demoEmail,
			PasswordHash: hashed,
			StoreName:    demoStoreName,
			StoreCode:    demoStoreCode,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(owner).Error; err != nil {
			return err
		}

		for _, p := range demoProducts {
			product := &catalogdomain.Product{
				ID:            node.Generate(),
				UserID:        owner.ID,
				Name:          p.name,
				Barcode:       p.barcode,
				PriceMinor:    p.priceMinor,
				Stock:         p.stock,
				MinStockAlert: 10,
				GSTRateBP:     p.gstRateBP,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.Create(product).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
