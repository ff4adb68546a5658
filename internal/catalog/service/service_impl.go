package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tillpoint/internal/cart"
	"github.com/smallbiznis/tillpoint/internal/catalog/domain"
	"github.com/smallbiznis/tillpoint/internal/usercontext"
	"github.com/smallbiznis/tillpoint/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultMinStockAlert = 10

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	barcode := strings.TrimSpace(req.Barcode)
	if barcode == "" {
		return nil, domain.ErrInvalidBarcode
	}
	if req.Price <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	if req.Stock < 0 {
		return nil, domain.ErrInvalidStock
	}

	gstRate := 18.0
	if req.GSTRate != nil {
		gstRate = *req.GSTRate
	}
	if gstRate < 0 || gstRate > 100 {
		return nil, domain.ErrInvalidGSTRate
	}

	minStockAlert := int64(defaultMinStockAlert)
	if req.MinStockAlert != nil {
		if *req.MinStockAlert < 0 {
			return nil, domain.ErrInvalidStock
		}
		minStockAlert = *req.MinStockAlert
	}

	existing, err := s.repo.FindByBarcode(ctx, s.db, userID, barcode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrBarcodeExists
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:            s.genID.Generate(),
		UserID:        userID,
		Name:          name,
		Barcode:       barcode,
		PriceMinor:    int64(cart.MoneyFromDecimal(req.Price)),
		Stock:         req.Stock,
		MinStockAlert: minStockAlert,
		Category:      trimPtr(req.Category),
		ImageBase64:   req.ImageBase64,
		GSTRateBP:     cart.BasisPointsFromPercent(gstRate),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Create(ctx, s.db, p); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrBarcodeExists
		}
		return nil, err
	}

	s.log.Info("product created",
		zap.String("product_id", p.ID.String()),
		zap.String("barcode", p.Barcode),
	)
	resp := toResponse(p)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	limit := req.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	skip := req.Skip
	if skip < 0 {
		skip = 0
	}

	items, err := s.repo.List(ctx, s.db, userID, domain.ListFilter{
		Search: strings.TrimSpace(req.Search),
		Skip:   skip,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) GetByBarcode(ctx context.Context, barcode string) (*domain.Response, error) {
	item, err := s.findByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Response, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Barcode != nil {
		barcode := strings.TrimSpace(*req.Barcode)
		if barcode == "" {
			return nil, domain.ErrInvalidBarcode
		}
		if barcode != item.Barcode {
			existing, err := s.repo.FindByBarcode(ctx, s.db, userID, barcode)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, domain.ErrBarcodeExists
			}
			item.Barcode = barcode
		}
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, domain.ErrInvalidPrice
		}
		item.PriceMinor = int64(cart.MoneyFromDecimal(*req.Price))
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, domain.ErrInvalidStock
		}
		item.Stock = *req.Stock
	}
	if req.MinStockAlert != nil {
		if *req.MinStockAlert < 0 {
			return nil, domain.ErrInvalidStock
		}
		item.MinStockAlert = *req.MinStockAlert
	}
	if req.Category != nil {
		item.Category = trimPtr(req.Category)
	}
	if req.ImageBase64 != nil {
		item.ImageBase64 = req.ImageBase64
	}
	if req.GSTRate != nil {
		if *req.GSTRate < 0 || *req.GSTRate > 100 {
			return nil, domain.ErrInvalidGSTRate
		}
		item.GSTRateBP = cart.BasisPointsFromPercent(*req.GSTRate)
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return domain.ErrInvalidUser
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	return s.repo.Delete(ctx, s.db, userID, productID)
}

func (s *Service) LowStock(ctx context.Context) ([]domain.Response, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	items, err := s.repo.LowStock(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Snapshot(ctx context.Context, id string) (*cart.Snapshot, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSnapshot(item), nil
}

func (s *Service) SnapshotByBarcode(ctx context.Context, barcode string) (*cart.Snapshot, error) {
	item, err := s.findByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	return toSnapshot(item), nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Product, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, userID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) findByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, domain.ErrInvalidBarcode
	}

	item, err := s.repo.FindByBarcode(ctx, s.db, userID, barcode)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func toResponse(p *domain.Product) domain.Response {
	return domain.Response{
		ID:            p.ID.String(),
		UserID:        p.UserID.String(),
		Name:          p.Name,
		Barcode:       p.Barcode,
		Price:         cart.Money(p.PriceMinor).Decimal(),
		Stock:         p.Stock,
		MinStockAlert: p.MinStockAlert,
		Category:      p.Category,
		ImageBase64:   p.ImageBase64,
		GSTRate:       cart.PercentFromBasisPoints(p.GSTRateBP),
		Metadata:      p.Metadata,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toSnapshot(p *domain.Product) *cart.Snapshot {
	return &cart.Snapshot{
		ProductID: p.ID.String(),
		Name:      p.Name,
		Barcode:   p.Barcode,
		UnitPrice: cart.Money(p.PriceMinor),
		TaxRateBP: p.GSTRateBP,
		Stock:     p.Stock,
	}
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
