package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/tillpoint/internal/auth/domain"
	"github.com/smallbiznis/tillpoint/internal/billing/domain"
	"github.com/smallbiznis/tillpoint/internal/cart"
	catalogdomain "github.com/smallbiznis/tillpoint/internal/catalog/domain"
	"github.com/smallbiznis/tillpoint/internal/clock"
	"github.com/smallbiznis/tillpoint/internal/config"
	"github.com/smallbiznis/tillpoint/internal/observability/metrics"
	"github.com/smallbiznis/tillpoint/internal/providers/pdf"
	"github.com/smallbiznis/tillpoint/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	GenID       *snowflake.Node
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
	UserRepo    authdomain.Repository
	Settings    *config.StoreSettingsHolder
	PDF         pdf.Provider
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
	userRepo    authdomain.Repository
	settings    *config.StoreSettingsHolder
	pdf         pdf.Provider
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("billing.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
		userRepo:    p.UserRepo,
		settings:    p.Settings,
		pdf:         p.PDF,
		metrics:     p.Metrics,
	}
}

// Submit finalizes a checkout. Stock validation here is authoritative:
// the cart's snapshot view is advisory only, so every line is re-checked
// against live rows inside one transaction. Prices and tax rates are
// likewise re-read, never trusted from the request.
func (s *Service) Submit(ctx context.Context, req cart.CheckoutRequest) (*domain.Response, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, catalogdomain.ErrInvalidUser
	}

	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyBill
	}
	method, err := cart.ParsePaymentMethod(string(req.PaymentMethod))
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQty
		}
	}

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	bill := &domain.Bill{
		ID:            s.genID.Generate(),
		UserID:        userID,
		CustomerName:  trimPtr(req.CustomerName),
		PaymentMethod: string(method),
		CreatedAt:     now,
	}

	var deductedUnits int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reasons []cart.Violation
		products := make([]*catalogdomain.Product, 0, len(req.Items))
		for _, item := range req.Items {
			productID, parseErr := snowflake.ParseString(item.ProductID)
			if parseErr != nil {
				reasons = append(reasons, cart.Violation{
					Code:      cart.ViolationProductNotFound,
					ProductID: item.ProductID,
				})
				products = append(products, nil)
				continue
			}
			p, findErr := s.catalogRepo.FindByID(ctx, tx, userID, productID)
			if findErr != nil {
				return findErr
			}
			if p == nil {
				reasons = append(reasons, cart.Violation{
					Code:        cart.ViolationProductNotFound,
					ProductID:   item.ProductID,
					ProductName: item.ProductName,
				})
				products = append(products, nil)
				continue
			}
			if p.Stock < item.Quantity {
				reasons = append(reasons, cart.Violation{
					Code:           cart.ViolationInsufficientStock,
					ProductID:      item.ProductID,
					ProductName:    p.Name,
					Requested:      item.Quantity,
					AvailableStock: p.Stock,
				})
			}
			products = append(products, p)
		}
		if len(reasons) > 0 {
			return &domain.RejectedError{Reasons: reasons}
		}

		var subtotal, taxTotal cart.Money
		items := make([]domain.BillItem, 0, len(req.Items))
		logs := make([]domain.SalesLog, 0, len(req.Items))
		for i, item := range req.Items {
			p := products[i]
			if deductErr := s.catalogRepo.DeductStock(ctx, tx, userID, p.ID, item.Quantity); deductErr != nil {
				return deductErr
			}
			deductedUnits += item.Quantity

			itemTotal := cart.Money(p.PriceMinor) * cart.Money(item.Quantity)
			taxAmount := cart.TaxOf(itemTotal, p.GSTRateBP)
			subtotal += itemTotal
			taxTotal += taxAmount

			items = append(items, domain.BillItem{
				ID:             s.genID.Generate(),
				BillID:         bill.ID,
				ProductID:      p.ID,
				ProductName:    p.Name,
				Barcode:        p.Barcode,
				Quantity:       item.Quantity,
				UnitPriceMinor: p.PriceMinor,
				TaxRateBP:      p.GSTRateBP,
				ItemTotalMinor: int64(itemTotal),
				TaxAmountMinor: int64(taxAmount),
			})
			logs = append(logs, domain.SalesLog{
				ID:          s.genID.Generate(),
				UserID:      userID,
				BillID:      bill.ID,
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    item.Quantity,
				AmountMinor: int64(itemTotal),
				CreatedAt:   now,
			})
		}

		number, numberErr := s.nextBillNumber(ctx, tx, userID, user.StoreCode, now)
		if numberErr != nil {
			return numberErr
		}

		bill.BillNumber = number
		bill.SubtotalMinor = int64(subtotal)
		bill.TaxTotalMinor = int64(taxTotal)
		bill.GrandTotalMinor = int64(subtotal + taxTotal)
		bill.Items = items

		if createErr := s.repo.CreateBill(ctx, tx, bill); createErr != nil {
			return createErr
		}
		return s.repo.CreateSalesLogs(ctx, tx, logs)
	})
	if err != nil {
		if rejected, ok := err.(*domain.RejectedError); ok {
			s.metrics.RecordCheckoutRejected(ctx, string(rejected.Reasons[0].Code))
		}
		return nil, err
	}

	s.metrics.RecordBillCreated(ctx, bill.PaymentMethod, bill.GrandTotalMinor)
	s.metrics.RecordStockDeducted(ctx, deductedUnits)
	s.log.Info("bill created",
		zap.String("bill_id", bill.ID.String()),
		zap.String("bill_number", bill.BillNumber),
		zap.Int64("grand_total_minor", bill.GrandTotalMinor),
	)

	resp := toResponse(bill)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, catalogdomain.ErrInvalidUser
	}

	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	skip := req.Skip
	if skip < 0 {
		skip = 0
	}

	bills, err := s.repo.List(ctx, s.db, userID, domain.ListFilter{Skip: skip, Limit: limit})
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(bills))
	for i := range bills {
		resp = append(resp, toResponse(&bills[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	bill, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(bill)
	return &resp, nil
}

func (s *Service) Receipt(ctx context.Context, id string) (io.Reader, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, catalogdomain.ErrInvalidUser
	}

	bill, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	settings := s.settings.Current()
	symbol := settings.CurrencySymbol

	items := make([]pdf.ReceiptItem, 0, len(bill.Items))
	for _, item := range bill.Items {
		items = append(items, pdf.ReceiptItem{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: symbol + cart.Money(item.UnitPriceMinor).String(),
			GSTRate:   formatRate(item.TaxRateBP),
			Amount:    symbol + cart.Money(item.ItemTotalMinor).String(),
		})
	}

	data := pdf.ReceiptData{
		StoreName:    user.StoreName,
		StoreAddress: derefString(user.StoreAddress),
		BillNumber:   bill.BillNumber,
		Date:         bill.CreatedAt.Format("02 Jan 2006 15:04"),
		Payment:      bill.PaymentMethod,
		CustomerName: derefString(bill.CustomerName),
		Items:        items,
		Subtotal:     symbol + cart.Money(bill.SubtotalMinor).String(),
		TaxTotal:     symbol + cart.Money(bill.TaxTotalMinor).String(),
		GrandTotal:   symbol + cart.Money(bill.GrandTotalMinor).String(),
		FooterNote:   settings.ReceiptFooter,
	}

	return s.pdf.GenerateReceipt(ctx, data)
}

// nextBillNumber derives STORECODE-YYYYMMDD-NNN from the day's bill count.
// Runs inside the submit transaction so the count and insert agree.
func (s *Service) nextBillNumber(ctx context.Context, tx *gorm.DB, userID snowflake.ID, storeCode string, now time.Time) (string, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	count, err := s.repo.CountForRange(ctx, tx, userID, dayStart, dayEnd)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%03d", storeCode, now.Format("20060102"), count+1), nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Bill, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, catalogdomain.ErrInvalidUser
	}

	billID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	return s.repo.FindByID(ctx, s.db, userID, billID)
}

func toResponse(bill *domain.Bill) domain.Response {
	items := make([]domain.ItemResponse, 0, len(bill.Items))
	for _, item := range bill.Items {
		items = append(items, domain.ItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Barcode:     item.Barcode,
			Quantity:    item.Quantity,
			Price:       cart.Money(item.UnitPriceMinor).Decimal(),
			GSTRate:     cart.PercentFromBasisPoints(item.TaxRateBP),
			ItemTotal:   cart.Money(item.ItemTotalMinor).Decimal(),
			GSTAmount:   cart.Money(item.TaxAmountMinor).Decimal(),
		})
	}
	return domain.Response{
		ID:            bill.ID.String(),
		BillNumber:    bill.BillNumber,
		CustomerName:  bill.CustomerName,
		PaymentMethod: bill.PaymentMethod,
		Items:         items,
		Subtotal:      cart.Money(bill.SubtotalMinor).Decimal(),
		TaxTotal:      cart.Money(bill.TaxTotalMinor).Decimal(),
		GrandTotal:    cart.Money(bill.GrandTotalMinor).Decimal(),
		CreatedAt:     bill.CreatedAt,
	}
}

func formatRate(bp int64) string {
	return strconv.FormatFloat(cart.PercentFromBasisPoints(bp), 'f', -1, 64) + "%"
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func trimPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
