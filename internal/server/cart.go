package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tillpoint/internal/cart"
	"github.com/smallbiznis/tillpoint/internal/usercontext"
)

type CartItemView struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Barcode   string  `json:"barcode"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	GSTRate   float64 `json:"gst_rate"`
	ItemTotal float64 `json:"item_total"`
	GSTAmount float64 `json:"gst_amount"`
}

type CartView struct {
	Items      []CartItemView `json:"items"`
	Subtotal   float64        `json:"subtotal"`
	TaxTotal   float64        `json:"gst_total"`
	GrandTotal float64        `json:"grand_total"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Barcode   string `json:"barcode"`
}

type SetCartItemQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

type CheckoutCartRequest struct {
	PaymentMethod string `json:"payment_method"`
	CustomerName  string `json:"customer_name"`
}

func cartView(session *cart.Session) CartView {
	lines := session.Lines()
	view := CartView{Items: make([]CartItemView, 0, len(lines))}
	for _, line := range lines {
		itemTotal := line.UnitPrice * cart.Money(line.Quantity)
		view.Items = append(view.Items, CartItemView{
			ProductID: line.ProductID,
			Name:      line.Name,
			Barcode:   line.Barcode,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.Decimal(),
			GSTRate:   cart.PercentFromBasisPoints(line.TaxRateBP),
			ItemTotal: itemTotal.Decimal(),
			GSTAmount: cart.TaxOf(itemTotal, line.TaxRateBP).Decimal(),
		})
	}

	totals := session.Totals()
	view.Subtotal = totals.Subtotal.Decimal()
	view.TaxTotal = totals.TaxTotal.Decimal()
	view.GrandTotal = totals.GrandTotal.Decimal()
	return view
}

func (s *Server) cartSession(c *gin.Context) (*cart.Session, bool) {
	userID, ok := usercontext.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return nil, false
	}
	return s.carts.Get(userID), true
}

func (s *Server) GetCart(c *gin.Context) {
	session, ok := s.cartSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cartView(session))
}

// AddCartItem accepts either a product ID or a barcode; the barcode form
// backs the scan-to-add flow.
func (s *Server) AddCartItem(c *gin.Context) {
	session, ok := s.cartSession(c)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var (
		snap *cart.Snapshot
		err  error
	)
	switch {
	case strings.TrimSpace(req.ProductID) != "":
		snap, err = s.catalogSvc.Snapshot(c.Request.Context(), req.ProductID)
	case strings.TrimSpace(req.Barcode) != "":
		snap, err = s.catalogSvc.SnapshotByBarcode(c.Request.Context(), req.Barcode)
	default:
		AbortWithError(c, newValidationError("product_id", "missing_product", "product_id or barcode is required"))
		return
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	session.Add(*snap)
	c.JSON(http.StatusOK, cartView(session))
}

func (s *Server) SetCartItemQuantity(c *gin.Context) {
	session, ok := s.cartSession(c)
	if !ok {
		return
	}

	var req SetCartItemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	session.SetQuantity(c.Param("product_id"), req.Quantity)
	c.JSON(http.StatusOK, cartView(session))
}

func (s *Server) RemoveCartItem(c *gin.Context) {
	session, ok := s.cartSession(c)
	if !ok {
		return
	}

	session.Remove(c.Param("product_id"))
	c.JSON(http.StatusOK, cartView(session))
}

func (s *Server) ClearCart(c *gin.Context) {
	session, ok := s.cartSession(c)
	if !ok {
		return
	}

	session.Clear()
	c.Status(http.StatusNoContent)
}

// CheckoutCart submits the open cart. The session is cleared only after the
// billing service accepts the checkout; any rejection leaves the cart intact
// so the cashier can adjust and retry.
func (s *Server) CheckoutCart(c *gin.Context) {
	session, ok := s.cartSession(c)
	if !ok {
		return
	}

	var req CheckoutCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	checkout, err := session.BuildCheckoutRequest(cart.PaymentMethod(req.PaymentMethod), req.CustomerName)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	bill, err := s.billingSvc.Submit(c.Request.Context(), *checkout)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	session.Clear()
	c.JSON(http.StatusCreated, bill)
}
