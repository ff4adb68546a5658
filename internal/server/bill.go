package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/smallbiznis/tillpoint/internal/billing/domain"
	"github.com/smallbiznis/tillpoint/internal/cart"
)

// CreateBill submits a fully client-assembled checkout. Prices and totals in
// the payload are advisory; the billing service recomputes them from the
// catalog before anything persists.
func (s *Server) CreateBill(c *gin.Context) {
	var req cart.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	bill, err := s.billingSvc.Submit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

func (s *Server) ListBills(c *gin.Context) {
	bills, err := s.billingSvc.List(c.Request.Context(), billingdomain.ListRequest{
		Skip:  queryInt(c, "skip", 0),
		Limit: queryInt(c, "limit", 0),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

func (s *Server) GetBillByID(c *gin.Context) {
	bill, err := s.billingSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (s *Server) GetBillReceipt(c *gin.Context) {
	receipt, err := s.billingSvc.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, receipt)
}
