package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/tillpoint/internal/catalog/domain"
)

func (s *Server) ListProducts(c *gin.Context) {
	products, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListRequest{
		Search: c.Query("search"),
		Skip:   queryInt(c, "skip", 0),
		Limit:  queryInt(c, "limit", 0),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req catalogdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.catalogSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (s *Server) GetProductByID(c *gin.Context) {
	product, err := s.catalogSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetProductByBarcode is the scan path: the client reads a barcode and asks
// for the matching product to add it to the cart.
func (s *Server) GetProductByBarcode(c *gin.Context) {
	product, err := s.catalogSvc.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		if errors.Is(err, catalogdomain.ErrNotFound) {
			s.obsMetrics.RecordBarcodeLookup(c.Request.Context(), "miss")
		}
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordBarcodeLookup(c.Request.Context(), "hit")
	c.JSON(http.StatusOK, product)
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req catalogdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.catalogSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.catalogSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListLowStockProducts(c *gin.Context) {
	products, err := s.catalogSvc.LowStock(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
