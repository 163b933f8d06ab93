package httpapi

import (
	"errors"
	"net/http"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/database"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleDashboard(c *gin.Context) {
	summary, err := s.store.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleListCompanies(c *gin.Context) {
	s.listJSON(c, func() (any, error) {
		return s.store.ListCompanies(c.Request.Context())
	})
}

func (s *Server) handleListCustomers(c *gin.Context) {
	s.listJSON(c, func() (any, error) {
		return s.store.ListCustomers(c.Request.Context())
	})
}

func (s *Server) handleListSuppliers(c *gin.Context) {
	s.listJSON(c, func() (any, error) {
		return s.store.ListSuppliers(c.Request.Context())
	})
}

func (s *Server) handleListItems(c *gin.Context) {
	s.listJSON(c, func() (any, error) {
		return s.store.ListItems(c.Request.Context())
	})
}

func (s *Server) handleListSales(c *gin.Context) {
	s.listJSON(c, func() (any, error) {
		return s.store.ListSales(c.Request.Context())
	})
}

func (s *Server) handleListLedger(c *gin.Context) {
	s.listJSON(c, func() (any, error) {
		return s.store.ListLedger(c.Request.Context())
	})
}

func (s *Server) listJSON(c *gin.Context, query func() (any, error)) {
	out, err := query()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

type createSaleRequest struct {
	CustomerID string                 `json:"customer_id" binding:"required"`
	Lines      []database.SaleRequest `json:"lines" binding:"required"`
}

func (s *Server) handleCreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "customer_id and lines are required"})
		return
	}

	sale, err := s.store.CreateSale(c.Request.Context(), req.CustomerID, req.Lines)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrCustomerNotFound),
			errors.Is(err, database.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		case errors.Is(err, database.ErrInsufficient):
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		}
		return
	}

	s.logger.Info().Object("sale", sale).Msg("sale recorded")
	c.JSON(http.StatusOK, sale)
}

// stub returns the static success payload of a placeholder domain service.
func (s *Server) stub(service, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"service": service,
			"message": message,
		})
	}
}
