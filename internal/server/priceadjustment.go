package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tilldesk/internal/priceadjustment/domain"
)

func (s *Server) createPriceAdjustment(c *gin.Context) {
	var req domain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidBody)
		return
	}
	respond(c, http.StatusCreated, s.priceAdjustments.Create(c.Request.Context(), req))
}

func (s *Server) priceAdjustmentHistory(c *gin.Context) {
	result := s.priceAdjustments.FetchProductHistory(
		c.Request.Context(),
		c.Param("id"),
		intQuery(c, "limit"),
		intQuery(c, "offset"),
	)
	respond(c, http.StatusOK, result)
}

func (s *Server) recentPriceAdjustments(c *gin.Context) {
	result := s.priceAdjustments.FetchRecent(
		c.Request.Context(),
		intQuery(c, "days"),
		intQuery(c, "limit"),
	)
	respond(c, http.StatusOK, result)
}

func (s *Server) priceAdjustmentsByDateRange(c *gin.Context) {
	query := domain.DateRangeQuery{
		ProductID: c.Query("product_id"),
		Limit:     intQuery(c, "limit"),
		Offset:    intQuery(c, "offset"),
	}
	if raw := c.Query("start_date"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, domain.ErrInvalidRange)
			return
		}
		query.Start = start
	}
	if raw := c.Query("end_date"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, domain.ErrInvalidRange)
			return
		}
		query.End = end
	}
	respond(c, http.StatusOK, s.priceAdjustments.FetchDateRange(c.Request.Context(), query))
}

func (s *Server) clearPriceAdjustments(c *gin.Context) {
	s.priceAdjustments.ClearAdjustments()
	c.Status(http.StatusNoContent)
}

func (s *Server) clearPriceAdjustmentHistory(c *gin.Context) {
	s.priceAdjustments.ClearProductHistory(c.Param("id"))
	c.Status(http.StatusNoContent)
}
