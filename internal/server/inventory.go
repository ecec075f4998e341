package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tilldesk/internal/inventory/domain"
)

func (s *Server) createInventoryCount(c *gin.Context) {
	var req domain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidBody)
		return
	}
	respond(c, http.StatusCreated, s.inventory.Create(c.Request.Context(), req))
}

func (s *Server) inventoryCountsByLocation(c *gin.Context) {
	result := s.inventory.FetchLocationHistory(
		c.Request.Context(),
		c.Param("location"),
		intQuery(c, "limit"),
		intQuery(c, "offset"),
	)
	respond(c, http.StatusOK, result)
}

func (s *Server) recentInventoryCounts(c *gin.Context) {
	result := s.inventory.FetchRecent(
		c.Request.Context(),
		intQuery(c, "days"),
		intQuery(c, "limit"),
	)
	respond(c, http.StatusOK, result)
}

func (s *Server) inventoryVarianceByProduct(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"counts": s.inventory.VarianceByProduct(c.Param("product_id")),
	})
}
