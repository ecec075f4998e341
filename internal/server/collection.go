package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tilldesk/internal/collection/domain"
)

func (s *Server) createCollection(c *gin.Context) {
	var req domain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidBody)
		return
	}
	respond(c, http.StatusCreated, s.collections.Create(c.Request.Context(), req))
}

func (s *Server) collectionsByCustomer(c *gin.Context) {
	result := s.collections.FetchCustomerHistory(
		c.Request.Context(),
		c.Param("customer_id"),
		intQuery(c, "limit"),
		intQuery(c, "offset"),
	)
	respond(c, http.StatusOK, result)
}

func (s *Server) recentCollections(c *gin.Context) {
	result := s.collections.FetchRecent(
		c.Request.Context(),
		intQuery(c, "days"),
		intQuery(c, "limit"),
	)
	respond(c, http.StatusOK, result)
}
