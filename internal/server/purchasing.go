package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tilldesk/internal/purchasing/domain"
)

func (s *Server) createPurchasePayment(c *gin.Context) {
	var req domain.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidBody)
		return
	}
	req.OrderID = int64Param(c, "id")
	respond(c, http.StatusCreated, s.purchasing.CreatePayment(c.Request.Context(), req))
}

func (s *Server) listPurchaseOrders(c *gin.Context) {
	result := s.purchasing.FetchOrders(
		c.Request.Context(),
		intQuery(c, "limit"),
		intQuery(c, "offset"),
	)
	respond(c, http.StatusOK, result)
}

func (s *Server) outstandingPurchaseOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"orders": s.purchasing.OutstandingOrders()})
}

func (s *Server) purchasePaymentsByOrder(c *gin.Context) {
	result := s.purchasing.FetchOrderPayments(
		c.Request.Context(),
		int64Param(c, "id"),
		intQuery(c, "limit"),
		intQuery(c, "offset"),
	)
	respond(c, http.StatusOK, result)
}
