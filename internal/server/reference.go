package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listPaymentMethods(c *gin.Context) {
	respond(c, http.StatusOK, s.reference.PaymentMethods(c.Request.Context()))
}

func (s *Server) listCurrencies(c *gin.Context) {
	respond(c, http.StatusOK, s.reference.Currencies(c.Request.Context()))
}

func (s *Server) refreshReference(c *gin.Context) {
	if err := s.reference.Refresh(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.reference.Snapshot())
}

func (s *Server) catalogProduct(c *gin.Context) {
	respond(c, http.StatusOK, s.catalog.Product(c.Request.Context(), c.Param("id")))
}
