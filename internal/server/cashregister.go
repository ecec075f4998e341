package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tilldesk/internal/cashregister/domain"
)

func (s *Server) openRegisterSession(c *gin.Context) {
	var req domain.OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidBody)
		return
	}
	respond(c, http.StatusCreated, s.registers.Open(c.Request.Context(), req))
}

func (s *Server) closeRegisterSession(c *gin.Context) {
	var req domain.CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidBody)
		return
	}
	req.SessionID = int64Param(c, "id")
	respond(c, http.StatusOK, s.registers.Close(c.Request.Context(), req))
}

func (s *Server) registerSessionHistory(c *gin.Context) {
	result := s.registers.FetchRegisterHistory(
		c.Request.Context(),
		c.Param("register_id"),
		intQuery(c, "limit"),
		intQuery(c, "offset"),
	)
	respond(c, http.StatusOK, result)
}

func (s *Server) recentRegisterSessions(c *gin.Context) {
	result := s.registers.FetchRecent(
		c.Request.Context(),
		intQuery(c, "days"),
		intQuery(c, "limit"),
	)
	respond(c, http.StatusOK, result)
}

func (s *Server) openRegisterSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.registers.OpenSessions()})
}
