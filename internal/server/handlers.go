package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tilldesk/internal/storekit"
)

func respond[T any](c *gin.Context, status int, result storekit.Result[T]) {
	if !result.Success {
		AbortWithError(c, result.Cause())
		return
	}
	c.JSON(status, result)
}

func intQuery(c *gin.Context, name string) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func int64Param(c *gin.Context, name string) int64 {
	value, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil {
		return 0
	}
	return value
}
