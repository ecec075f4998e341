package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	cashregisterdomain "github.com/smallbiznis/tilldesk/internal/cashregister/domain"
	catalogdomain "github.com/smallbiznis/tilldesk/internal/catalog/domain"
	collectiondomain "github.com/smallbiznis/tilldesk/internal/collection/domain"
	"github.com/smallbiznis/tilldesk/internal/fallback"
	inventorydomain "github.com/smallbiznis/tilldesk/internal/inventory/domain"
	priceadjustmentdomain "github.com/smallbiznis/tilldesk/internal/priceadjustment/domain"
	purchasingdomain "github.com/smallbiznis/tilldesk/internal/purchasing/domain"
	"github.com/smallbiznis/tilldesk/pkg/restclient"
)

// errInvalidBody covers unparseable request bodies before any domain
// validation can run.
var errInvalidBody = errors.New("request body is invalid")

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware renders the last error attached to the gin
// context, unless a handler already wrote a response.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isUpstreamError(err):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_error",
			Message: "platform request failed",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

var validationSentinels = []error{
	errInvalidBody,
	priceadjustmentdomain.ErrMissingProduct,
	priceadjustmentdomain.ErrInvalidNewPrice,
	priceadjustmentdomain.ErrMissingReason,
	priceadjustmentdomain.ErrReasonTooLong,
	priceadjustmentdomain.ErrMissingRange,
	priceadjustmentdomain.ErrInvalidRange,
	inventorydomain.ErrMissingProduct,
	inventorydomain.ErrMissingLocation,
	inventorydomain.ErrNegativeCounted,
	inventorydomain.ErrNegativeExpected,
	cashregisterdomain.ErrMissingRegister,
	cashregisterdomain.ErrNegativeOpeningFloat,
	cashregisterdomain.ErrInvalidSession,
	cashregisterdomain.ErrNegativeClosingTotal,
	purchasingdomain.ErrInvalidOrder,
	purchasingdomain.ErrInvalidAmount,
	purchasingdomain.ErrMissingMethod,
	collectiondomain.ErrMissingCustomer,
	collectiondomain.ErrInvalidAmount,
	collectiondomain.ErrMissingMethod,
	catalogdomain.ErrMissingProduct,
}

func isNotFoundError(err error) bool {
	if errors.Is(err, fallback.ErrSessionNotFound) || errors.Is(err, fallback.ErrProductNotFound) {
		return true
	}
	var apiErr *restclient.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// isUpstreamError covers transport calls that exhausted their retries:
// non-2xx platform responses, network failures, and timeouts.
func isUpstreamError(err error) bool {
	var apiErr *restclient.APIError
	if errors.As(err, &apiErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
