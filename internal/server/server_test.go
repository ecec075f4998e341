package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/events"
	priceadjustmentdomain "github.com/smallbiznis/tilldesk/internal/priceadjustment/domain"
	priceadjustmentstore "github.com/smallbiznis/tilldesk/internal/priceadjustment/store"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"github.com/smallbiznis/tilldesk/pkg/restclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAdjustmentService struct {
	record *priceadjustmentdomain.Adjustment
	err    error
}

func (s *stubAdjustmentService) Create(_ context.Context, req priceadjustmentdomain.CreateRequest) (*priceadjustmentdomain.Adjustment, storekit.Origin, error) {
	if strings.TrimSpace(req.ProductID) == "" {
		return nil, "", priceadjustmentdomain.ErrMissingProduct
	}
	if s.err != nil {
		return nil, "", s.err
	}
	return s.record, storekit.OriginReal, nil
}

func (s *stubAdjustmentService) ProductHistory(context.Context, string, int, int) ([]priceadjustmentdomain.Adjustment, storekit.Origin, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return []priceadjustmentdomain.Adjustment{*s.record}, storekit.OriginReal, nil
}

func (s *stubAdjustmentService) Recent(context.Context, int, int) ([]priceadjustmentdomain.Adjustment, storekit.Origin, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return []priceadjustmentdomain.Adjustment{*s.record}, storekit.OriginReal, nil
}

func (s *stubAdjustmentService) DateRange(context.Context, priceadjustmentdomain.DateRangeQuery) ([]priceadjustmentdomain.Adjustment, storekit.Origin, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return []priceadjustmentdomain.Adjustment{*s.record}, storekit.OriginReal, nil
}

func newTestServer(svc priceadjustmentdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	bus := events.NewBus(zap.NewNop())
	srv := &Server{
		engine: engine,
		cfg:    config.Config{},
		priceAdjustments: priceadjustmentstore.New(priceadjustmentstore.Params{
			Log: zap.NewNop(),
			Svc: svc,
			Bus: bus,
		}),
	}

	api := engine.Group("/api/v1")
	adjustments := api.Group("/price-adjustments")
	adjustments.POST("", srv.createPriceAdjustment)
	adjustments.GET("/recent", srv.recentPriceAdjustments)
	adjustments.DELETE("", srv.clearPriceAdjustments)
	return engine
}

func demoAdjustment() *priceadjustmentdomain.Adjustment {
	return &priceadjustmentdomain.Adjustment{
		ID:        88,
		ProductID: "prod-espresso",
		OldPrice:  18.50,
		NewPrice:  21.00,
		CreatedAt: time.Now(),
	}
}

func TestCreateAdjustmentReturnsEnvelope(t *testing.T) {
	engine := newTestServer(&stubAdjustmentService{record: demoAdjustment()})

	body := `{"product_id":"prod-espresso","new_price":21.0,"reason":"supplier cost increase"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/price-adjustments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), `"origin":"real"`)
}

func TestCreateAdjustmentValidationReturns400(t *testing.T) {
	engine := newTestServer(&stubAdjustmentService{record: demoAdjustment()})

	body := `{"new_price":21.0,"reason":"supplier cost increase"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/price-adjustments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
	assert.Contains(t, rec.Body.String(), "product_id is required")
}

func TestRecentUpstreamFailureReturns502(t *testing.T) {
	engine := newTestServer(&stubAdjustmentService{
		record: demoAdjustment(),
		err:    &restclient.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/price-adjustments/recent", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream_error")
}

func TestClearAdjustmentsReturns204(t *testing.T) {
	engine := newTestServer(&stubAdjustmentService{record: demoAdjustment()})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/price-adjustments", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
