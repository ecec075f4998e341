package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/fallback"
	"github.com/smallbiznis/tilldesk/internal/priceadjustment/domain"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"github.com/smallbiznis/tilldesk/pkg/restclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type scriptedDoer struct {
	calls   int
	lastURL string
	respond func(req *http.Request) (*http.Response, error)
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls++
	d.lastURL = req.URL.String()
	return d.respond(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestService(t *testing.T, doer *scriptedDoer, withFallback bool) *Service {
	t.Helper()

	var fb *fallback.Store
	if withFallback {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)
		node, err := snowflake.NewNode(11)
		require.NoError(t, err)
		fb, err = fallback.NewWithDB(db, node, zap.NewNop())
		require.NoError(t, err)
	}

	client := restclient.NewWithDoer(doer, "http://platform.test", 2, time.Millisecond, zap.NewNop())
	return &Service{
		cfg:      config.Config{FallbackEnabled: withFallback},
		policy:   config.StaticConsolePolicyHolder(config.DefaultConsolePolicy()),
		log:      zap.NewNop(),
		client:   client,
		fallback: fb,
	}
}

func validCreate() domain.CreateRequest {
	return domain.CreateRequest{
		ProductID: "prod-espresso",
		NewPrice:  21.00,
		Reason:    "supplier cost increase",
	}
}

func TestCreateRejectsInvalidInputWithoutNetworkCall(t *testing.T) {
	doer := &scriptedDoer{respond: func(*http.Request) (*http.Response, error) {
		t.Fatal("no request expected for invalid input")
		return nil, nil
	}}
	svc := newTestService(t, doer, false)
	ctx := context.Background()

	cases := []struct {
		name string
		req  domain.CreateRequest
		want error
	}{
		{"missing product", domain.CreateRequest{NewPrice: 10, Reason: "r"}, domain.ErrMissingProduct},
		{"zero price", domain.CreateRequest{ProductID: "p", Reason: "r"}, domain.ErrInvalidNewPrice},
		{"negative price", domain.CreateRequest{ProductID: "p", NewPrice: -1, Reason: "r"}, domain.ErrInvalidNewPrice},
		{"blank reason", domain.CreateRequest{ProductID: "p", NewPrice: 10, Reason: "   "}, domain.ErrMissingReason},
		{"long reason", domain.CreateRequest{ProductID: "p", NewPrice: 10, Reason: strings.Repeat("x", domain.MaxReasonLength+1)}, domain.ErrReasonTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Zero(t, doer.calls)
}

func TestCreateNormalizesWireFields(t *testing.T) {
	doer := &scriptedDoer{respond: func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{
			"id": 501,
			"product_id": "prod-espresso",
			"product_name": "House Espresso 1kg",
			"old_value": 20.0,
			"new_value": 25.0,
			"value_change": 5.0,
			"reason": "supplier cost increase",
			"created_at": "2026-08-01T10:00:00Z"
		}`), nil
	}}
	svc := newTestService(t, doer, false)

	record, origin, err := svc.Create(context.Background(), validCreate())

	require.NoError(t, err)
	assert.Equal(t, storekit.OriginReal, origin)
	assert.Equal(t, 20.0, record.OldPrice)
	assert.Equal(t, 25.0, record.NewPrice)
	assert.Equal(t, 5.0, record.PriceChange)
	assert.InDelta(t, 25.0, record.PercentChange, 0.001)
	assert.Equal(t, 1, doer.calls)
}

func TestPercentChangeFallsBackWhenOldValueZero(t *testing.T) {
	doer := &scriptedDoer{respond: func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{
			"id": 502,
			"product_id": "prod-new",
			"old_value": 0,
			"new_value": 9.5,
			"value_change": 9.5,
			"percent_change": 100
		}`), nil
	}}
	svc := newTestService(t, doer, false)

	record, _, err := svc.Create(context.Background(), validCreate())

	require.NoError(t, err)
	assert.Equal(t, 100.0, record.PercentChange)
}

func TestCreateServesFallbackAfterExhaustedRetries(t *testing.T) {
	doer := &scriptedDoer{respond: func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `{"message":"upstream down"}`), nil
	}}
	svc := newTestService(t, doer, true)

	record, origin, err := svc.Create(context.Background(), validCreate())

	require.NoError(t, err)
	assert.Equal(t, storekit.OriginFallback, origin)
	assert.Equal(t, "prod-espresso", record.ProductID)
	assert.Equal(t, 21.00, record.NewPrice)
	// seeded catalog price becomes the old price
	assert.Equal(t, 18.50, record.OldPrice)
	assert.Equal(t, 3, doer.calls)
}

func TestCreateReturnsTransportErrorWhenFallbackDisabled(t *testing.T) {
	doer := &scriptedDoer{respond: func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `{"message":"upstream down"}`), nil
	}}
	svc := newTestService(t, doer, false)

	_, _, err := svc.Create(context.Background(), validCreate())

	var apiErr *restclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, 3, doer.calls)
}

func TestProductHistoryRequiresProduct(t *testing.T) {
	doer := &scriptedDoer{respond: func(*http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	}}
	svc := newTestService(t, doer, false)

	_, _, err := svc.ProductHistory(context.Background(), "  ", 0, 0)

	assert.ErrorIs(t, err, domain.ErrMissingProduct)
	assert.Zero(t, doer.calls)
}

func TestProductHistoryOmitsZeroPaging(t *testing.T) {
	doer := &scriptedDoer{respond: func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `[]`), nil
	}}
	svc := newTestService(t, doer, false)

	_, _, err := svc.ProductHistory(context.Background(), "prod-espresso", 0, 0)

	require.NoError(t, err)
	assert.Contains(t, doer.lastURL, "/price-adjustments/product/prod-espresso/history")
	assert.NotContains(t, doer.lastURL, "limit=")
	assert.NotContains(t, doer.lastURL, "offset=")
}

func TestRecentUsesPolicyDefaults(t *testing.T) {
	doer := &scriptedDoer{respond: func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `[]`), nil
	}}
	svc := newTestService(t, doer, false)

	_, _, err := svc.Recent(context.Background(), 0, 0)

	require.NoError(t, err)
	assert.Contains(t, doer.lastURL, "days=30")
	assert.Contains(t, doer.lastURL, "limit=20")
}

func TestDateRangeValidation(t *testing.T) {
	doer := &scriptedDoer{respond: func(*http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	}}
	svc := newTestService(t, doer, false)
	ctx := context.Background()
	now := time.Now()

	_, _, err := svc.DateRange(ctx, domain.DateRangeQuery{})
	assert.ErrorIs(t, err, domain.ErrMissingRange)

	_, _, err = svc.DateRange(ctx, domain.DateRangeQuery{Start: now, End: now.Add(-time.Hour)})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	assert.Zero(t, doer.calls)
}
