package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/fallback"
	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"github.com/smallbiznis/tilldesk/internal/priceadjustment/domain"
	"github.com/smallbiznis/tilldesk/internal/storekit"
	"github.com/smallbiznis/tilldesk/pkg/restclient"
	"github.com/smallbiznis/tilldesk/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const domainName = "price_adjustment"

type Params struct {
	fx.In

	Cfg      config.Config
	Policy   *config.ConsolePolicyHolder
	Log      *zap.Logger
	Client   *restclient.Client
	Recorder *telemetry.Recorder
	Fallback *fallback.Store `optional:"true"`
}

type Service struct {
	cfg      config.Config
	policy   *config.ConsolePolicyHolder
	log      *zap.Logger
	client   *restclient.Client
	recorder *telemetry.Recorder
	fallback *fallback.Store
}

func New(p Params) domain.Service {
	return &Service{
		cfg:      p.Cfg,
		policy:   p.Policy,
		log:      p.Log.Named("priceadjustment.service"),
		client:   p.Client,
		recorder: p.Recorder,
		fallback: p.Fallback,
	}
}

// apiAdjustment is the platform wire shape. Its value fields are named
// differently from the console's internal ones and must be normalized
// before any record reaches a store.
type apiAdjustment struct {
	ID            int64          `json:"id"`
	ProductID     string         `json:"product_id"`
	ProductName   string         `json:"product_name"`
	OldValue      float64        `json:"old_value"`
	NewValue      float64        `json:"new_value"`
	ValueChange   float64        `json:"value_change"`
	PercentChange float64        `json:"percent_change"`
	Reason        string         `json:"reason"`
	Unit          string         `json:"unit"`
	AdjustedBy    string         `json:"adjusted_by"`
	Metadata      map[string]any `json:"metadata"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (a apiAdjustment) normalize() domain.Adjustment {
	record := domain.Adjustment{
		ID:            a.ID,
		ProductID:     a.ProductID,
		ProductName:   a.ProductName,
		OldPrice:      a.OldValue,
		NewPrice:      a.NewValue,
		PriceChange:   a.ValueChange,
		PercentChange: derivePercent(a.ValueChange, a.OldValue, a.PercentChange),
		Reason:        a.Reason,
		Unit:          a.Unit,
		AdjustedBy:    a.AdjustedBy,
		CreatedAt:     a.CreatedAt,
	}
	if a.Metadata != nil {
		record.Metadata = datatypes.JSONMap(a.Metadata)
	}
	return record
}

// derivePercent computes value_change / old_value * 100, defaulting to
// the provided percent (or zero) when the old value is zero.
func derivePercent(change, oldValue, provided float64) float64 {
	if oldValue == 0 {
		return provided
	}
	return change / oldValue * 100
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Adjustment, storekit.Origin, error) {
	start := time.Now()

	if err := validateCreate(req); err != nil {
		s.recorder.Record(ctx, telemetry.Event{
			Operation: domainName + ".create",
			Key:       req.ProductID,
			Duration:  time.Since(start),
			Err:       err,
		})
		return nil, "", err
	}

	var api apiAdjustment
	err := s.client.Post(ctx, "/price-adjustments", req, &api)
	if err == nil {
		record := api.normalize()
		s.recorder.Record(ctx, telemetry.Event{
			Operation: domainName + ".create",
			Key:       record.ProductID,
			Duration:  time.Since(start),
		})
		return &record, storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		record, ferr := s.fallback.CreatePriceAdjustment(ctx, req)
		if ferr == nil {
			s.serveFallback(ctx, "create", req.ProductID, start)
			return record, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback create failed", zap.Error(ferr))
	}

	s.recorder.Record(ctx, telemetry.Event{
		Operation: domainName + ".create",
		Key:       req.ProductID,
		Duration:  time.Since(start),
		Err:       err,
	})
	return nil, "", err
}

func (s *Service) ProductHistory(ctx context.Context, productID string, limit, offset int) ([]domain.Adjustment, storekit.Origin, error) {
	start := time.Now()

	productID = strings.TrimSpace(productID)
	if productID == "" {
		err := domain.ErrMissingProduct
		s.recorder.Record(ctx, telemetry.Event{
			Operation: domainName + ".product_history",
			Duration:  time.Since(start),
			Err:       err,
		})
		return nil, "", err
	}

	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	var api []apiAdjustment
	err := s.client.Get(ctx, "/price-adjustments/product/"+url.PathEscape(productID)+"/history", query, &api)
	if err == nil {
		s.recorder.Record(ctx, telemetry.Event{
			Operation: domainName + ".product_history",
			Key:       productID,
			Duration:  time.Since(start),
		})
		return normalizeAll(api), storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		records, ferr := s.fallback.PriceAdjustmentsByProduct(ctx, productID, limit, offset)
		if ferr == nil {
			s.serveFallback(ctx, "product_history", productID, start)
			return records, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback history read failed", zap.Error(ferr))
	}

	s.recorder.Record(ctx, telemetry.Event{
		Operation: domainName + ".product_history",
		Key:       productID,
		Duration:  time.Since(start),
		Err:       err,
	})
	return nil, "", err
}

func (s *Service) Recent(ctx context.Context, days, limit int) ([]domain.Adjustment, storekit.Origin, error) {
	start := time.Now()

	policy := s.policy.Get()
	if days <= 0 {
		days = policy.RecentWindowDays
	}
	if limit <= 0 {
		limit = policy.RecentLimit
	}

	query := url.Values{}
	query.Set("days", strconv.Itoa(days))
	query.Set("limit", strconv.Itoa(limit))

	var api []apiAdjustment
	err := s.client.Get(ctx, "/price-adjustments/recent", query, &api)
	if err == nil {
		s.recorder.Record(ctx, telemetry.Event{
			Operation: domainName + ".recent",
			Duration:  time.Since(start),
		})
		return normalizeAll(api), storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		since := time.Now().UTC().AddDate(0, 0, -days)
		records, ferr := s.fallback.RecentPriceAdjustments(ctx, since, limit)
		if ferr == nil {
			s.serveFallback(ctx, "recent", "", start)
			return records, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback recent read failed", zap.Error(ferr))
	}

	s.recorder.Record(ctx, telemetry.Event{
		Operation: domainName + ".recent",
		Duration:  time.Since(start),
		Err:       err,
	})
	return nil, "", err
}

func (s *Service) DateRange(ctx context.Context, rangeQuery domain.DateRangeQuery) ([]domain.Adjustment, storekit.Origin, error) {
	start := time.Now()

	if err := validateRange(rangeQuery); err != nil {
		s.recorder.Record(ctx, telemetry.Event{
			Operation: domainName + ".date_range",
			Key:       rangeQuery.ProductID,
			Duration:  time.Since(start),
			Err:       err,
		})
		return nil, "", err
	}

	query := url.Values{}
	query.Set("start_date", rangeQuery.Start.UTC().Format(time.RFC3339))
	query.Set("end_date", rangeQuery.End.UTC().Format(time.RFC3339))
	if rangeQuery.ProductID != "" {
		query.Set("product_id", rangeQuery.ProductID)
	}
	if rangeQuery.Limit > 0 {
		query.Set("limit", strconv.Itoa(rangeQuery.Limit))
	}
	if rangeQuery.Offset > 0 {
		query.Set("offset", strconv.Itoa(rangeQuery.Offset))
	}

	var api []apiAdjustment
	err := s.client.Get(ctx, "/price-adjustments/date-range", query, &api)
	if err == nil {
		s.recorder.Record(ctx, telemetry.Event{
			Operation: domainName + ".date_range",
			Key:       rangeQuery.ProductID,
			Duration:  time.Since(start),
		})
		return normalizeAll(api), storekit.OriginReal, nil
	}

	if s.fallbackEnabled() {
		records, ferr := s.fallback.PriceAdjustmentsInRange(ctx, rangeQuery)
		if ferr == nil {
			s.serveFallback(ctx, "date_range", rangeQuery.ProductID, start)
			return records, storekit.OriginFallback, nil
		}
		s.log.Warn("fallback range read failed", zap.Error(ferr))
	}

	s.recorder.Record(ctx, telemetry.Event{
		Operation: domainName + ".date_range",
		Key:       rangeQuery.ProductID,
		Duration:  time.Since(start),
		Err:       err,
	})
	return nil, "", err
}

func (s *Service) fallbackEnabled() bool {
	if s.fallback == nil {
		return false
	}
	return s.policy.FallbackFor(domainName, s.cfg.FallbackEnabled)
}

func (s *Service) serveFallback(ctx context.Context, operation, key string, start time.Time) {
	metrics.Store().IncFallback(domainName, operation)
	s.recorder.Record(ctx, telemetry.Event{
		Operation: domainName + "." + operation,
		Key:       key,
		Duration:  time.Since(start),
		Fallback:  true,
	})
}

func validateCreate(req domain.CreateRequest) error {
	if strings.TrimSpace(req.ProductID) == "" {
		return domain.ErrMissingProduct
	}
	if req.NewPrice <= 0 {
		return domain.ErrInvalidNewPrice
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return domain.ErrMissingReason
	}
	if len(reason) > domain.MaxReasonLength {
		return domain.ErrReasonTooLong
	}
	return nil
}

func validateRange(query domain.DateRangeQuery) error {
	if query.Start.IsZero() || query.End.IsZero() {
		return domain.ErrMissingRange
	}
	if query.Start.After(query.End) {
		return domain.ErrInvalidRange
	}
	return nil
}

func normalizeAll(api []apiAdjustment) []domain.Adjustment {
	records := make([]domain.Adjustment, 0, len(api))
	for _, item := range api {
		records = append(records, item.normalize())
	}
	return records
}
