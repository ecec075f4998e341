package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/tilldesk/internal/config"
	"github.com/smallbiznis/tilldesk/internal/observability/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Doer is the seam over *http.Client so tests can fake the wire.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError carries the platform's error message for a non-2xx response.
// The message is safe to surface to console users.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fmt.Sprintf("platform request failed with status %d", e.StatusCode)
}

// Client is a retrying JSON client for the platform API. Every request is
// attempted up to 1 + MaxRetries times with linearly increasing backoff
// between attempts; the last error propagates once the bound is exhausted.
type Client struct {
	baseURL     string
	token       string
	http        Doer
	maxRetries  int
	backoffUnit time.Duration
	log         *zap.Logger
	tracer      trace.Tracer
}

// Params configures a Client.
type Params struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
}

// New builds the platform client from app configuration.
func New(p Params) *Client {
	return &Client{
		baseURL:     strings.TrimRight(p.Cfg.PlatformBaseURL, "/"),
		token:       p.Cfg.PlatformToken,
		http:        &http.Client{Timeout: p.Cfg.RequestTimeout},
		maxRetries:  normalizeRetries(p.Cfg.MaxRetries),
		backoffUnit: normalizeBackoff(p.Cfg.BackoffUnit),
		log:         p.Log.Named("restclient"),
		tracer:      otel.Tracer("tilldesk/restclient"),
	}
}

// NewWithDoer builds a client over a custom Doer. Tests use this to count
// attempts without a real network.
func NewWithDoer(doer Doer, baseURL string, maxRetries int, backoffUnit time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        doer,
		maxRetries:  normalizeRetries(maxRetries),
		backoffUnit: normalizeBackoff(backoffUnit),
		log:         log.Named("restclient"),
		tracer:      otel.Tracer("tilldesk/restclient"),
	}
}

// Get performs a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.call(ctx, http.MethodGet, path, query, nil, out)
}

// Post performs a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.call(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	operation := method + " " + path
	ctx, span := c.tracer.Start(ctx, operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = encoded
	}

	var lastErr error
	attempts := 1 + c.maxRetries
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			metrics.Store().IncRetry(operation)
			if err := sleepBackoff(ctx, time.Duration(attempt)*c.backoffUnit); err != nil {
				return err
			}
		}

		lastErr = c.attempt(ctx, method, path, query, payload, out)
		if lastErr == nil {
			span.SetAttributes(attribute.Int("attempts", attempt+1))
			return nil
		}

		c.log.Debug("platform request failed",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}

	span.SetStatus(codes.Error, lastErr.Error())
	span.SetAttributes(attribute.Int("attempts", attempts))
	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, path string, query url.Values, payload []byte, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<10)).Decode(&body); err == nil {
		if body.Message != "" {
			apiErr.Message = body.Message
		} else if body.Error.Message != "" {
			apiErr.Message = body.Error.Message
		}
	}
	return apiErr
}

func sleepBackoff(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func normalizeRetries(value int) int {
	if value < 0 {
		return 0
	}
	return value
}

func normalizeBackoff(value time.Duration) time.Duration {
	if value <= 0 {
		return 500 * time.Millisecond
	}
	return value
}
