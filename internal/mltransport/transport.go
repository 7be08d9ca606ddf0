// Package mltransport is the shared HTTP JSON transport for the captioning
// and transcription sidecars: rate limited, retried and circuit broken.
package mltransport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/circuitbreaker"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/logger"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/retry"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/telemetry"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRateLimit = 5
	maxErrorBody     = 512
)

// ErrUnavailable wraps every failure to reach a sidecar.
var ErrUnavailable = errors.New("ml sidecar unavailable")

// StatusError is a non-200 sidecar response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ml service returned %d", e.Code)
	}
	return fmt.Sprintf("ml service returned %d: %s", e.Code, e.Body)
}

// Temporary reports whether retrying may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Options configures a Client.
type Options struct {
	Name       string
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64
	RateBurst  int
	Retry      retry.Config
	Breaker    circuitbreaker.Config
	HTTPClient *http.Client
	Telemetry  *telemetry.Provider
	Logger     logger.Logger
}

// Client posts JSON to one sidecar.
type Client struct {
	name      string
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *circuitbreaker.Breaker
	retry     retry.Config
	telemetry *telemetry.Provider
	logger    logger.Logger
}

// NewClient creates a sidecar client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = max(1, int(opts.RateLimit))
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	log := opts.Logger.With(logger.String("collaborator", opts.Name))
	breakerCfg := opts.Breaker
	userHook := breakerCfg.OnStateChange
	breakerCfg.OnStateChange = func(from, to circuitbreaker.State) {
		log.Warn("ml sidecar circuit state changed",
			logger.String("from", from.String()),
			logger.String("to", to.String()))
		if userHook != nil {
			userHook(from, to)
		}
	}

	return &Client{
		name:      opts.Name,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		http:      opts.HTTPClient,
		limiter:   rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		breaker:   circuitbreaker.New(breakerCfg),
		retry:     opts.Retry,
		telemetry: opts.Telemetry,
		logger:    log,
	}
}

// PostJSON sends req as JSON to path and decodes a 200 response into respPtr.
func (c *Client) PostJSON(ctx context.Context, path string, req, respPtr any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	err = retry.Do(ctx, c.retry, func(ctx context.Context) error {
		if waitErr := c.wait(ctx); waitErr != nil {
			return waitErr
		}
		return c.breaker.Execute(ctx, func(ctx context.Context) error {
			return c.do(ctx, path, body, respPtr)
		})
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		c.telemetry.IncrementBreakerRejections(c.name)
	}
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, c.name, path, err)
	}
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter.Tokens() < 1 {
		c.telemetry.IncrementThrottleCount(c.name)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, body []byte, respPtr any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(respPtr); decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	return nil
}

// HealthStatus is the result of a GET /health probe.
type HealthStatus struct {
	Reachable    bool
	Latency      time.Duration
	ModelVersion string
}

type healthResponse struct {
	ModelVersion string `json:"model_version"`
}

// Health probes GET /health once, bypassing retry and the breaker.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	status := HealthStatus{Latency: time.Since(start)}
	if err != nil {
		return status, fmt.Errorf("%w: %s: %w", ErrUnavailable, c.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return status, fmt.Errorf("%w: %s: %w", ErrUnavailable, c.name, &StatusError{Code: resp.StatusCode})
	}

	status.Reachable = true
	var hr healthResponse
	if json.NewDecoder(resp.Body).Decode(&hr) == nil {
		status.ModelVersion = hr.ModelVersion
	}
	return status, nil
}

// Name identifies the sidecar in logs and metrics.
func (c *Client) Name() string {
	return c.name
}
