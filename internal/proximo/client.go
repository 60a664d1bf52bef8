// Package proximo is the client for the transit-prediction API. It builds
// resource paths, fetches them over HTTP and decodes the JSON envelope into
// model records. A Client holds no mutable request state and is safe for
// concurrent use.
package proximo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/neugierig/proximo/internal/logging"
	"github.com/neugierig/proximo/internal/models"
)

const DefaultTimeout = 10 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is the agency root, e.g. http://proximobus.appspot.com/agencies/sf-muni/
	BaseURL string
	// Timeout bounds a single round-trip. Zero means DefaultTimeout.
	Timeout time.Duration
	// RequestsPerSecond paces outgoing requests. Zero or less disables pacing.
	RequestsPerSecond float64
	Logger            *slog.Logger
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client talks to the prediction API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	inflight   singleflight.Group
	logger     *slog.Logger
}

// ParseBaseURL validates the API root and normalises it to end in '/'.
func ParseBaseURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ConfigError{Field: "base URL", Value: raw, Err: errors.New("must not be empty")}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, &ConfigError{Field: "base URL", Value: raw, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &ConfigError{Field: "base URL", Value: raw, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &ConfigError{Field: "base URL", Value: raw, Err: errors.New("missing host")}
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, &ConfigError{Field: "base URL", Value: raw, Err: errors.New("must not carry a query or fragment")}
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}
	return u, nil
}

// NewClient returns a client for cfg.BaseURL or a *ConfigError.
func NewClient(cfg Config) (*Client, error) {
	base, err := ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := int(math.Ceil(cfg.RequestsPerSecond))
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL:    base.String(),
		httpClient: httpClient,
		timeout:    timeout,
		limiter:    limiter,
		logger:     logging.Component(cfg.Logger, "proximo_client"),
	}, nil
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ListRoutes(ctx context.Context) ([]models.Route, error) {
	return list(ctx, c, resourceRoutes, RoutesPath(), routeRecord.model)
}

// ListRuns returns every run of the route that is flagged for display, in
// the order the server lists them.
func (c *Client) ListRuns(ctx context.Context, routeID string) ([]models.Run, error) {
	runs, err := list(ctx, c, resourceRuns, RunsPath(routeID), runRecord.model)
	if err != nil {
		return nil, err
	}
	return models.VisibleRuns(runs), nil
}

func (c *Client) ListStops(ctx context.Context, routeID, runID string) ([]models.Stop, error) {
	return list(ctx, c, resourceStops, StopsPath(routeID, runID), stopRecord.model)
}

func (c *Client) ListPredictions(ctx context.Context, stopID string) ([]models.Prediction, error) {
	return list(ctx, c, resourcePredictions, PredictionsPath(stopID), predictionRecord.model)
}

func (c *Client) ListPredictionsForRoute(ctx context.Context, stopID, routeID string) ([]models.Prediction, error) {
	return list(ctx, c, resourcePredictions, PredictionsByRoutePath(stopID, routeID), predictionRecord.model)
}

func (c *Client) GetRoute(ctx context.Context, routeID string) (models.Route, error) {
	return entry(ctx, c, resourceRoute, RoutePath(routeID), routeRecord.model)
}

func (c *Client) GetRun(ctx context.Context, routeID, runID string) (models.Run, error) {
	return entry(ctx, c, resourceRun, RunPath(routeID, runID), runRecord.model)
}

func list[R any, T any](ctx context.Context, c *Client, resource, path string, toModel func(R) (T, error)) ([]T, error) {
	start := time.Now()
	body, err := c.fetch(ctx, path)
	var items []T
	if err == nil {
		items, err = decodeList(path, body, toModel)
	}
	c.observe(resource, path, start, err)
	return items, err
}

func entry[R any, T any](ctx context.Context, c *Client, resource, path string, toModel func(R) (T, error)) (T, error) {
	start := time.Now()
	body, err := c.fetch(ctx, path)
	var item T
	if err == nil {
		item, err = decodeEntry(path, body, toModel)
	}
	c.observe(resource, path, start, err)
	return item, err
}

// fetch returns the body of GET <base>/<path>. Concurrent fetches of the
// same path share a single round-trip; the returned slice must not be
// modified.
//
// The shared round-trip is detached from the cancellation of the caller that
// started it and bounded by the client timeout instead. Each caller still
// gives up on its own ctx.
func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	var leader bool
	ch := c.inflight.DoChan(path, func() (any, error) {
		leader = true
		roundTripCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.roundTrip(roundTripCtx, path)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared && !leader {
			requestsCoalescedTotal.Inc()
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, &FetchError{Path: path, Err: ctx.Err()}
	}
}

func (c *Client) roundTrip(ctx context.Context, path string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{Path: path, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &FetchError{Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Path: path, Err: err}
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "http_response_body")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Path: path, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Path: path, Err: err}
	}
	return body, nil
}

func (c *Client) observe(resource, path string, start time.Time, err error) {
	duration := time.Since(start)
	requestDurationSeconds.WithLabelValues(resource).Observe(duration.Seconds())

	outcome := outcomeSuccess
	switch {
	case IsDecodeError(err):
		outcome = outcomeDecodeError
	case err != nil:
		outcome = outcomeFetchError
	}
	requestsTotal.WithLabelValues(resource, outcome).Inc()

	if err != nil {
		c.logger.Debug("resource request failed",
			slog.String("path", path),
			slog.String("outcome", outcome),
			slog.String("error", err.Error()))
		return
	}
	c.logger.Debug("resource fetched",
		slog.String("path", path),
		slog.Duration("duration", duration))
}
