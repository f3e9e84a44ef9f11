// Package client provides the authenticated HTTP client for the VaultRE API.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/vaultre-client/pkg/metrics"
)

// DefaultBaseURL is the VaultRE API root for the ap-southeast-2 region.
const DefaultBaseURL = "https://ap-southeast-2.api.vaultre.com.au/api/v1.2"

// Prometheus metrics for VaultRE client operations.
var (
	factory = promauto.With(metrics.Registry)

	requestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "vaultre_requests_total",
		Help: "Total VaultRE requests by status",
	}, []string{"status"})

	requestDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "vaultre_request_duration_seconds",
		Help:    "VaultRE request duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "vaultre_errors_total",
		Help: "Total VaultRE errors by class",
	}, []string{"class"})
)

// Client performs authenticated GET requests against VaultRE.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root; resource paths are appended to it.
	BaseURL string

	// APIKey is sent as X-Api-Key.
	APIKey string

	// BearerToken is sent as Authorization: Bearer.
	BearerToken string

	// Timeout bounds a single request (ignored when HTTPClient is set).
	Timeout time.Duration

	// HTTPClient overrides the default client (for testing).
	HTTPClient *http.Client
}

// DefaultConfig returns a configuration for the production API.
func DefaultConfig(apiKey, bearerToken string) Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		APIKey:      apiKey,
		BearerToken: bearerToken,
		Timeout:     30 * time.Second,
	}
}

// New creates a new VaultRE client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("base url must be http(s) (got %q)", cfg.BaseURL)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		logger:     log.With().Str("component", "vaultre-client").Logger(),
	}, nil
}

// Get fetches a resource path (with query string) and returns the body of a
// 2xx response. Any other outcome is returned as *APIError; there is no retry.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.config.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.config.BearerToken)

	c.logger.Debug().Str("path", path).Msg("Executing VaultRE request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Error().Err(err).Str("path", path).Msg("HTTP request failed")
		return nil, &APIError{
			ErrorClass: ErrorClassNetwork,
			Path:       path,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

		class, msg := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Error().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("VaultRE request error")

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Path:       path,
			Message:    msg,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Path:       path,
			Message:    "read response body",
			Err:        err,
		}
	}

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg("VaultRE request complete")

	return body, nil
}
