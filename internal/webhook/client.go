// Package webhook posts JSON payloads to the workflow-automation webhooks
// that generate audits, scrape leads and deliver email.
package webhook

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

	"go.uber.org/zap"

	"github.com/JakeFAU/seo-reporter/internal/metrics"
)

// ErrNotConfigured reports that a webhook URL is missing from configuration.
var ErrNotConfigured = errors.New("webhook is not configured")

// ErrBodyTooLarge reports a webhook response larger than the configured limit.
var ErrBodyTooLarge = errors.New("webhook response too large")

// DefaultMaxBodyBytes bounds how much of a response body is read.
const DefaultMaxBodyBytes int64 = 32 << 20

// Endpoint names one configured webhook.
type Endpoint struct {
	// Name is a short label used in logs and metrics ("audit", "scrape", "email").
	Name string
	// URL is the webhook address; empty means not configured.
	URL string
	// Setting is the environment variable that supplies URL.
	Setting string
}

// ConfigError is returned when an endpoint has no URL.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Setting)
}

// Is matches ErrNotConfigured.
func (e *ConfigError) Is(target error) bool {
	return target == ErrNotConfigured
}

// StatusError is returned for non-2xx webhook responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("n8n responded with %d: %s", e.StatusCode, e.Body)
}

// Response is the raw webhook reply.
type Response struct {
	StatusCode int
	Body       []byte
}

// Config controls the outbound HTTP client.
type Config struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

// Client sends webhook requests. It never retries.
type Client struct {
	httpClient   *http.Client
	maxBodyBytes int64
	logger       *zap.Logger
}

// New constructs a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		maxBodyBytes: maxBody,
		logger:       logger,
	}
}

// Post marshals payload as JSON and POSTs it to the endpoint. A non-2xx status
// yields a *StatusError carrying the response body.
func (c *Client) Post(ctx context.Context, endpoint Endpoint, payload any) (Response, error) {
	if strings.TrimSpace(endpoint.URL) == "" {
		return Response{}, &ConfigError{Setting: endpoint.Setting}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("marshal %s payload: %w", endpoint.Name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build %s request: %w", endpoint.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveWebhookCall(endpoint.Name, "error", time.Since(start))
		return Response{}, fmt.Errorf("call %s webhook: %w", endpoint.Name, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("webhook body close failed", zap.String("webhook", endpoint.Name), zap.Error(closeErr))
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		metrics.ObserveWebhookCall(endpoint.Name, "error", time.Since(start))
		return Response{}, fmt.Errorf("read %s response: %w", endpoint.Name, err)
	}
	if int64(len(data)) > c.maxBodyBytes {
		metrics.ObserveWebhookCall(endpoint.Name, "error", time.Since(start))
		return Response{}, fmt.Errorf("%s response exceeds %d bytes: %w", endpoint.Name, c.maxBodyBytes, ErrBodyTooLarge)
	}
	elapsed := time.Since(start)
	c.logger.Info("webhook responded",
		zap.String("webhook", endpoint.Name),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", elapsed),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveWebhookCall(endpoint.Name, "status_error", elapsed)
		return Response{StatusCode: resp.StatusCode, Body: data},
			&StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	metrics.ObserveWebhookCall(endpoint.Name, "ok", elapsed)
	return Response{StatusCode: resp.StatusCode, Body: data}, nil
}
