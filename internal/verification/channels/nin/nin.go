// Package nin implements the single-phase NIN verification channel.
package nin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"scoutpay/internal/verification/channels"
	"scoutpay/pkg/dates"
	"scoutpay/pkg/strutil"
)

// Client implements channels.NINChannel against the identity service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ channels.NINChannel = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a logger for data-quality diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a NIN channel client.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type verifyRequest struct {
	NIN string `json:"nin"`
}

type verifyResponse struct {
	Success    *bool  `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       struct {
		FirstName   string `json:"firstName"`
		MiddleName  string `json:"middleName"`
		LastName    string `json:"lastName"`
		DateOfBirth string `json:"dateOfBirth"`
	} `json:"data"`
}

// Verify checks a NIN and normalizes the identity details it resolves to.
func (c *Client) Verify(ctx context.Context, nin string) (*channels.Result, error) {
	reqBody, err := json.Marshal(verifyRequest{NIN: nin})
	if err != nil {
		return nil, channels.NewError(channels.ErrorInternal, channels.KindNIN, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/nin/verify", bytes.NewReader(reqBody))
	if err != nil {
		return nil, channels.NewError(channels.ErrorInternal, channels.KindNIN, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, channels.NewError(channels.ErrorTimeout, channels.KindNIN, "request timeout", err)
		}
		return nil, channels.NewError(channels.ErrorServiceOutage, channels.KindNIN, "failed to execute request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, channels.NewError(channels.ErrorInternal, channels.KindNIN, "failed to read response body", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// Continue to parse.
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, channels.NewError(channels.ErrorAuthentication, channels.KindNIN, "authentication failed", nil)
	case http.StatusBadRequest:
		return nil, channels.NewError(channels.ErrorBadData, channels.KindNIN, "invalid nin", nil)
	case http.StatusNotFound:
		return nil, channels.NewError(channels.ErrorNotFound, channels.KindNIN, "nin record not found", nil)
	case http.StatusTooManyRequests:
		return nil, channels.NewError(channels.ErrorRateLimited, channels.KindNIN, "rate limited", nil)
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, channels.NewError(channels.ErrorServiceOutage, channels.KindNIN, "identity service unavailable", nil)
	default:
		return nil, channels.NewError(channels.ErrorInternal, channels.KindNIN,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	var verifyResp verifyResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		return nil, channels.NewError(channels.ErrorContractMismatch, channels.KindNIN, "failed to parse response", err)
	}

	if (verifyResp.Success != nil && !*verifyResp.Success) ||
		(verifyResp.StatusCode != 0 && verifyResp.StatusCode != http.StatusOK) {
		msg := verifyResp.Message
		if msg == "" {
			msg = "nin verification failed"
		}
		return &channels.Result{Success: false, Message: msg}, nil
	}

	result := &channels.Result{
		Success:    true,
		FirstName:  strings.TrimSpace(verifyResp.Data.FirstName),
		MiddleName: strings.TrimSpace(verifyResp.Data.MiddleName),
		LastName:   strings.TrimSpace(verifyResp.Data.LastName),
	}
	result.FullName = strutil.JoinNonEmpty(result.FirstName, result.MiddleName, result.LastName)

	if verifyResp.Data.DateOfBirth != "" {
		normalized, ok := dates.Normalize(verifyResp.Data.DateOfBirth)
		if !ok {
			c.logger.WarnContext(ctx, "unparseable date of birth from nin channel",
				"raw_format_length", len(verifyResp.Data.DateOfBirth),
			)
		}
		result.Date = normalized
	}

	return result, nil
}

// Health probes the identity service.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return channels.NewError(channels.ErrorServiceOutage, channels.KindNIN, "health check failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return channels.NewError(channels.ErrorServiceOutage, channels.KindNIN,
			fmt.Sprintf("unhealthy status: %d", resp.StatusCode), nil)
	}
	return nil
}
