// Package business implements the business registry search channel used to
// verify RC numbers and registered business names.
package business

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
)

// successMessage is the exact message the registry returns on a confirmed match.
const successMessage = "Successful Business Verification"

// Client implements channels.BusinessChannel against the business registry.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ channels.BusinessChannel = (*Client)(nil)

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

// NewClient creates a business registry client.
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

type searchRequest struct {
	SearchTerm string `json:"searchTerm"`
	SearchType string `json:"searchType"`
}

type searchResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       struct {
		ApprovedName            string `json:"approvedName"`
		CompanyRegistrationDate string `json:"companyRegistrationDate"`
		NatureOfBusiness        string `json:"natureOfBusiness"`
	} `json:"data"`
}

// Search looks up a business by RC number or name.
//
// The registry's optional fields (approved name, incorporation date, nature of
// business) are each bound independently; absent fields are left for manual
// entry by the caller.
func (c *Client) Search(ctx context.Context, searchTerm string) (*channels.Result, error) {
	term := strings.TrimSpace(searchTerm)
	if len(term) < 3 {
		return nil, channels.NewError(
			channels.ErrorPrecondition,
			channels.KindBusiness,
			"search term too short",
			nil,
		)
	}

	reqBody, err := json.Marshal(searchRequest{SearchTerm: term, SearchType: "registration_number"})
	if err != nil {
		return nil, channels.NewError(channels.ErrorInternal, channels.KindBusiness, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/business/search", bytes.NewReader(reqBody))
	if err != nil {
		return nil, channels.NewError(channels.ErrorInternal, channels.KindBusiness, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, channels.NewError(channels.ErrorTimeout, channels.KindBusiness, "request timeout", err)
		}
		return nil, channels.NewError(channels.ErrorServiceOutage, channels.KindBusiness, "failed to execute request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, channels.NewError(channels.ErrorInternal, channels.KindBusiness, "failed to read response body", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Continue to parse.
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, channels.NewError(channels.ErrorAuthentication, channels.KindBusiness, "authentication failed", nil)
	case http.StatusNotFound:
		// The registry signals its own unavailability with a 404.
		return nil, channels.NewError(channels.ErrorServiceOutage, channels.KindBusiness, "registry service unavailable", nil)
	case http.StatusTooManyRequests:
		return nil, channels.NewError(channels.ErrorRateLimited, channels.KindBusiness, "rate limited", nil)
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, channels.NewError(channels.ErrorServiceOutage, channels.KindBusiness, "registry service unavailable", nil)
	default:
		return nil, channels.NewError(channels.ErrorInternal, channels.KindBusiness,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, channels.NewError(channels.ErrorContractMismatch, channels.KindBusiness, "failed to parse response", err)
	}

	if (searchResp.StatusCode != http.StatusOK && searchResp.StatusCode != http.StatusCreated) ||
		searchResp.Message != successMessage {
		msg := searchResp.Message
		if msg == "" {
			msg = "business verification failed"
		}
		return &channels.Result{Success: false, Message: msg}, nil
	}

	result := &channels.Result{
		Success:          true,
		FullName:         strings.TrimSpace(searchResp.Data.ApprovedName),
		NatureOfBusiness: strings.TrimSpace(searchResp.Data.NatureOfBusiness),
	}

	if searchResp.Data.CompanyRegistrationDate != "" {
		normalized, ok := dates.Normalize(searchResp.Data.CompanyRegistrationDate)
		if !ok {
			c.logger.WarnContext(ctx, "unparseable incorporation date from registry",
				"raw_format_length", len(searchResp.Data.CompanyRegistrationDate),
			)
		}
		result.Date = normalized
	}

	return result, nil
}

// Health probes the business registry.
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
		return channels.NewError(channels.ErrorServiceOutage, channels.KindBusiness, "health check failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return channels.NewError(channels.ErrorServiceOutage, channels.KindBusiness,
			fmt.Sprintf("unhealthy status: %d", resp.StatusCode), nil)
	}
	return nil
}
