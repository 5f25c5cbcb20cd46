// Package bvn implements the two-phase BVN verification channel: an OTP
// challenge is initiated against the number's registered phone, then the
// submitted code resolves the owner's identity.
package bvn

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

// CodeLength is the exact number of digits in a BVN OTP code.
const CodeLength = 6

// Client implements channels.BVNChannel against the identity service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ channels.BVNChannel = (*Client)(nil)

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

// NewClient creates a BVN channel client.
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

type initiateRequest struct {
	BVN         string `json:"bvn"`
	PhoneNumber string `json:"phoneNumber"`
}

// initiateResponse tolerates the shapes the identity service has been seen to
// return: the masked destination may appear under either phone field.
type initiateResponse struct {
	Message           string `json:"message"`
	SessionID         string `json:"sessionId"`
	PhoneNumber       string `json:"phoneNumber"`
	MaskedPhoneNumber string `json:"maskedPhoneNumber"`
}

type submitRequest struct {
	SessionID string `json:"sessionId"`
	Code      string `json:"otp"`
}

// identityDetails is the name/date payload, wherever the service nests it.
type identityDetails struct {
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
}

func (d identityDetails) empty() bool {
	return d.FirstName == "" && d.MiddleName == "" && d.LastName == "" && d.DateOfBirth == ""
}

// submitResponse accepts identity details directly, under bvnDetails, or
// under data, depending on the service version.
type submitResponse struct {
	Success    *bool  `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	identityDetails
	BVNDetails identityDetails `json:"bvnDetails"`
	Data       identityDetails `json:"data"`
}

// InitiateChallenge starts the OTP exchange for the given BVN.
//
// A missing or malformed phone number fails locally with an explicit
// precondition error; no network call is made.
func (c *Client) InitiateChallenge(ctx context.Context, bvn, phoneNumber string) (*channels.Challenge, error) {
	phone := strutil.DigitsOnly(phoneNumber)
	if len(phone) < 10 {
		return nil, channels.NewError(
			channels.ErrorPrecondition,
			channels.KindBVN,
			"phone number required",
			nil,
		)
	}

	body, err := c.postJSON(ctx, "/api/v1/bvn/initiate", initiateRequest{BVN: bvn, PhoneNumber: phone})
	if err != nil {
		return nil, err
	}

	var resp initiateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, channels.NewError(
			channels.ErrorContractMismatch,
			channels.KindBVN,
			"failed to parse initiate response",
			err,
		)
	}

	// The service signals success by a message mentioning OTP; anything else
	// with a 2xx status is a contract drift we refuse to act on.
	if resp.SessionID == "" || !strings.Contains(strings.ToUpper(resp.Message), "OTP") {
		return nil, channels.NewError(
			channels.ErrorContractMismatch,
			channels.KindBVN,
			"challenge was not issued",
			nil,
		)
	}

	masked := resp.MaskedPhoneNumber
	if masked == "" {
		masked = resp.PhoneNumber
	}

	return &channels.Challenge{
		SessionHandle:     resp.SessionID,
		MaskedDestination: masked,
	}, nil
}

// SubmitCode resolves the challenge with the user-entered code.
//
// Codes that are not exactly six digits fail locally; no network call is made.
func (c *Client) SubmitCode(ctx context.Context, sessionHandle, code string) (*channels.Result, error) {
	if len(code) != CodeLength || strutil.DigitsOnly(code) != code {
		return nil, channels.NewError(
			channels.ErrorPrecondition,
			channels.KindBVN,
			fmt.Sprintf("otp code must be exactly %d digits", CodeLength),
			nil,
		)
	}
	if sessionHandle == "" {
		return nil, channels.NewError(
			channels.ErrorPrecondition,
			channels.KindBVN,
			"otp challenge not initiated",
			nil,
		)
	}

	body, err := c.postJSON(ctx, "/api/v1/bvn/verify", submitRequest{SessionID: sessionHandle, Code: code})
	if err != nil {
		return nil, err
	}

	var resp submitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, channels.NewError(
			channels.ErrorContractMismatch,
			channels.KindBVN,
			"failed to parse verify response",
			err,
		)
	}

	if (resp.Success != nil && !*resp.Success) || (resp.StatusCode != 0 && resp.StatusCode != http.StatusOK) {
		msg := resp.Message
		if msg == "" {
			msg = "otp code rejected"
		}
		return &channels.Result{Success: false, Message: msg}, nil
	}

	details := resp.identityDetails
	if details.empty() {
		details = resp.BVNDetails
	}
	if details.empty() {
		details = resp.Data
	}

	result := &channels.Result{
		Success:    true,
		FirstName:  strings.TrimSpace(details.FirstName),
		MiddleName: strings.TrimSpace(details.MiddleName),
		LastName:   strings.TrimSpace(details.LastName),
	}
	result.FullName = strutil.JoinNonEmpty(result.FirstName, result.MiddleName, result.LastName)

	if details.DateOfBirth != "" {
		normalized, ok := dates.Normalize(details.DateOfBirth)
		if !ok {
			c.logger.WarnContext(ctx, "unparseable date of birth from bvn channel",
				"raw_format_length", len(details.DateOfBirth),
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
		return channels.NewError(channels.ErrorServiceOutage, channels.KindBVN, "health check failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return channels.NewError(channels.ErrorServiceOutage, channels.KindBVN,
			fmt.Sprintf("unhealthy status: %d", resp.StatusCode), nil)
	}
	return nil
}

// postJSON executes one POST and maps transport and status failures to the
// normalized channel error taxonomy. Callers parse the returned body.
func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, channels.NewError(channels.ErrorInternal, channels.KindBVN, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, channels.NewError(channels.ErrorInternal, channels.KindBVN, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, channels.NewError(channels.ErrorTimeout, channels.KindBVN, "request timeout", err)
		}
		return nil, channels.NewError(channels.ErrorServiceOutage, channels.KindBVN, "failed to execute request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, channels.NewError(channels.ErrorInternal, channels.KindBVN, "failed to read response body", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return body, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, channels.NewError(channels.ErrorAuthentication, channels.KindBVN, "authentication failed", nil)
	case http.StatusBadRequest:
		return nil, channels.NewError(channels.ErrorBadData, channels.KindBVN, serviceMessage(body, "invalid bvn request"), nil)
	case http.StatusNotFound:
		return nil, channels.NewError(channels.ErrorNotFound, channels.KindBVN, "bvn record not found", nil)
	case http.StatusTooManyRequests:
		return nil, channels.NewError(channels.ErrorRateLimited, channels.KindBVN, "rate limited", nil)
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, channels.NewError(channels.ErrorServiceOutage, channels.KindBVN, "identity service unavailable", nil)
	default:
		return nil, channels.NewError(channels.ErrorInternal, channels.KindBVN,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}
}

// serviceMessage extracts a message from an error body, falling back when the
// body is not the expected shape.
func serviceMessage(body []byte, fallback string) string {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	return fallback
}
