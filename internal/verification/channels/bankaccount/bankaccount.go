// Package bankaccount implements the account-number-to-name resolution channel.
package bankaccount

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scoutpay/internal/verification/channels"
)

// Client implements channels.BankAccountChannel against the wallet service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ channels.BankAccountChannel = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a bank account resolution client.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type resolveRequest struct {
	BankCode      string `json:"bankCode"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
}

// resolveResponse tolerates the account name at top level or under data.
type resolveResponse struct {
	AccountName string `json:"accountName"`
	Message     string `json:"message"`
	Data        struct {
		AccountName string `json:"accountName"`
	} `json:"data"`
}

// Resolve maps an account number to its registered account name.
//
// Selecting a bank is a precondition: an absent bank code fails locally with
// no network call.
func (c *Client) Resolve(ctx context.Context, bankCode, bankName, accountNumber string) (*channels.Result, error) {
	if bankCode == "" {
		return nil, channels.NewError(
			channels.ErrorPrecondition,
			channels.KindBankAccount,
			"select a bank first",
			nil,
		)
	}

	reqBody, err := json.Marshal(resolveRequest{
		BankCode:      bankCode,
		BankName:      bankName,
		AccountNumber: accountNumber,
	})
	if err != nil {
		return nil, channels.NewError(channels.ErrorInternal, channels.KindBankAccount, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/accounts/resolve", bytes.NewReader(reqBody))
	if err != nil {
		return nil, channels.NewError(channels.ErrorInternal, channels.KindBankAccount, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, channels.NewError(channels.ErrorTimeout, channels.KindBankAccount, "request timeout", err)
		}
		return nil, channels.NewError(channels.ErrorServiceOutage, channels.KindBankAccount, "failed to execute request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, channels.NewError(channels.ErrorInternal, channels.KindBankAccount, "failed to read response body", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// Continue to parse.
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, channels.NewError(channels.ErrorAuthentication, channels.KindBankAccount, "authentication failed", nil)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &channels.Result{Success: false, Message: "account could not be resolved"}, nil
	case http.StatusNotFound:
		return &channels.Result{Success: false, Message: "account not found at selected bank"}, nil
	case http.StatusTooManyRequests:
		return nil, channels.NewError(channels.ErrorRateLimited, channels.KindBankAccount, "rate limited", nil)
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, channels.NewError(channels.ErrorServiceOutage, channels.KindBankAccount, "wallet service unavailable", nil)
	default:
		return nil, channels.NewError(channels.ErrorInternal, channels.KindBankAccount,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	var resolveResp resolveResponse
	if err := json.Unmarshal(body, &resolveResp); err != nil {
		return nil, channels.NewError(channels.ErrorContractMismatch, channels.KindBankAccount, "failed to parse response", err)
	}

	accountName := strings.TrimSpace(resolveResp.AccountName)
	if accountName == "" {
		accountName = strings.TrimSpace(resolveResp.Data.AccountName)
	}
	if accountName == "" {
		// A 200 without an account name means the resolution did not match.
		msg := resolveResp.Message
		if msg == "" {
			msg = "account could not be resolved"
		}
		return &channels.Result{Success: false, Message: msg}, nil
	}

	return &channels.Result{
		Success:     true,
		AccountName: accountName,
	}, nil
}

// Health probes the wallet service.
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
		return channels.NewError(channels.ErrorServiceOutage, channels.KindBankAccount, "health check failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return channels.NewError(channels.ErrorServiceOutage, channels.KindBankAccount,
			fmt.Sprintf("unhealthy status: %d", resp.StatusCode), nil)
	}
	return nil
}
