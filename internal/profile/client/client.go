// Package client calls the wallet service to create wallet profiles.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	dErrors "scoutpay/pkg/domain-errors"
)

// IndividualProfile is the outbound payload for an individual wallet profile.
type IndividualProfile struct {
	UserID        string `json:"userId"`
	Title         string `json:"title"`
	FirstName     string `json:"firstName"`
	MiddleName    string `json:"middleName,omitempty"`
	LastName      string `json:"lastName"`
	Gender        string `json:"gender"`
	MaritalStatus string `json:"maritalStatus"`
	Country       string `json:"country"`
	DateOfBirth   string `json:"dateOfBirth"`
	BVN           string `json:"bvn"`
	NIN           string `json:"nin"`
	BankCode      string `json:"bankCode"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}

// BusinessProfile is the outbound payload for a business wallet profile.
type BusinessProfile struct {
	UserID            string `json:"userId"`
	CompanyName       string `json:"companyName"`
	RCNumber          string `json:"rcNumber"`
	IncorporationDate string `json:"incorporationDate"`
	NatureOfBusiness  string `json:"natureOfBusiness,omitempty"`
	Country           string `json:"country"`
	BankCode          string `json:"bankCode"`
	BankName          string `json:"bankName"`
	AccountNumber     string `json:"accountNumber"`
	AccountName       string `json:"accountName"`
	CACDocumentID     string `json:"cacDocumentId"`
}

// Client implements profile creation against the wallet service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// New creates a wallet profile client.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
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

// CreateIndividual submits an individual wallet profile.
func (c *Client) CreateIndividual(ctx context.Context, profile IndividualProfile) error {
	return c.create(ctx, "/api/v1/profiles/individual", profile)
}

// CreateBusiness submits a business wallet profile.
func (c *Client) CreateBusiness(ctx context.Context, profile BusinessProfile) error {
	return c.create(ctx, "/api/v1/profiles/business", profile)
}

// create posts the payload and maps HTTP failures to domain error categories:
// conflict for an existing profile, validation for bad input, unauthorized for
// an expired session, internal for transient server failures.
func (c *Client) create(ctx context.Context, path string, payload any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode profile payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "profile submission timed out")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "wallet service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	msg := serviceMessage(body)

	switch resp.StatusCode {
	case http.StatusConflict:
		if msg == "" {
			msg = "wallet profile already exists"
		}
		return dErrors.New(dErrors.CodeConflict, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if msg == "" {
			msg = "profile rejected by wallet service"
		}
		return dErrors.New(dErrors.CodeValidation, msg)
	case http.StatusUnauthorized:
		return dErrors.New(dErrors.CodeUnauthorized, "session expired")
	default:
		return dErrors.New(dErrors.CodeInternal,
			fmt.Sprintf("wallet service error: %d", resp.StatusCode))
	}
}

func serviceMessage(body []byte) string {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		return errResp.Error
	}
	return ""
}
