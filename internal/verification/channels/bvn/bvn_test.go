package bvn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutpay/internal/verification/channels"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key", 5*time.Second)
}

func TestInitiateChallengeRequiresPhoneNumber(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.InitiateChallenge(context.Background(), "12345678901", "")
	require.Error(t, err)
	assert.Equal(t, channels.ErrorPrecondition, channels.Category(err))
	assert.Equal(t, "phone number required", channels.UserMessage(err))
	assert.False(t, called, "no network call for missing phone number")
}

func TestInitiateChallengeSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bvn/initiate", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "12345678901", req["bvn"])
		assert.Equal(t, "08012345678", req["phoneNumber"])

		json.NewEncoder(w).Encode(map[string]string{
			"message":     "OTP sent to registered phone",
			"sessionId":   "abc123",
			"phoneNumber": "*******76576",
		})
	})

	challenge, err := client.InitiateChallenge(context.Background(), "12345678901", "08012345678")
	require.NoError(t, err)
	assert.Equal(t, "abc123", challenge.SessionHandle)
	assert.Equal(t, "*******76576", challenge.MaskedDestination)
}

func TestInitiateChallengeNoOTPMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"message":   "request received",
			"sessionId": "abc123",
		})
	})

	_, err := client.InitiateChallenge(context.Background(), "12345678901", "08012345678")
	require.Error(t, err)
	assert.Equal(t, channels.ErrorContractMismatch, channels.Category(err))
}

func TestSubmitCodeRejectsMalformedCodeLocally(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		_, err := client.SubmitCode(context.Background(), "abc123", code)
		require.Error(t, err, "code %q", code)
		assert.Equal(t, channels.ErrorPrecondition, channels.Category(err))
	}
	assert.False(t, called, "no network call for malformed codes")
}

func TestSubmitCodeExtractsNestedDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bvn/verify", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"statusCode": 200,
			"bvnDetails": map[string]string{
				"firstName":   "John",
				"middleName":  "A",
				"lastName":    "Doe",
				"dateOfBirth": "17-04-2002",
			},
		})
	})

	result, err := client.SubmitCode(context.Background(), "abc123", "123456")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "John A Doe", result.FullName)
	assert.Equal(t, "2002-04-17", result.Date)
}

func TestSubmitCodeExtractsDirectFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"statusCode":  200,
			"firstName":   "Jane",
			"lastName":    "Smith",
			"dateOfBirth": "2000-01-02",
		})
	})

	result, err := client.SubmitCode(context.Background(), "abc123", "123456")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Jane Smith", result.FullName)
	assert.Equal(t, "2000-01-02", result.Date)
}

func TestSubmitCodeRejectedByService(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Invalid OTP",
		})
	})

	result, err := client.SubmitCode(context.Background(), "abc123", "123456")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid OTP", result.Message)
}

func TestTransportFailureCategories(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   channels.ErrorCategory
	}{
		{"unauthorized", http.StatusUnauthorized, channels.ErrorAuthentication},
		{"not found", http.StatusNotFound, channels.ErrorNotFound},
		{"rate limited", http.StatusTooManyRequests, channels.ErrorRateLimited},
		{"unavailable", http.StatusServiceUnavailable, channels.ErrorServiceOutage},
		{"teapot", http.StatusTeapot, channels.ErrorInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.SubmitCode(context.Background(), "abc123", "123456")
			require.Error(t, err)
			assert.Equal(t, tt.want, channels.Category(err))
		})
	}
}
