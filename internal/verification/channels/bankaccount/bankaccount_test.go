package bankaccount

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

func TestResolveRequiresBankCode(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Resolve(context.Background(), "", "First Bank", "0123456789")
	require.Error(t, err)
	assert.Equal(t, channels.ErrorPrecondition, channels.Category(err))
	assert.False(t, called, "no network call without a bank code")
}

func TestResolveTopLevelAccountName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "011", req["bankCode"])
		assert.Equal(t, "0123456789", req["accountNumber"])

		json.NewEncoder(w).Encode(map[string]string{"accountName": "JOHN A DOE"})
	})

	result, err := client.Resolve(context.Background(), "011", "First Bank", "0123456789")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "JOHN A DOE", result.AccountName)
}

func TestResolveNestedAccountName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"accountName": "JANE SMITH"},
		})
	})

	result, err := client.Resolve(context.Background(), "011", "First Bank", "0123456789")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "JANE SMITH", result.AccountName)
}

func TestResolveMissingAccountNameIsFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "no match"})
	})

	result, err := client.Resolve(context.Background(), "011", "First Bank", "0123456789")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "no match", result.Message)
	assert.Empty(t, result.AccountName)
}

func TestResolveNotFoundIsStructuredFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	result, err := client.Resolve(context.Background(), "011", "First Bank", "0123456789")
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestResolveOutage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Resolve(context.Background(), "011", "First Bank", "0123456789")
	require.Error(t, err)
	assert.Equal(t, channels.ErrorServiceOutage, channels.Category(err))
}
