package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutpay/pkg/requestcontext"
)

const testKey = "test-signing-key"

func signedToken(t *testing.T, sub string, expiry time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(expiry).Unix(),
	})
	s, err := token.SignedString([]byte(testKey))
	require.NoError(t, err)
	return s
}

func TestValidateToken(t *testing.T) {
	v := NewHMACValidator(testKey)

	claims, err := v.ValidateToken(signedToken(t, "user-1", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestValidateTokenExpired(t *testing.T) {
	v := NewHMACValidator(testKey)

	_, err := v.ValidateToken(signedToken(t, "user-1", -time.Hour))
	assert.Error(t, err)
}

func TestValidateTokenWrongKey(t *testing.T) {
	v := NewHMACValidator("other-key")

	_, err := v.ValidateToken(signedToken(t, "user-1", time.Hour))
	assert.Error(t, err)
}

func TestRequireMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := NewHMACValidator(testKey)

	var gotUserID string
	handler := Require(v, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = requestcontext.UserID(r.Context())
	}))

	// Missing token
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "user-7", time.Hour))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", gotUserID)
}
