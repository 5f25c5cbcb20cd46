package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoutpay/internal/onboarding/session"
	"scoutpay/internal/profile/client"
	"scoutpay/internal/profile/store"
	"scoutpay/internal/verification/channels"
	"scoutpay/pkg/requestcontext"
)

type stubBVN struct{}

func (stubBVN) InitiateChallenge(context.Context, string, string) (*channels.Challenge, error) {
	return &channels.Challenge{SessionHandle: "h-1", MaskedDestination: "0803***1234"}, nil
}

func (stubBVN) SubmitCode(context.Context, string, string) (*channels.Result, error) {
	return &channels.Result{Success: true, FirstName: "Ada", LastName: "Obi", FullName: "Ada Obi", Date: "1990-04-02"}, nil
}

type stubNIN struct{}

func (stubNIN) Verify(context.Context, string) (*channels.Result, error) {
	return &channels.Result{Success: true, FullName: "Ada Obi", Date: "1990-04-02"}, nil
}

type stubBank struct{}

func (stubBank) Resolve(context.Context, string, string, string) (*channels.Result, error) {
	return &channels.Result{Success: true, AccountName: "ADA OBI"}, nil
}

type stubBusiness struct{}

func (stubBusiness) Search(context.Context, string) (*channels.Result, error) {
	return &channels.Result{Success: true, FullName: "OBI VENTURES LTD", Date: "2015-06-01"}, nil
}

type stubProfiles struct{}

func (stubProfiles) CreateIndividual(context.Context, client.IndividualProfile) error { return nil }
func (stubProfiles) CreateBusiness(context.Context, client.BusinessProfile) error     { return nil }

type memFlags struct{ flags map[string]store.WalletFlag }

func (m *memFlags) Save(_ context.Context, f store.WalletFlag) error {
	if m.flags == nil {
		m.flags = map[string]store.WalletFlag{}
	}
	m.flags[f.UserID] = f
	return nil
}

func (m *memFlags) Find(_ context.Context, userID string) (*store.WalletFlag, error) {
	f, ok := m.flags[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &f, nil
}

// withUser injects the authenticated user the way the auth middleware would.
func withUser(userID string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(requestcontext.WithUserID(r.Context(), userID)))
	})
}

func newTestServer(t *testing.T, userID string) (*httptest.Server, *memFlags) {
	srv, flags, _ := newTestServerWithRouter(t, userID)
	return srv, flags
}

func newTestServerWithRouter(t *testing.T, userID string) (*httptest.Server, *memFlags, chi.Router) {
	t.Helper()

	flags := &memFlags{}
	mgr := session.NewManager(session.Deps{
		Channels: session.Channels{
			BVN: stubBVN{}, NIN: stubNIN{}, BankAccount: stubBank{}, Business: stubBusiness{},
		},
		Profiles: stubProfiles{},
		Flags:    flags,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: session.Config{
			DigitDebounce:    10 * time.Millisecond,
			BusinessDebounce: 10 * time.Millisecond,
			CallTimeout:      time.Second,
			OTPSessionTTL:    time.Minute,
		},
	}, 0)
	t.Cleanup(mgr.Close)

	h := New(mgr, flags, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)

	srv := httptest.NewServer(withUser(userID, r))
	t.Cleanup(srv.Close)
	return srv, flags, r
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func createSession(t *testing.T, srv *httptest.Server, variant string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/onboarding/sessions",
		map[string]string{"variant": variant, "phoneNumber": "08031234567"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestCreateSessionValidatesVariant(t *testing.T) {
	srv, _ := newTestServer(t, "user-1")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/onboarding/sessions",
		map[string]string{"variant": "corporate"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_error", body["error"])
}

func TestSessionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, "user-1")
	id := createSession(t, srv, "individual")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/onboarding/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "individual", body["variant"])
	assert.Equal(t, false, body["valid"])

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/onboarding/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/onboarding/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionIsScopedToOwner(t *testing.T) {
	srv, _, router := newTestServerWithRouter(t, "user-1")
	id := createSession(t, srv, "individual")

	// Same router, different authenticated user: the session must be invisible.
	otherSrv := httptest.NewServer(withUser("user-2", router))
	t.Cleanup(otherSrv.Close)

	resp, _ := doJSON(t, http.MethodGet, otherSrv.URL+"/onboarding/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFieldInputVerifiesEventually(t *testing.T) {
	srv, _ := newTestServer(t, "user-1")
	id := createSession(t, srv, "individual")

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/onboarding/sessions/"+id+"/fields/nin",
		map[string]string{"value": "12345678901"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		_, body := doJSON(t, http.MethodGet, srv.URL+"/onboarding/sessions/"+id, nil)
		fields, _ := body["fields"].([]any)
		for _, f := range fields {
			m := f.(map[string]any)
			if m["kind"] == "nin" && m["state"] == "verified" {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func TestUnknownFieldKindRejected(t *testing.T) {
	srv, _ := newTestServer(t, "user-1")
	id := createSession(t, srv, "individual")

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/onboarding/sessions/"+id+"/fields/passport",
		map[string]string{"value": "A1234567"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSelectionValidation(t *testing.T) {
	srv, _ := newTestServer(t, "user-1")
	id := createSession(t, srv, "individual")

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/onboarding/sessions/"+id+"/selections/title",
		map[string]string{"value": "Mr"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/onboarding/sessions/"+id+"/selections/title",
		map[string]string{"value": "Sir"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/onboarding/sessions/"+id+"/selections/shoe-size",
		map[string]string{"value": "44"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitIncompleteDraftReturns422(t *testing.T) {
	srv, _ := newTestServer(t, "user-1")
	id := createSession(t, srv, "individual")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/onboarding/sessions/"+id+"/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "not_submittable", body["error"])
}

func TestFullIndividualFlowOverHTTP(t *testing.T) {
	srv, flags := newTestServer(t, "user-1")
	id := createSession(t, srv, "individual")
	base := srv.URL + "/onboarding/sessions/" + id

	resp, _ := doJSON(t, http.MethodPut, base+"/fields/bvn", map[string]string{"value": "12345678901"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Eventually(t, func() bool {
		_, body := doJSON(t, http.MethodGet, base, nil)
		otpView, _ := body["otp"].(map[string]any)
		return otpView["state"] == "sent"
	}, 2*time.Second, 20*time.Millisecond)

	resp, _ = doJSON(t, http.MethodPut, base+"/otp", map[string]string{"code": "123456"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Eventually(t, func() bool {
		_, body := doJSON(t, http.MethodGet, base, nil)
		otpView, _ := body["otp"].(map[string]any)
		return otpView["state"] == "verified"
	}, 2*time.Second, 20*time.Millisecond)

	resp, _ = doJSON(t, http.MethodPut, base+"/fields/nin", map[string]string{"value": "10987654321"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPut, base+"/bank", map[string]string{"bankCode": "058"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPut, base+"/fields/bank_account", map[string]string{"value": "0123456789"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for field, value := range map[string]string{
		"title": "Mrs", "gender": "Female", "marital_status": "Married", "country": "Nigeria",
	} {
		resp, _ = doJSON(t, http.MethodPut, base+"/selections/"+field, map[string]string{"value": value})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	require.Eventually(t, func() bool {
		_, body := doJSON(t, http.MethodGet, base, nil)
		valid, _ := body["valid"].(bool)
		return valid
	}, 2*time.Second, 20*time.Millisecond)

	resp, body := doJSON(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["locked"])

	// Second submit is refused; the flag endpoint now reports the profile.
	resp, _ = doJSON(t, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, ok := flags.flags["user-1"]
	assert.True(t, ok)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/wallet/flag", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["exists"])
	assert.Equal(t, "individual", body["profileType"])
}

func TestWalletFlagAbsent(t *testing.T) {
	srv, _ := newTestServer(t, "user-1")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/wallet/flag", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["exists"])
}

func TestOptionEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, "user-1")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/onboarding/options/banks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	banks, _ := body["banks"].([]any)
	assert.NotEmpty(t, banks)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/onboarding/options/titles", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	options, _ := body["options"].([]any)
	assert.Contains(t, options, "Mr")
}
