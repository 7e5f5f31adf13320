package kiro

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteTransport redirects every outbound request to target's host, so tests can
// stand in a local httptest.Server for the hardcoded production refresh endpoints.
type rewriteTransport struct {
	target *url.URL
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestRefresher(t *testing.T, store *Store, srv *httptest.Server) *Refresher {
	t.Helper()
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	r := NewRefresher(store)
	r.client.Transport = &rewriteTransport{target: target}
	return r
}

func TestRefresh_TruncatedRefreshTokenFailsWithoutHTTPCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := NewStore()
	id, err := store.Create("oauth", &Credential{RefreshToken: "short"})
	require.NoError(t, err, "create_credential only rejects a missing refresh_token, not a short one")

	r := newTestRefresher(t, store, srv)
	_, err = r.Refresh(context.Background(), id)
	require.Error(t, err)
	var kErr *Error
	require.ErrorAs(t, err, &kErr)
	assert.Equal(t, KindTruncatedRefreshToken, kErr.Kind)
	assert.False(t, called, "must not issue an HTTP request for a truncated refresh token")
}

func TestRefresh_IdCMissingClientSecretFailsWithoutHTTPCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := NewStore()
	store.creds["idc"] = &Credential{
		ID:           "idc",
		RefreshToken: longRefreshToken(),
		AuthMethod:   AuthMethodIdC,
		ClientID:     "cid",
		IsHealthy:    true,
	}

	r := newTestRefresher(t, store, srv)
	_, err := r.Refresh(context.Background(), "idc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_secret")
	assert.False(t, called)
}

func TestRefresh_SocialHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"AT","expiresIn":3600}`))
	}))
	defer srv.Close()

	store := NewStore()
	store.creds["social"] = &Credential{
		ID:           "social",
		RefreshToken: longRefreshToken(),
		AuthMethod:   AuthMethodSocial,
		Region:       "us-east-1",
		IsHealthy:    true,
	}

	r := newTestRefresher(t, store, srv)
	result, err := r.Refresh(context.Background(), "social")
	require.NoError(t, err)
	assert.Equal(t, "AT", result.AccessToken)
	require.NotNil(t, result.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(3600*time.Second), *result.ExpiresAt, 5*time.Second)

	c := store.Get("social")
	assert.True(t, c.IsHealthy)
	assert.Equal(t, "AT", c.AccessToken)
	assert.Empty(t, c.LastError)
}

func TestRefresh_NonTwoXXStatusSurfacesRefreshHttpStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid_grant"}`))
	}))
	defer srv.Close()

	store := NewStore()
	store.creds["social"] = &Credential{ID: "social", RefreshToken: longRefreshToken(), AuthMethod: AuthMethodSocial, IsHealthy: true}

	r := newTestRefresher(t, store, srv)
	_, err := r.Refresh(context.Background(), "social")
	require.Error(t, err)
	var kErr *Error
	require.ErrorAs(t, err, &kErr)
	assert.Equal(t, KindRefreshHTTPStatus, kErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, kErr.Status)
}

func TestParseRefreshResponse_PrefersSnakeCaseOverCamelCase(t *testing.T) {
	raw := []byte(`{"access_token":"snake","accessToken":"camel","expires_in":60}`)
	result, err := parseRefreshResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "snake", result.AccessToken)
}

func TestParseRefreshResponse_AcceptsCamelCaseWhenSnakeCaseAbsent(t *testing.T) {
	raw := []byte(`{"accessToken":"camel","refreshToken":"newrefresh","expiresIn":120}`)
	result, err := parseRefreshResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "camel", result.AccessToken)
	assert.Equal(t, "newrefresh", result.RefreshToken)
}

func TestParseRefreshResponse_MissingAccessTokenFails(t *testing.T) {
	_, err := parseRefreshResponse([]byte(`{"expires_in":60}`))
	require.Error(t, err)
	var kErr *Error
	require.ErrorAs(t, err, &kErr)
	assert.Equal(t, KindResponseMissingAccessToken, kErr.Kind)
}
