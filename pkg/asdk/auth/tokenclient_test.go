package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apogeehq/apogee/pkg/asdk/aerr"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func fulfilledCode(t *testing.T, value string) *AuthCode {
	t.Helper()
	code := NewAuthCode()
	code.SetCallbackURL(&url.URL{Scheme: "http", Host: "127.0.0.1:54540"})
	require.NoError(t, code.Fulfill(value))
	return code
}

func TestTokenClientExchange(t *testing.T) {
	var got tokenRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "issued-access",
			"expires_in":    1200,
			"refresh_token": "issued-refresh",
		})
	}))
	defer srv.Close()

	code := fulfilledCode(t, "the-code")
	tc := NewTokenClient(mustParse(t, srv.URL), "client-id", nil)

	tok, err := tc.Exchange(context.Background(), code)
	require.NoError(t, err)

	assert.Equal(t, "authorization_code", got.GrantType)
	assert.Equal(t, code.Verifier(), got.CodeVerifier)
	assert.Equal(t, "the-code", got.Code)
	assert.Equal(t, "client-id", got.ClientID)
	assert.Equal(t, "http://127.0.0.1:54540", got.RedirectURI)

	assert.Equal(t, "issued-access", tok.AccessToken)
	assert.Equal(t, "issued-refresh", tok.RefreshToken)
	assert.True(t, tok.ExpirationTime.After(time.Now()))
}

func TestTokenClientExchangeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	tc := NewTokenClient(mustParse(t, srv.URL), "client-id", nil)
	_, err := tc.Exchange(context.Background(), fulfilledCode(t, "x"))
	require.Error(t, err)
	assert.True(t, aerr.IsCode(err, aerr.CodeAuthFailed))
	assert.Contains(t, err.Error(), "failed to get an access token")
}

func TestTokenClientRefreshKeepsOldRefreshToken(t *testing.T) {
	var got tokenRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		// no refresh_token in the response on purpose
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "renewed-access",
			"expires_in":   600,
		})
	}))
	defer srv.Close()

	tc := NewTokenClient(mustParse(t, srv.URL), "client-id", nil)
	old := NewToken("stale-access", 100, "original-refresh", time.Now().Add(-time.Hour))

	next, err := tc.Refresh(context.Background(), old)
	require.NoError(t, err)

	assert.Equal(t, "refresh_token", got.GrantType)
	assert.Equal(t, "original-refresh", got.RefreshToken)
	assert.Equal(t, "client-id", got.ClientID)

	assert.Equal(t, "renewed-access", next.AccessToken)
	assert.Equal(t, "original-refresh", next.RefreshToken, "a missing refresh_token keeps the original")
}

func TestTokenClientRefreshPrefersServerRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "renewed-access",
			"expires_in":    600,
			"refresh_token": "rotated-refresh",
		})
	}))
	defer srv.Close()

	tc := NewTokenClient(mustParse(t, srv.URL), "client-id", nil)
	old := NewToken("stale-access", 100, "original-refresh", time.Now().Add(-time.Hour))

	next, err := tc.Refresh(context.Background(), old)
	require.NoError(t, err)
	assert.Equal(t, "rotated-refresh", next.RefreshToken)
}

func TestTokenClientRefreshServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	tc := NewTokenClient(mustParse(t, srv.URL), "client-id", nil)
	_, err := tc.Refresh(context.Background(), NewToken("a", 100, "r", time.Now()))
	assert.True(t, aerr.IsCode(err, aerr.CodeAuthFailed))
}
