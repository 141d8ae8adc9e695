package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/apogeehq/apogee/pkg/asdk/aerr"
)

// TokenClient talks to the OAuth token endpoint. Both grants POST a JSON
// body; the platform auth server does not use form encoding.
type TokenClient struct {
	endpoint *url.URL
	clientID string
	hc       *http.Client
	now      func() time.Time
}

func NewTokenClient(endpoint *url.URL, clientID string, hc *http.Client) *TokenClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &TokenClient{endpoint: endpoint, clientID: clientID, hc: hc, now: time.Now}
}

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	CodeVerifier string `json:"code_verifier,omitempty"`
	Code         string `json:"code,omitempty"`
	ClientID     string `json:"client_id"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// Exchange swaps a fulfilled authorization code for the first token. It
// waits on the code if the callback has not landed yet.
func (c *TokenClient) Exchange(ctx context.Context, code *AuthCode) (*Token, error) {
	value, err := code.Wait(ctx, 0)
	if err != nil {
		return nil, err
	}
	resp, err := c.post(ctx, tokenRequest{
		GrantType:    "authorization_code",
		CodeVerifier: code.Verifier(),
		Code:         value,
		ClientID:     c.clientID,
		RedirectURI:  code.CallbackURL().String(),
	})
	if err != nil {
		return nil, err
	}
	tok := NewToken(resp.AccessToken, resp.ExpiresIn, resp.RefreshToken, c.now())
	return &tok, nil
}

// Refresh renews a token via the refresh_token grant. Servers may omit a new
// refresh_token from the response; the original one is kept in that case, and
// a server-provided one wins.
func (c *TokenClient) Refresh(ctx context.Context, tok Token) (*Token, error) {
	resp, err := c.post(ctx, tokenRequest{
		GrantType:    "refresh_token",
		RefreshToken: tok.RefreshToken,
		ClientID:     c.clientID,
	})
	if err != nil {
		return nil, err
	}
	refresh := resp.RefreshToken
	if refresh == "" {
		refresh = tok.RefreshToken
	}
	next := NewToken(resp.AccessToken, resp.ExpiresIn, refresh, c.now())
	return &next, nil
}

func (c *TokenClient) post(ctx context.Context, payload tokenRequest) (*tokenResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, aerr.Errorf(aerr.CodeAuthFailed, "failed to get an access token")
	}
	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, aerr.New(aerr.CodeAuthFailed, err)
	}
	return &out, nil
}
