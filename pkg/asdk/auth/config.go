package auth

import (
	"net/url"
	"strconv"
)

// Config is the immutable endpoint configuration for one auth session,
// usually built from server discovery metadata.
type Config struct {
	AuthURL  *url.URL
	TokenURL *url.URL

	ClientID string
	Audience string

	// CallbackURLs are tried in list order; the first port that binds wins.
	CallbackURLs []*url.URL

	// SuccessRedirectURL, when set, is where the browser is sent after a
	// successful callback instead of the plain "OK" page.
	SuccessRedirectURL *url.URL
}

// NewConfig derives the authorize and token endpoints from the auth server
// base URL and fills in the default loopback callback candidates.
func NewConfig(base *url.URL, clientID, audience string) Config {
	return Config{
		AuthURL:      base.JoinPath("authorize"),
		TokenURL:     base.JoinPath("oauth", "token"),
		ClientID:     clientID,
		Audience:     audience,
		CallbackURLs: DefaultCallbackURLs(),
	}
}

// DefaultCallbackURLs returns the standard loopback candidates. A fresh
// slice per call so callers can modify their copy.
func DefaultCallbackURLs() []*url.URL {
	return []*url.URL{
		{Scheme: "http", Host: "127.0.0.1:54540"},
		{Scheme: "http", Host: "127.0.0.1:54541"},
		{Scheme: "http", Host: "127.0.0.1:54542"},
	}
}

// CallbackHost is the bind host shared by all callback candidates.
func (c Config) CallbackHost() string {
	if len(c.CallbackURLs) == 0 {
		return "127.0.0.1"
	}
	return c.CallbackURLs[0].Hostname()
}

// CallbackPorts lists the candidate ports in configured order.
func (c Config) CallbackPorts() []int {
	ports := make([]int, 0, len(c.CallbackURLs))
	for _, u := range c.CallbackURLs {
		if p, err := strconv.Atoi(u.Port()); err == nil {
			ports = append(ports, p)
		}
	}
	return ports
}
