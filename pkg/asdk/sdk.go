package asdk

import (
	"context"
	"net/http"
	"net/url"

	"github.com/apogeehq/apogee/pkg/alog"
	"github.com/apogeehq/apogee/pkg/asdk/auth"
	"github.com/apogeehq/apogee/pkg/asdk/jobs"
)

// Sdk wires config, keyring persistence, and the auth negotiator into a jobs
// client so CLI commands don't assemble those pieces themselves.
type Sdk struct {
	Config *Config
	Jobs   *jobs.Client

	token      *auth.Token
	negotiator *auth.Negotiator
	hc         *http.Client
	log        *alog.Logger
}

// Option customizes SDK construction.
type Option func(*options)

type options struct {
	dispatcher auth.Dispatcher
	hc         *http.Client
	log        *alog.Logger
}

// WithDispatcher overrides how the authorize URL reaches a user agent.
// Headless environments and tests use auth.AutomatedDispatcher.
func WithDispatcher(d auth.Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
}

// WithHTTPClient overrides the HTTP client used for every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.hc = hc }
}

// WithLogger overrides the SDK logger.
func WithLogger(l *alog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New returns an initialized SDK with automatic token refresh. Any token
// persisted from a previous run is picked up from the keyring.
func New(cfg *Config, opts ...Option) (*Sdk, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hc == nil {
		o.hc = http.DefaultClient
	}
	if o.log == nil {
		o.log = alog.NewDefault()
	}

	authCfg, err := cfg.AuthConfig()
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	s := &Sdk{
		Config:     cfg,
		negotiator: auth.NewNegotiator(authCfg, o.dispatcher, o.hc),
		hc:         o.hc,
		log:        o.log,
	}

	tok, err := LoadToken(cfg.BaseURL)
	if err != nil {
		s.log.Warn("could not read cached credentials", "err", err)
	}
	s.token = tok

	s.Jobs = jobs.NewClient(base, o.hc, s.authRequestEditor)
	return s, nil
}

// authRequestEditor renegotiates the token as needed and attaches it as a
// bearer credential. It runs before every authenticated request.
func (s *Sdk) authRequestEditor(ctx context.Context, req *http.Request) error {
	tok, err := s.EnsureToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	return nil
}

// EnsureToken returns a currently valid token, running the interactive flow
// or a refresh when needed and persisting any renewal. A fresh cached token
// is returned as-is with zero I/O.
func (s *Sdk) EnsureToken(ctx context.Context) (*auth.Token, error) {
	next, err := s.negotiator.RefreshToken(ctx, s.token)
	if err != nil {
		return nil, err
	}
	if next != s.token {
		s.token = next
		if err := SaveToken(s.Config.BaseURL, *next); err != nil {
			s.log.Warn("failed to persist token", "err", err)
		}
	}
	return s.token, nil
}

// Login forces a fresh interactive negotiation regardless of cached state
// and persists the result.
func (s *Sdk) Login(ctx context.Context) (*auth.Token, error) {
	tok, err := s.negotiator.RefreshToken(ctx, nil)
	if err != nil {
		return nil, err
	}
	s.token = tok
	if err := SaveToken(s.Config.BaseURL, *tok); err != nil {
		s.log.Warn("failed to persist token", "err", err)
	}
	return tok, nil
}

// Logout drops cached credentials from memory and the keyring.
func (s *Sdk) Logout() error {
	s.token = nil
	return DeleteToken(s.Config.BaseURL)
}

// Token returns the cached token without any network I/O; nil when the user
// has never logged in on this base URL.
func (s *Sdk) Token() *auth.Token {
	return s.token
}
