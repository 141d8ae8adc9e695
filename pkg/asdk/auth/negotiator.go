package auth

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Negotiator drives the token state machine: no token runs the interactive
// PKCE flow, an expired token is refreshed, a fresh one passes through
// untouched. Safe to call before every authenticated request.
type Negotiator struct {
	cfg        Config
	dispatcher Dispatcher
	hc         *http.Client
	timeout    time.Duration
	now        func() time.Time
}

// NewNegotiator builds a negotiator for cfg. A nil dispatcher selects the
// OS browser; a nil client selects http.DefaultClient.
func NewNegotiator(cfg Config, dispatcher Dispatcher, hc *http.Client) *Negotiator {
	if dispatcher == nil {
		dispatcher = BrowserDispatcher{}
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Negotiator{
		cfg:        cfg,
		dispatcher: dispatcher,
		hc:         hc,
		timeout:    DefaultCodeTimeout,
		now:        time.Now,
	}
}

// RefreshToken returns a token valid right now. With a nil (or empty) token
// the full interactive flow runs; an expired token hits only the refresh
// grant; otherwise the input is returned unchanged with zero I/O.
func (n *Negotiator) RefreshToken(ctx context.Context, tok *Token) (*Token, error) {
	tc := NewTokenClient(n.cfg.TokenURL, n.cfg.ClientID, n.hc)

	if tok == nil || tok.AccessToken == "" {
		code, err := n.fetchCode(ctx)
		if err != nil {
			return nil, err
		}
		return tc.Exchange(ctx, code)
	}
	if tok.IsExpiredAt(n.now()) {
		return tc.Refresh(ctx, *tok)
	}
	return tok, nil
}

// fetchCode owns the whole callback lifecycle for one attempt: bind the
// ephemeral server, dispatch the authorize URL, await the code. The server
// is shut down on every exit path.
func (n *Negotiator) fetchCode(ctx context.Context) (*AuthCode, error) {
	code := NewAuthCode()

	srv, err := StartCallbackServer(n.cfg.CallbackHost(), n.cfg.CallbackPorts(), code, n.cfg.SuccessRedirectURL)
	if err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Close(shutdownCtx)
	}()
	code.SetCallbackURL(srv.URL())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return n.dispatcher.Dispatch(gctx, AuthorizeURL(n.cfg, code))
	})
	g.Go(func() error {
		_, waitErr := code.Wait(gctx, n.timeout)
		return waitErr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return code, nil
}
