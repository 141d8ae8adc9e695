package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
)

// Dispatcher delivers the authorize URL to a user agent. Implementations
// must not block the calling goroutine on user interaction; the negotiator
// awaits the authorization code separately.
type Dispatcher interface {
	Dispatch(ctx context.Context, authorizeURL *url.URL) error
}

// AuthorizeURL builds the browser-facing authorization request for one
// negotiation attempt. The callback server must be bound first so the
// redirect_uri is known.
func AuthorizeURL(cfg Config, code *AuthCode) *url.URL {
	u := *cfg.AuthURL
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("code_challenge", code.Challenge())
	q.Set("code_challenge_method", code.ChallengeMethod())
	q.Set("client_id", cfg.ClientID)
	q.Set("redirect_uri", code.CallbackURL().String())
	q.Set("scope", "offline_access")
	q.Set("audience", cfg.Audience)
	u.RawQuery = q.Encode()
	return &u
}

// BrowserDispatcher opens the URL in the OS default browser. The launch is
// fire-and-forget in its own goroutine so a slow or hung browser never
// stalls the negotiation.
type BrowserDispatcher struct{}

func (BrowserDispatcher) Dispatch(ctx context.Context, u *url.URL) error {
	go func() {
		_ = openBrowser(u.String())
	}()
	return nil
}

func openBrowser(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}

// AutomatedDispatcher performs the authorize request itself, following
// redirects through the callback server. Used by headless flows and tests.
type AutomatedDispatcher struct {
	Client *http.Client
}

func (d AutomatedDispatcher) Dispatch(ctx context.Context, u *url.URL) error {
	hc := d.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(io.Discard, resp.Body)
	return err
}

// AnnouncedDispatcher writes the authorize URL to W before delegating, so
// users can complete the hop by hand when the browser launch goes nowhere.
type AnnouncedDispatcher struct {
	Next Dispatcher
	W    io.Writer
}

func (d AnnouncedDispatcher) Dispatch(ctx context.Context, u *url.URL) error {
	fmt.Fprintf(d.W, "Your browser has been opened to sign in:\n\n  %s\n\n", u)
	return d.Next.Dispatch(ctx, u)
}
