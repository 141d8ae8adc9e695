package auth

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/apogeehq/apogee/pkg/asdk/aerr"
)

// DefaultCodeTimeout bounds how long a negotiation waits for the user to
// finish the browser hop.
const DefaultCodeTimeout = 60 * time.Second

type codeState int

const (
	statePending codeState = iota
	stateFulfilled
	stateCancelled
)

// AuthCode is the one-shot handoff between the callback handler (producer)
// and the negotiator (consumer). The verifier/challenge pair is fixed at
// construction and the value slot is single-assignment: once fulfilled or
// cancelled the outcome never changes. One instance serves exactly one
// negotiation attempt.
type AuthCode struct {
	verifier        string
	challenge       string
	challengeMethod string

	mu          sync.Mutex
	state       codeState
	value       string
	done        chan struct{}
	callbackURL *url.URL
}

// NewAuthCode generates a verifier/challenge pair and an empty value slot.
func NewAuthCode() *AuthCode {
	verifier := GenerateVerifier()
	return &AuthCode{
		verifier:        verifier,
		challenge:       GenerateChallenge(verifier),
		challengeMethod: "S256",
		done:            make(chan struct{}),
	}
}

func (c *AuthCode) Verifier() string { return c.verifier }

func (c *AuthCode) Challenge() string { return c.challenge }

func (c *AuthCode) ChallengeMethod() string { return c.challengeMethod }

// SetCallbackURL records where the ephemeral server ended up listening.
// Assigned once, right after bind.
func (c *AuthCode) SetCallbackURL(u *url.URL) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbackURL = u
}

// CallbackURL returns the redirect_uri for this attempt, or nil before the
// callback server has bound.
func (c *AuthCode) CallbackURL() *url.URL {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callbackURL
}

// Fulfill resolves the waiter with the authorization code. Resolving twice
// is a programming error and is reported rather than overwriting the first
// value.
func (c *AuthCode) Fulfill(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != statePending {
		return errors.New("authorization code already resolved")
	}
	c.state = stateFulfilled
	c.value = value
	close(c.done)
	return nil
}

// Cancel fails the waiter. Calling Cancel after resolution is a no-op.
func (c *AuthCode) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != statePending {
		return
	}
	c.state = stateCancelled
	close(c.done)
}

// Wait blocks until the code arrives, the context is cancelled, or the
// timeout elapses. A non-positive timeout selects DefaultCodeTimeout.
// Wait may be called again after fulfillment and returns the same value.
func (c *AuthCode) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultCodeTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-c.done:
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state != stateFulfilled {
			return "", aerr.Errorf(aerr.CodeAuthTimeout, "failed to get an authorization code")
		}
		return c.value, nil
	case <-ctx.Done():
		return "", aerr.New(aerr.CodeAuthTimeout, ctx.Err())
	case <-timer.C:
		return "", aerr.Errorf(aerr.CodeAuthTimeout, "failed to get an authorization code")
	}
}
