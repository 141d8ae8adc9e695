package auth

import (
	"time"
)

// expirationRatio shortens the advertised token lifetime so a refresh
// happens well before the server-side expiry.
const expirationRatio = 0.75

// Token is an issued access token together with its proactive expiration
// and the refresh token used to renew it. Tokens are immutable values;
// refreshing produces a new one.
type Token struct {
	AccessToken    string
	ExpirationTime time.Time
	RefreshToken   string
}

// NewToken applies the early-expiry margin to expires_in (seconds) relative
// to now.
func NewToken(accessToken string, expiresIn int, refreshToken string, now time.Time) Token {
	margin := time.Duration(float64(expiresIn)*expirationRatio) * time.Second
	return Token{
		AccessToken:    accessToken,
		ExpirationTime: now.Truncate(time.Second).Add(margin),
		RefreshToken:   refreshToken,
	}
}

// IsExpiredAt reports whether the token should be refreshed at the given
// instant. The expiration boundary itself counts as expired.
func (t Token) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpirationTime)
}
