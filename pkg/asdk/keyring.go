package asdk

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/apogeehq/apogee/pkg/asdk/auth"
)

const keyringService = "apogee"

// storedToken is the JSON blob persisted in the OS keyring between process
// runs.
type storedToken struct {
	AccessToken    string    `json:"access_token"`
	ExpirationTime time.Time `json:"expiration_time"`
	RefreshToken   string    `json:"refresh_token"`
}

// normalizeKey converts a baseURL into a stable keyring entry name: trailing
// slashes trimmed and lowercased to avoid accidental duplicates like
// https://example.com/ and https://example.com.
func normalizeKey(baseURL string) string {
	s := strings.TrimSpace(baseURL)
	s = strings.TrimRight(s, "/")
	s = strings.ToLower(s)
	return s
}

// SaveToken stores the token under the normalized baseURL key.
func SaveToken(baseURL string, tok auth.Token) error {
	blob, err := json.Marshal(storedToken{
		AccessToken:    tok.AccessToken,
		ExpirationTime: tok.ExpirationTime,
		RefreshToken:   tok.RefreshToken,
	})
	if err != nil {
		return err
	}
	return keyring.Set(keyringService, normalizeKey(baseURL), string(blob))
}

// LoadToken retrieves the token stored for the given baseURL. A missing
// entry returns (nil, nil); other keyring errors are surfaced.
func LoadToken(baseURL string) (*auth.Token, error) {
	blob, err := keyring.Get(keyringService, normalizeKey(baseURL))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var stored storedToken
	if err := json.Unmarshal([]byte(blob), &stored); err != nil {
		return nil, err
	}
	return &auth.Token{
		AccessToken:    stored.AccessToken,
		ExpirationTime: stored.ExpirationTime,
		RefreshToken:   stored.RefreshToken,
	}, nil
}

// DeleteToken removes the entry for the given baseURL. A convenience for
// logout flows; missing entries are not an error.
func DeleteToken(baseURL string) error {
	err := keyring.Delete(keyringService, normalizeKey(baseURL))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
