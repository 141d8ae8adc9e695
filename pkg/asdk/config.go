package asdk

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/apogeehq/apogee/pkg/asdk/auth"
)

// AuthSettings is the endpoint configuration for the interactive login flow,
// normally delivered by server discovery and cached in the config file.
type AuthSettings struct {
	URL             string `mapstructure:"url"`
	ClientID        string `mapstructure:"clientId"`
	Audience        string `mapstructure:"audience"`
	CallbackPorts   []int  `mapstructure:"callbackPorts"`
	SuccessRedirect string `mapstructure:"successRedirect"`
}

// Config carries the resolved client configuration. Each instance owns its
// viper; there is no global state.
type Config struct {
	BaseURL    string       `mapstructure:"baseUrl"`
	APIVersion string       `mapstructure:"apiVersion"`
	Username   string       `mapstructure:"username"`
	Auth       AuthSettings `mapstructure:"auth"`

	v *viper.Viper
}

const (
	EnvPrefix  = "APOGEE"
	ConfigName = "apogee"
	ConfigRoot = ".apogee"

	BaseURLKey    = "baseUrl"
	APIVersionKey = "apiVersion"
)

// LoadConfig creates a new Config instance with its own viper. Project file
// (apogee.yaml) first, then local untracked overrides (.apogee/config.yaml),
// then environment (APOGEE_*).
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	} else {
		for _, name := range []string{"apogee.yaml", "apogee.yml", ".apogee.yaml"} {
			if _, err := os.Stat(name); err == nil {
				v.SetConfigFile(name)
				if err := v.ReadInConfig(); err == nil {
					break
				}
			}
		}

		localConfigPath := filepath.Join(ConfigRoot, "config.yaml")
		if _, err := os.Stat(localConfigPath); err == nil {
			v.SetConfigFile(localConfigPath)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("merging local config: %w", err)
			}
		}
	}

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.v = v
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	if !v.IsSet(BaseURLKey) {
		v.SetDefault(BaseURLKey, "http://localhost:8080")
	} else {
		normalized := strings.TrimRight(v.GetString(BaseURLKey), "/")
		v.Set(BaseURLKey, normalized)
	}
	if !v.IsSet(APIVersionKey) {
		v.SetDefault(APIVersionKey, "v1")
	}
	if !v.IsSet("auth.url") {
		v.SetDefault("auth.url", v.GetString(BaseURLKey))
	}
	if !v.IsSet("auth.callbackPorts") {
		v.SetDefault("auth.callbackPorts", []int{54540, 54541, 54542})
	}
}

// AuthConfig materializes the auth.Config used by the negotiator.
func (c *Config) AuthConfig() (auth.Config, error) {
	base, err := url.Parse(c.Auth.URL)
	if err != nil {
		return auth.Config{}, fmt.Errorf("invalid auth url %q: %w", c.Auth.URL, err)
	}
	cfg := auth.NewConfig(base, c.Auth.ClientID, c.Auth.Audience)

	if len(c.Auth.CallbackPorts) > 0 {
		urls := make([]*url.URL, 0, len(c.Auth.CallbackPorts))
		for _, port := range c.Auth.CallbackPorts {
			urls = append(urls, &url.URL{Scheme: "http", Host: fmt.Sprintf("127.0.0.1:%d", port)})
		}
		cfg.CallbackURLs = urls
	}
	if c.Auth.SuccessRedirect != "" {
		redirect, err := url.Parse(c.Auth.SuccessRedirect)
		if err != nil {
			return auth.Config{}, fmt.Errorf("invalid success redirect %q: %w", c.Auth.SuccessRedirect, err)
		}
		cfg.SuccessRedirectURL = redirect
	}
	return cfg, nil
}

// Get returns a value from the underlying viper instance. Useful for CLI
// flag binding and dynamic config access.
func (c *Config) Get(key string) interface{} {
	if c.v == nil {
		return nil
	}
	return c.v.Get(key)
}

// GetString returns a string value from the underlying viper instance.
func (c *Config) GetString(key string) string {
	if c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

// Viper returns the underlying viper instance.
func (c *Config) Viper() *viper.Viper {
	return c.v
}

// ConfigFileUsed returns the config file that was used (if any).
func (c *Config) ConfigFileUsed() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}
