package asdk

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_ProjectConfig(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	projectConfig := `
baseUrl: http://example.com:3000
apiVersion: v2
`
	os.WriteFile("apogee.yaml", []byte(projectConfig), 0644)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.BaseURL != "http://example.com:3000" {
		t.Errorf("Expected baseUrl http://example.com:3000, got %s", cfg.BaseURL)
	}

	if cfg.APIVersion != "v2" {
		t.Errorf("Expected apiVersion v2, got %s", cfg.APIVersion)
	}
}

func TestLoadConfig_LocalOverride(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	projectConfig := `
baseUrl: http://example.com:3000
apiVersion: v1
`
	os.WriteFile("apogee.yaml", []byte(projectConfig), 0644)

	os.MkdirAll(ConfigRoot, 0755)
	localConfig := `
baseUrl: http://localhost:8080
apiVersion: v2
`
	os.WriteFile(filepath.Join(ConfigRoot, "config.yaml"), []byte(localConfig), 0644)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// Local override should win
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("Expected baseUrl http://localhost:8080 (from local override), got %s", cfg.BaseURL)
	}

	if cfg.APIVersion != "v2" {
		t.Errorf("Expected apiVersion v2 (from local override), got %s", cfg.APIVersion)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("Expected default baseUrl http://localhost:8080, got %s", cfg.BaseURL)
	}

	if cfg.APIVersion != "v1" {
		t.Errorf("Expected default apiVersion v1, got %s", cfg.APIVersion)
	}

	// auth url falls back to the base url
	if cfg.Auth.URL != cfg.BaseURL {
		t.Errorf("Expected auth.url to default to baseUrl, got %s", cfg.Auth.URL)
	}

	wantPorts := []int{54540, 54541, 54542}
	if len(cfg.Auth.CallbackPorts) != len(wantPorts) {
		t.Fatalf("Expected %d default callback ports, got %v", len(wantPorts), cfg.Auth.CallbackPorts)
	}
	for i, p := range wantPorts {
		if cfg.Auth.CallbackPorts[i] != p {
			t.Errorf("Expected callback port %d at index %d, got %d", p, i, cfg.Auth.CallbackPorts[i])
		}
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	customConfig := `
baseUrl: http://custom.com:9000
apiVersion: v3
auth:
  url: https://auth.custom.com
  clientId: my-client
  audience: https://api.custom.com
`
	customPath := filepath.Join(tempDir, "custom-config.yaml")
	os.WriteFile(customPath, []byte(customConfig), 0644)

	cfg, err := LoadConfig(customPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.BaseURL != "http://custom.com:9000" {
		t.Errorf("Expected baseUrl http://custom.com:9000, got %s", cfg.BaseURL)
	}

	if cfg.Auth.ClientID != "my-client" {
		t.Errorf("Expected auth clientId my-client, got %s", cfg.Auth.ClientID)
	}
}

func TestLoadConfig_TrimsTrailingSlash(t *testing.T) {
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tempDir)
	defer os.Chdir(oldWd)

	os.WriteFile("apogee.yaml", []byte("baseUrl: http://example.com/\n"), 0644)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.BaseURL != "http://example.com" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.BaseURL)
	}
}

func TestAuthConfig(t *testing.T) {
	cfg := &Config{
		BaseURL: "http://example.com",
		Auth: AuthSettings{
			URL:             "https://auth.example.com",
			ClientID:        "cid",
			Audience:        "https://api.example.com",
			CallbackPorts:   []int{61000, 61001},
			SuccessRedirect: "https://example.com/welcome",
		},
	}

	ac, err := cfg.AuthConfig()
	if err != nil {
		t.Fatalf("AuthConfig failed: %v", err)
	}

	if ac.AuthURL.String() != "https://auth.example.com/authorize" {
		t.Errorf("unexpected authorize endpoint: %s", ac.AuthURL)
	}
	if ac.TokenURL.String() != "https://auth.example.com/oauth/token" {
		t.Errorf("unexpected token endpoint: %s", ac.TokenURL)
	}
	if ac.ClientID != "cid" || ac.Audience != "https://api.example.com" {
		t.Errorf("client settings not carried over: %+v", ac)
	}

	ports := ac.CallbackPorts()
	if len(ports) != 2 || ports[0] != 61000 || ports[1] != 61001 {
		t.Errorf("unexpected callback ports: %v", ports)
	}
	if ac.SuccessRedirectURL == nil || ac.SuccessRedirectURL.String() != "https://example.com/welcome" {
		t.Errorf("unexpected success redirect: %v", ac.SuccessRedirectURL)
	}
}
