package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/webcraft/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
	if cfg.TokenPrincipal != "local" {
		t.Errorf("principal = %q, want local", cfg.TokenPrincipal)
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != "disabled" {
		t.Errorf("mode = %q, want disabled", cfg.Mode)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
	if _, err := cfg.Verifier().Verify("Bearer mysecret"); err != nil {
		t.Errorf("verifier rejected configured token: %v", err)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_JWTModeNeedsSecret(t *testing.T) {
	cfg := AuthConfig{Mode: "jwt"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Fatalf("jwt mode without secret: %v", err)
	}
	cfg.JWTSecret = "k"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("jwt mode with secret: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestCacheConfig(t *testing.T) {
	cfg := CacheConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty cache config: %v", err)
	}
	if cfg.Driver != "memory" {
		t.Errorf("driver = %q, want memory", cfg.Driver)
	}

	cfg = CacheConfig{Driver: "redis"}
	if err := cfg.Validate(); err == nil {
		t.Error("redis without url should fail")
	}
	cfg = CacheConfig{Driver: "memcached"}
	if err := cfg.Validate(); err == nil {
		t.Error("unknown driver should fail")
	}
}

func TestAssistantConfig_Bounds(t *testing.T) {
	cfg := AssistantConfig{MinDelay: time.Second, MaxDelay: time.Millisecond}
	if err := cfg.Validate(); err == nil {
		t.Error("max below min should fail")
	}
}

func TestApplicationConfig_LogFormat(t *testing.T) {
	cfg := NewDefaultConfig().App
	cfg.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log format should fail")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
	if !strings.HasPrefix(err.Error(), "auth:") {
		t.Errorf("error should name the section: %v", err)
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("WEBCRAFT_TEST_SECRET", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  log_level: debug
  log_format: text
  http:
    port: 9090
auth:
  mode: token
  token: ${WEBCRAFT_TEST_SECRET}
cache:
  ttl: 90s
assistant:
  min_delay: 10ms
  max_delay: 20ms
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.App.LogFormat != "text" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Auth.Token != "s3cret" {
		t.Errorf("token = %q, want expanded env", cfg.Auth.Token)
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Errorf("cache ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Assistant.MaxDelay != 20*time.Millisecond {
		t.Errorf("max delay = %v", cfg.Assistant.MaxDelay)
	}
	// Untouched sections keep their defaults.
	if cfg.SQLite.Path != "./webcraft.db" {
		t.Errorf("sqlite path = %q", cfg.SQLite.Path)
	}
}

func TestLoadOrDefaults_MissingFile(t *testing.T) {
	cfg := NewDefaultConfig()
	loaded, err := pkgconfig.LoadOrDefaults(filepath.Join(t.TempDir(), "missing.yaml"), cfg)
	if err != nil {
		t.Fatalf("LoadOrDefaults: %v", err)
	}
	if loaded {
		t.Error("missing file reported as loaded")
	}
	if cfg.App.HTTP.Port != 8080 {
		t.Errorf("port = %d, want default", cfg.App.HTTP.Port)
	}
}
