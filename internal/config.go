package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/webcraft/internal/cache"
	"github.com/starford/webcraft/internal/identity"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Assets    AssetsConfig      `yaml:"assets"`
	Catalog   CatalogConfig     `yaml:"catalog"`
	Auth      AuthConfig        `yaml:"auth"`
	Cache     CacheConfig       `yaml:"cache"`
	Prefs     PrefsConfig       `yaml:"prefs"`
	Assistant AssistantConfig   `yaml:"assistant"`
	RateLimit RateLimitConfig   `yaml:"rate_limit"`
	Events    EventsConfig      `yaml:"events"`
	MCP       MCPConfig         `yaml:"mcp"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    validation.Validatable
	}{
		{"app", &c.App},
		{"sqlite", &c.SQLite},
		{"assets", &c.Assets},
		{"auth", &c.Auth},
		{"cache", &c.Cache},
		{"prefs", &c.Prefs},
		{"assistant", &c.Assistant},
		{"rate_limit", &c.RateLimit},
		{"mcp", &c.MCP},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AssetsConfig holds the directory uploaded images are stored in.
type AssetsConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the assets configuration.
func (c *AssetsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CatalogConfig points at an optional directory of template documents.
// When Path is empty only the built-in catalogue is served.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how bearer credentials are checked:
//   - "disabled" (default): every request acts as TokenPrincipal, for local dev.
//   - "token": a single shared Bearer token; Token must be non-empty.
//   - "jwt": HS256 tokens whose "sub" claim is the caller; JWTSecret must be set.
type AuthConfig struct {
	Mode           string `yaml:"mode"`
	Token          string `yaml:"token"`
	TokenPrincipal string `yaml:"token_principal"`
	JWTSecret      string `yaml:"jwt_secret"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = string(identity.ModeDisabled)
	}
	if c.TokenPrincipal == "" {
		c.TokenPrincipal = "local"
	}
	modes := make([]any, len(identity.Modes))
	for i, m := range identity.Modes {
		modes[i] = string(m)
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(modes...)),
	); err != nil {
		return err
	}
	switch identity.Mode(c.Mode) {
	case identity.ModeToken:
		if c.Token == "" {
			return fmt.Errorf("auth: mode is %q but token is empty", identity.ModeToken)
		}
	case identity.ModeJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("auth: mode is %q but jwt_secret is empty", identity.ModeJWT)
		}
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode != string(identity.ModeDisabled)
}

// Verifier builds the credential verifier for this configuration.
func (c *AuthConfig) Verifier() *identity.Verifier {
	return identity.NewVerifier(identity.Mode(c.Mode), c.Token, c.TokenPrincipal, c.JWTSecret)
}

// CacheConfig selects the query cache.
type CacheConfig struct {
	Driver   string        `yaml:"driver"`
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = cache.DriverMemory
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(cache.DriverMemory, cache.DriverRedis)),
		validation.Field(&c.RedisURL, validation.When(c.Driver == cache.DriverRedis, validation.Required)),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	)
}

// PrefsConfig controls how long UI preferences are kept.
type PrefsConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// Validate validates the preferences configuration.
func (c *PrefsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	)
}

// AssistantConfig bounds the simulated thinking delay of the assistant.
type AssistantConfig struct {
	MinDelay time.Duration `yaml:"min_delay"`
	MaxDelay time.Duration `yaml:"max_delay"`
}

// Validate validates the assistant configuration.
func (c *AssistantConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.MinDelay, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxDelay, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	if c.MaxDelay < c.MinDelay {
		return errors.New("assistant: max_delay is below min_delay")
	}
	return nil
}

// RateLimitConfig limits chat sends per caller. A zero ChatPerMinute
// disables limiting.
type RateLimitConfig struct {
	ChatPerMinute int `yaml:"chat_per_minute"`
	Burst         int `yaml:"burst"`
}

// Validate validates the rate limit configuration.
func (c *RateLimitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ChatPerMinute, validation.Min(0)),
		validation.Field(&c.Burst, validation.Min(0)),
	)
}

// EventsConfig tunes the server-sent event stream.
type EventsConfig struct {
	DashboardThrottle time.Duration `yaml:"dashboard_throttle"`
}

// MCPConfig holds the MCP stdio server settings.
type MCPConfig struct {
	Principal string `yaml:"principal"`
}

// Validate validates the MCP configuration.
func (c *MCPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Principal, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./webcraft.db",
		},
		Assets: AssetsConfig{
			Path: "./assets",
		},
		Auth: AuthConfig{
			Mode:           string(identity.ModeDisabled),
			TokenPrincipal: "local",
		},
		Cache: CacheConfig{
			Driver: cache.DriverMemory,
			TTL:    5 * time.Minute,
		},
		Prefs: PrefsConfig{
			TTL: 30 * 24 * time.Hour,
		},
		Assistant: AssistantConfig{
			MinDelay: 1200 * time.Millisecond,
			MaxDelay: 1800 * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			ChatPerMinute: 20,
			Burst:         5,
		},
		Events: EventsConfig{
			DashboardThrottle: 2 * time.Second,
		},
		MCP: MCPConfig{
			Principal: "local",
		},
	}
}
