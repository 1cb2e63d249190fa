// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
// Every upstream credential is optional: a missing credential degrades the
// matching feature to a fallback path or a NotConfigured error, never a crash.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Admin access. AdminSecret is either the plaintext shared password or a
	// bcrypt hash of it. TOTPSecret, when set, enables a second factor on login.
	AdminSecret string
	TOTPSecret  string

	// TotiRoom (Supabase) backend
	TotiRoomURL string // project base URL, without /rest/v1 or /functions/v1
	ServiceKey  string // service-role key, preferred for admin reads/writes
	AnonKey     string // anonymous key, used for visitor-facing calls
	DatabaseURL string // optional direct Postgres DSN for the chat-log store
	SiteID      string

	// Anthropic direct path (used when the hosted chat function is bypassed)
	AnthropicKey   string
	AnthropicModel string

	// Valkey (Redis-compatible cache, optional — empty host disables caching)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Notification email (Resend)
	ResendKey  string
	NotifyFrom string
	NotifyTo   []string
}

// Load reads configuration from environment variables, after loading a .env
// file if one is present in the working directory.
func Load() (*Config, error) {
	// Missing .env is the normal case in production; ignore the error.
	_ = godotenv.Load()

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		AdminSecret: os.Getenv("ADMIN_PASSWORD"),
		TOTPSecret:  os.Getenv("ADMIN_TOTP_SECRET"),

		TotiRoomURL: envOrDefault("TOTIROOM_URL", "https://rndegttgwtpkbjtvjgnc.supabase.co"),
		ServiceKey:  os.Getenv("SUPABASE_TOTIROOM_SERVICE_KEY"),
		AnonKey:     os.Getenv("SUPABASE_TOTIROOM_ANON_KEY"),
		DatabaseURL: os.Getenv("TOTIROOM_DATABASE_URL"),
		SiteID:      envOrDefault("SITE_ID", "stevetoti"),

		AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel: envOrDefault("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		ResendKey:  os.Getenv("RESEND_API_KEY"),
		NotifyFrom: envOrDefault("NOTIFY_FROM", "Toti <noreply@stevetoti.com>"),
		NotifyTo:   splitList(os.Getenv("NOTIFY_TO")),
	}

	return cfg, nil
}

// RestURL returns the PostgREST base URL of the TotiRoom backend.
func (c *Config) RestURL() string {
	return strings.TrimRight(c.TotiRoomURL, "/") + "/rest/v1"
}

// FunctionsURL returns the edge functions base URL of the TotiRoom backend.
func (c *Config) FunctionsURL() string {
	return strings.TrimRight(c.TotiRoomURL, "/") + "/functions/v1"
}

// RestKey returns the key used for PostgREST calls: the service-role key
// when available, falling back to the anonymous key.
func (c *Config) RestKey() string {
	if c.ServiceKey != "" {
		return c.ServiceKey
	}
	return c.AnonKey
}

// HasValkey reports whether a cache host is configured.
func (c *Config) HasValkey() bool {
	return c.ValkeyHost != ""
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma-separated env value into trimmed entries.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
