package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no explicit path is provided.
const DefaultConfigPath = "config.yaml"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Discord  DiscordConfig  `yaml:"discord"`
	Topup    TopupConfig    `yaml:"topup"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port      int    `yaml:"port"`       // Listen port, default 3000.
	PublicDir string `yaml:"public-dir"` // Static asset directory, served when present.
	BaseURL   string `yaml:"base-url"`   // External base URL for OAuth redirects.
}

// DatabaseConfig selects the backing store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"` // PostgreSQL DSN or SQLite file path.
}

// JWTConfig controls session token issuance.
type JWTConfig struct {
	Secret      string `yaml:"secret"`       // HS256 signing secret.
	ExpiryHours int    `yaml:"expiry-hours"` // Token lifetime in hours, default 168 (7 days).
}

// Expiry returns the configured token lifetime.
func (c JWTConfig) Expiry() time.Duration {
	if c.ExpiryHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.ExpiryHours) * time.Hour
}

// DiscordConfig holds the OAuth application and bot integration settings.
type DiscordConfig struct {
	ClientID     string   `yaml:"client-id"`     // OAuth application client ID.
	ClientSecret string   `yaml:"client-secret"` // OAuth application client secret.
	CallbackURL  string   `yaml:"callback-url"`  // OAuth redirect URL.
	AdminIDs     []string `yaml:"admin-ids"`     // Discord IDs promoted to admin on login.
	BotSecret    string   `yaml:"bot-secret"`    // Shared secret for the bot API surface.
	TopupWebhook string   `yaml:"topup-webhook"` // Webhook URL for slip notifications.
	AdminRoleID  string   `yaml:"admin-role-id"` // Role mentioned in slip notifications.
}

// TopupConfig controls the slip-upload flow. The minimum amount lives in
// the settings table so admins can tune it without a redeploy.
type TopupConfig struct {
	MaxSlipSize int64 `yaml:"max-slip-size"` // Maximum slip upload size in bytes, default 5 MiB.
}

// RedisConfig enables the request rate limiter when an address is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`     // host:port, empty disables rate limiting.
	Password string `yaml:"password"` // Optional password.
	DB       int    `yaml:"db"`       // Database index.
}

// LogConfig controls structured log output.
type LogConfig struct {
	Level      string `yaml:"level"`       // logrus level name, default "info".
	File       string `yaml:"file"`        // Rotating log file path, empty logs to stderr only.
	MaxSizeMB  int    `yaml:"max-size"`    // Rotation threshold in MiB, default 50.
	MaxBackups int    `yaml:"max-backups"` // Rotated files kept, default 5.
	MaxAgeDays int    `yaml:"max-age"`     // Rotated file retention in days, default 30.
}

// ResolveConfigPath returns the effective config file path.
func ResolveConfigPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = DefaultConfigPath
	}
	return filepath.Clean(trimmed)
}

// Load reads the YAML config file, applies environment overrides and fills
// defaults. A missing file is not an error; the environment alone can carry
// a full configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	resolved := ResolveConfigPath(path)
	data, errRead := os.ReadFile(resolved)
	switch {
	case errRead == nil:
		if errParse := yaml.Unmarshal(data, cfg); errParse != nil {
			return nil, fmt.Errorf("config: parse %s: %w", resolved, errParse)
		}
	case os.IsNotExist(errRead):
		// fall through to env + defaults
	default:
		return nil, fmt.Errorf("config: read %s: %w", resolved, errRead)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, fmt.Errorf("config: database dsn is required (database.dsn or DATABASE_URL)")
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, fmt.Errorf("config: jwt secret is required (jwt.secret or SESSION_SECRET)")
	}

	return cfg, nil
}

// applyEnvOverrides maps the environment variables the original deployment
// used onto the config structure. Environment wins over file values.
func applyEnvOverrides(cfg *Config) {
	setString := func(dst *string, keys ...string) {
		for _, key := range keys {
			if value := strings.TrimSpace(os.Getenv(key)); value != "" {
				*dst = value
				return
			}
		}
	}

	setString(&cfg.Database.DSN, "DATABASE_URL", "POSTGRES_URL")
	setString(&cfg.JWT.Secret, "SESSION_SECRET")
	setString(&cfg.Discord.ClientID, "DISCORD_CLIENT_ID")
	setString(&cfg.Discord.ClientSecret, "DISCORD_CLIENT_SECRET")
	setString(&cfg.Discord.CallbackURL, "DISCORD_CALLBACK_URL")
	setString(&cfg.Discord.BotSecret, "BOT_WEBHOOK_SECRET")
	setString(&cfg.Discord.TopupWebhook, "DISCORD_TOPUP_WEBHOOK")
	setString(&cfg.Discord.AdminRoleID, "ADMIN_ROLE_ID")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")

	if ids := strings.TrimSpace(os.Getenv("ADMIN_DISCORD_IDS")); ids != "" {
		cfg.Discord.AdminIDs = cfg.Discord.AdminIDs[:0]
		for _, id := range strings.Split(ids, ",") {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				cfg.Discord.AdminIDs = append(cfg.Discord.AdminIDs, trimmed)
			}
		}
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		var parsed int
		if _, errScan := fmt.Sscanf(port, "%d", &parsed); errScan == nil && parsed > 0 {
			cfg.Server.Port = parsed
		}
	}
}

// applyDefaults fills zero values with production defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.PublicDir == "" {
		cfg.Server.PublicDir = "public"
	}
	if cfg.JWT.ExpiryHours <= 0 {
		cfg.JWT.ExpiryHours = 168
	}
	if cfg.Discord.CallbackURL == "" {
		cfg.Discord.CallbackURL = fmt.Sprintf("http://localhost:%d/auth/discord/callback", cfg.Server.Port)
	}
	if cfg.Topup.MaxSlipSize <= 0 {
		cfg.Topup.MaxSlipSize = 5 << 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 50
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = 5
	}
	if cfg.Log.MaxAgeDays <= 0 {
		cfg.Log.MaxAgeDays = 30
	}
}
