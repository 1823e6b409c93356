package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileWithDefaults(t *testing.T) {
	path := writeConfigFile(t, `
database:
  dsn: file:shop.db
jwt:
  secret: test-secret
discord:
  admin-ids:
    - "123456789012345678"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Fatalf("expected default port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Server.PublicDir != "public" {
		t.Fatalf("expected default public dir, got %q", cfg.Server.PublicDir)
	}
	if cfg.JWT.Expiry() != 168*time.Hour {
		t.Fatalf("expected 7 day expiry, got %v", cfg.JWT.Expiry())
	}
	if cfg.Topup.MaxSlipSize != 5<<20 {
		t.Fatalf("expected 5 MiB slip cap, got %d", cfg.Topup.MaxSlipSize)
	}
	if cfg.Discord.CallbackURL != "http://localhost:3000/auth/discord/callback" {
		t.Fatalf("unexpected callback default: %q", cfg.Discord.CallbackURL)
	}
	if len(cfg.Discord.AdminIDs) != 1 || cfg.Discord.AdminIDs[0] != "123456789012345678" {
		t.Fatalf("unexpected admin ids: %v", cfg.Discord.AdminIDs)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
database:
  dsn: file:file.db
jwt:
  secret: file-secret
server:
  port: 4000
`)

	t.Setenv("DATABASE_URL", "postgres://bot:pw@db.local:5432/shop")
	t.Setenv("SESSION_SECRET", "env-secret")
	t.Setenv("PORT", "8080")
	t.Setenv("ADMIN_DISCORD_IDS", "111, 222 ,")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.DSN != "postgres://bot:pw@db.local:5432/shop" {
		t.Fatalf("env dsn not applied: %q", cfg.Database.DSN)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Fatalf("env secret not applied: %q", cfg.JWT.Secret)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("env port not applied: %d", cfg.Server.Port)
	}
	if len(cfg.Discord.AdminIDs) != 2 || cfg.Discord.AdminIDs[0] != "111" || cfg.Discord.AdminIDs[1] != "222" {
		t.Fatalf("env admin ids not applied: %v", cfg.Discord.AdminIDs)
	}
}

func TestLoadMissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:env.db")
	t.Setenv("SESSION_SECRET", "env-only")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.DSN != "file:env.db" {
		t.Fatalf("unexpected dsn: %q", cfg.Database.DSN)
	}
}

func TestLoadRequiresDSNAndSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_SECRET", "")

	missing := filepath.Join(t.TempDir(), "none.yaml")
	if _, err := Load(missing); err == nil {
		t.Fatal("expected error without dsn")
	}

	t.Setenv("DATABASE_URL", "file:x.db")
	if _, err := Load(missing); err == nil {
		t.Fatal("expected error without jwt secret")
	}
}
