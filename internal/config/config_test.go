package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.ConfirmTTL != 24*time.Hour {
		t.Errorf("ConfirmTTL = %v, want 24h", cfg.Auth.ConfirmTTL)
	}
	if cfg.Feed.Driver != "postgres" {
		t.Errorf("Feed.Driver = %q, want postgres", cfg.Feed.Driver)
	}
	if cfg.Upload.ProgressTick != 100*time.Millisecond {
		t.Errorf("ProgressTick = %v, want 100ms", cfg.Upload.ProgressTick)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_URL", "  postgres://u:p@localhost/inbox  ")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AUTH_AUTOCONFIRM", "true")
	t.Setenv("FEED_DRIVER", "redis")
	t.Setenv("PUBLIC_URL", "https://inbox.example.com/")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://u:p@localhost/inbox" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.Auth.JWTSecret != "s3cret" || !cfg.Auth.AutoConfirm {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if cfg.Feed.Driver != "redis" {
		t.Errorf("Feed.Driver = %q, want redis", cfg.Feed.Driver)
	}
	if cfg.PublicURL != "https://inbox.example.com" {
		t.Errorf("PublicURL = %q", cfg.PublicURL)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inbox.yaml")
	content := "app_port: 7000\nredis_url: redis://localhost:6379/0\nlog_format: json\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 7000 || cfg.RedisURL != "redis://localhost:6379/0" || cfg.Log.Format != "json" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Feed: FeedConfig{Driver: "kafka"}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"DB_URL", "REDIS_URL", "JWT_SECRET", "kafka"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}

	cfg = &Config{
		DatabaseURL: "postgres://localhost/inbox",
		RedisURL:    "redis://localhost:6379",
		Auth:        AuthConfig{JWTSecret: "x"},
		Feed:        FeedConfig{Driver: "redis"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
