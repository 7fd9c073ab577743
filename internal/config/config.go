package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration for the api server.
// Values come from defaults, an optional YAML file (INBOX_CONFIG) and
// environment variables, in increasing order of precedence.
type Config struct {
	Port      int    `mapstructure:"app_port"`
	PublicURL string `mapstructure:"public_url"`

	DatabaseURL string `mapstructure:"db_url"`
	RedisURL    string `mapstructure:"redis_url"`

	Auth     AuthConfig     `mapstructure:",squash"`
	Feed     FeedConfig     `mapstructure:",squash"`
	Queue    QueueConfig    `mapstructure:",squash"`
	Log      LogConfig      `mapstructure:",squash"`
	Upload   UploadConfig   `mapstructure:",squash"`
	Realtime RealtimeConfig `mapstructure:",squash"`
}

type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	ConfirmTTL   time.Duration `mapstructure:"confirm_ttl"`
	AutoConfirm  bool          `mapstructure:"auth_autoconfirm"`
	RateLimitQPS int           `mapstructure:"rate_limit_qps"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

// FeedConfig selects the change feed transport: "postgres" uses
// LISTEN/NOTIFY on the primary database, "redis" uses pub/sub.
type FeedConfig struct {
	Driver  string `mapstructure:"feed_driver"`
	Channel string `mapstructure:"feed_channel"`
}

type QueueConfig struct {
	Concurrency int    `mapstructure:"asynq_concurrency"`
	Queues      string `mapstructure:"asynq_queues"`
}

type LogConfig struct {
	Level  string `mapstructure:"log_level"`
	Format string `mapstructure:"log_format"`
}

type UploadConfig struct {
	ProgressTick time.Duration `mapstructure:"upload_progress_tick"`
	SettleDelay  time.Duration `mapstructure:"upload_settle_delay"`
}

type RealtimeConfig struct {
	ReadTimeout     time.Duration `mapstructure:"ws_read_timeout"`
	InflightTimeout time.Duration `mapstructure:"ws_inflight_timeout"`
}

var keys = []string{
	"app_port", "public_url", "db_url", "redis_url",
	"jwt_secret", "session_ttl", "confirm_ttl", "auth_autoconfirm", "rate_limit_qps", "cookie_secure",
	"feed_driver", "feed_channel",
	"asynq_concurrency", "asynq_queues",
	"log_level", "log_format",
	"upload_progress_tick", "upload_settle_delay",
	"ws_read_timeout", "ws_inflight_timeout",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_port", 8080)
	v.SetDefault("public_url", "http://localhost:8080")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("confirm_ttl", 24*time.Hour)
	v.SetDefault("auth_autoconfirm", false)
	v.SetDefault("rate_limit_qps", 5)
	v.SetDefault("cookie_secure", false)
	v.SetDefault("feed_driver", "postgres")
	v.SetDefault("feed_channel", "chat_message_inserted")
	v.SetDefault("asynq_concurrency", 10)
	v.SetDefault("asynq_queues", "default=1,chat=1")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("upload_progress_tick", 100*time.Millisecond)
	v.SetDefault("upload_settle_delay", time.Second)
	v.SetDefault("ws_read_timeout", 60*time.Second)
	v.SetDefault("ws_inflight_timeout", 5*time.Second)
}

// Load builds a Config. path may be empty; when set the YAML file at path
// is read before environment overrides are applied.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about; bind the
	// ones without defaults explicitly.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.RedisURL = strings.TrimSpace(cfg.RedisURL)
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	return &cfg, nil
}

// Validate reports missing settings the api server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DB_URL is not set"))
	}
	if c.RedisURL == "" {
		errs = append(errs, errors.New("REDIS_URL is not set"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	switch c.Feed.Driver {
	case "postgres", "redis":
	default:
		errs = append(errs, fmt.Errorf("FEED_DRIVER %q is not supported", c.Feed.Driver))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
