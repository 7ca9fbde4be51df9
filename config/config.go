package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Poller     PollerConfig     `yaml:"poller"`
	Stream     StreamConfig     `yaml:"stream"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Auth       AuthConfig       `yaml:"auth"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys for web push notifications.
// Missing keys disable push delivery; they are never a startup error.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Configured reports whether a usable VAPID key pair is present.
func (c PushConfig) Configured() bool {
	return c.PublicKey != "" && c.PrivateKey != ""
}

// SMTPConfig holds the outbound mail transport configuration.
// Missing credentials switch email delivery into mock (log-only) mode.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Configured reports whether real SMTP credentials are present.
func (c SMTPConfig) Configured() bool {
	return c.Username != "" && c.Password != ""
}

// PollerConfig controls the background reminder poller.
type PollerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// StreamConfig controls the per-client live notification feed.
type StreamConfig struct {
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// WorkerPoolConfig holds the configuration for the delivery worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// AuthConfig holds the token signing configuration for the stream and
// the user-scoped API routes.
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenTTLMinutes int           `yaml:"token_ttl_minutes"`
	TokenTTL        time.Duration `yaml:"-"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Poller.IntervalSeconds <= 0 {
		cfg.Poller.IntervalSeconds = 10
	}
	cfg.Poller.Interval = time.Duration(cfg.Poller.IntervalSeconds) * time.Second

	if cfg.Stream.IntervalSeconds <= 0 {
		cfg.Stream.IntervalSeconds = 2
	}
	cfg.Stream.Interval = time.Duration(cfg.Stream.IntervalSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.Push.Subject == "" {
		cfg.Push.Subject = "mailto:admin@mediremind.app"
	}

	if cfg.SMTP.Port <= 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = "noreply@mediremind.app"
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Auth.TokenTTLMinutes <= 0 {
		cfg.Auth.TokenTTLMinutes = 60
	}
	cfg.Auth.TokenTTL = time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute

	return &cfg, nil
}
