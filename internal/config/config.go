// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type PaymentConfig struct {
	// RejectedPolicy decides what a rejected/cancelled provider event does
	// to the booking: "keep" leaves it untouched, "cancel" cancels it.
	RejectedPolicy string        `yaml:"rejected_policy"`
	ReplayTTL      time.Duration `yaml:"replay_ttl"`
	// Global (environment-level) provider credentials, used when a tenant
	// has none of its own. Loaded from environment.
	AccessToken   string `yaml:"-"`
	PublicKey     string `yaml:"-"`
	WebhookSecret string `yaml:"-"`
}

type ReplayConfig struct {
	// Store is "memory" or "redis". Memory is only valid for a single
	// instance; redis is required for multi-instance deployments.
	Store         string `yaml:"store"`
	RedisAddr     string `yaml:"-"` // Loaded from environment
	RedisPassword string `yaml:"-"` // Loaded from environment
	RedisDB       int    `yaml:"redis_db"`
}

type EventsConfig struct {
	// Publisher is "log" or "amqp".
	Publisher string `yaml:"publisher"`
	Exchange  string `yaml:"exchange"`
	AMQPURL   string `yaml:"-"` // Loaded from environment
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseDomain  string `yaml:"base_domain"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Payment  PaymentConfig  `yaml:"payment"`
	Replay   ReplayConfig   `yaml:"replay"`
	Events   EventsConfig   `yaml:"events"`

	// CredentialEncKey is the 32-byte hex key protecting stored tenant
	// credentials. Loaded from environment.
	CredentialEncKey string `yaml:"-"`
}

// Default returns the configuration used when no yaml file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.App.Name = "turnero-padel"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.App.BaseDomain = "localhost"
	cfg.Database.Driver = "sqlite"
	cfg.Database.Filename = "data/turnero.db"
	cfg.Payment.RejectedPolicy = "keep"
	cfg.Payment.ReplayTTL = 10 * time.Minute
	cfg.Replay.Store = "memory"
	cfg.Events.Publisher = "log"
	cfg.Events.Exchange = "turnero.bookings"
	return cfg
}

// Load reads the yaml configuration plus a sibling .env file, overlays
// environment-held secrets, and validates the result. A missing yaml file
// falls back to Default.
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	case os.IsNotExist(err):
		// Defaults plus environment only.
	default:
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg.Payment.AccessToken = os.Getenv("PAYMENT_ACCESS_TOKEN")
	cfg.Payment.PublicKey = os.Getenv("PAYMENT_PUBLIC_KEY")
	cfg.Payment.WebhookSecret = os.Getenv("PAYMENT_WEBHOOK_SECRET")
	cfg.CredentialEncKey = os.Getenv("CREDENTIAL_ENC_KEY")
	cfg.Replay.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.Replay.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.Events.AMQPURL = os.Getenv("AMQP_URL")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.Filename == "" {
		return fmt.Errorf("database filename is required for sqlite")
	}

	switch c.Payment.RejectedPolicy {
	case "keep", "cancel":
	default:
		return fmt.Errorf("unsupported rejected payment policy: %s", c.Payment.RejectedPolicy)
	}
	if c.Payment.ReplayTTL <= 0 {
		return fmt.Errorf("replay TTL must be positive")
	}

	switch c.Replay.Store {
	case "memory":
	case "redis":
		if c.Replay.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis replay store")
		}
	default:
		return fmt.Errorf("unsupported replay store: %s", c.Replay.Store)
	}

	switch c.Events.Publisher {
	case "log":
	case "amqp":
		if c.Events.AMQPURL == "" {
			return fmt.Errorf("AMQP_URL is required for the amqp publisher")
		}
		if c.Events.Exchange == "" {
			return fmt.Errorf("events exchange is required for the amqp publisher")
		}
	default:
		return fmt.Errorf("unsupported events publisher: %s", c.Events.Publisher)
	}

	return nil
}
