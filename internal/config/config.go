package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Bitbucket BitbucketConfig `yaml:"bitbucket"`
	Trigger   TriggerConfig   `yaml:"trigger"`
	Server    ServerConfig    `yaml:"server"`

	fileErr error
}

// BitbucketConfig holds Bitbucket Server API configuration
type BitbucketConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Token       string        `yaml:"-"` // env only, never read from file
	Timeout     time.Duration `yaml:"-"`
	TimeoutSecs int           `yaml:"timeout_seconds"`
	InsecureTLS bool          `yaml:"insecure_tls"`
	CACertPath  string        `yaml:"ca_cert_path"`
}

// TriggerConfig holds trigger directive configuration
type TriggerConfig struct {
	Prefix     string `yaml:"prefix"`      // literal matched at start of line, e.g. "@polly"
	AuthorOnly bool   `yaml:"author_only"` // only the PR author's own comments may trigger
	MaxWorkers int    `yaml:"max_workers"` // upper bound on concurrent PR pipelines
}

// ServerConfig holds serve-mode configuration
type ServerConfig struct {
	Port         string        `yaml:"port"`
	PollInterval time.Duration `yaml:"-"`
	PollEvery    string        `yaml:"poll_interval"` // duration string, e.g. "5m"
}

// Load loads configuration from the optional YAML overlay file and
// environment variables. Environment variables win over file values.
func Load() *Config {
	cfg := &Config{
		Bitbucket: BitbucketConfig{
			TimeoutSecs: 10,
		},
		Trigger: TriggerConfig{
			Prefix:     "@polly",
			MaxWorkers: 50,
		},
		Server: ServerConfig{
			Port:      "3000",
			PollEvery: "5m",
		},
	}

	if path := os.Getenv("POLLY_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			// A broken overlay file is a config error; surface it via
			// Validate instead of silently half-applying it.
			cfg.fileErr = err
		}
	}

	cfg.Bitbucket.BaseURL = getEnv("POLLY_BITBUCKET_URL", cfg.Bitbucket.BaseURL)
	cfg.Bitbucket.Token = getEnv("POLLY_BITBUCKET_TOKEN", "")
	cfg.Bitbucket.TimeoutSecs = getEnvInt("POLLY_HTTP_TIMEOUT_SECONDS", cfg.Bitbucket.TimeoutSecs)
	cfg.Bitbucket.InsecureTLS = getEnvBool("POLLY_BITBUCKET_INSECURE_TLS", cfg.Bitbucket.InsecureTLS)
	cfg.Bitbucket.CACertPath = getEnv("POLLY_BITBUCKET_CA_CERT_PATH", cfg.Bitbucket.CACertPath)

	cfg.Trigger.Prefix = getEnv("POLLY_TRIGGER_PREFIX", cfg.Trigger.Prefix)
	cfg.Trigger.AuthorOnly = getEnvBool("POLLY_AUTHOR_ONLY", cfg.Trigger.AuthorOnly)
	cfg.Trigger.MaxWorkers = getEnvInt("POLLY_MAX_WORKERS", cfg.Trigger.MaxWorkers)

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.PollEvery = getEnv("POLLY_POLL_INTERVAL", cfg.Server.PollEvery)

	cfg.Bitbucket.Timeout = time.Duration(cfg.Bitbucket.TimeoutSecs) * time.Second
	if d, err := time.ParseDuration(cfg.Server.PollEvery); err == nil && d > 0 {
		cfg.Server.PollInterval = d
	} else {
		cfg.Server.PollInterval = 5 * time.Minute
	}

	return cfg
}

// Validate checks that mandatory settings are present. It must pass before
// any network activity; a failure here aborts the process.
func (c *Config) Validate() error {
	if c.fileErr != nil {
		return c.fileErr
	}
	if c.Bitbucket.BaseURL == "" {
		return fmt.Errorf("POLLY_BITBUCKET_URL is required")
	}
	if c.Bitbucket.Token == "" {
		return fmt.Errorf("POLLY_BITBUCKET_TOKEN is required")
	}
	if c.Trigger.Prefix == "" {
		return fmt.Errorf("trigger prefix must not be empty")
	}
	if c.Trigger.MaxWorkers < 1 {
		return fmt.Errorf("max workers must be >= 1, got %d", c.Trigger.MaxWorkers)
	}
	return nil
}

// HasToken returns true if the Bitbucket token is configured
func (c *Config) HasToken() bool {
	return c.Bitbucket.Token != ""
}

// TriggerMode returns a description of the current trigger scanning mode
func (c *Config) TriggerMode() string {
	if c.Trigger.AuthorOnly {
		return fmt.Sprintf("%q (author comments only)", c.Trigger.Prefix)
	}
	return fmt.Sprintf("%q (all comments)", c.Trigger.Prefix)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true"
	}
	return defaultValue
}
