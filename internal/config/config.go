// Package config loads server settings. Sources are applied in order, each
// overriding the previous: built-in defaults, an optional YAML file, an
// optional .env file, then the process environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the YAML file read when CONFIG_PATH is unset.
const DefaultPath = "config.yaml"

type Config struct {
	Port     int    `yaml:"port"`
	DBPath   string `yaml:"dbPath"`
	LogLevel string `yaml:"logLevel"`

	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`

	GitHubClientID     string `yaml:"githubClientId"`
	GitHubClientSecret string `yaml:"githubClientSecret"`
	GitHubCallbackURL  string `yaml:"githubCallbackUrl"`

	// AdminAccounts get the admin role when they register or first log in.
	AdminAccounts []string `yaml:"adminAccounts"`

	UploadDir     string `yaml:"uploadDir"`
	PublicBaseURL string `yaml:"publicBaseUrl"`

	RateLimitRPS   float64 `yaml:"rateLimitRps"`
	RateLimitBurst int     `yaml:"rateLimitBurst"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Port:           8080,
		DBPath:         "data/wisdom.db",
		LogLevel:       "info",
		TokenTTL:       24 * time.Hour,
		UploadDir:      "data/uploads",
		PublicBaseURL:  "http://localhost:8080",
		RateLimitRPS:   5,
		RateLimitBurst: 10,
	}
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. A missing YAML or .env file is not an error. An empty path
// means CONFIG_PATH, or DefaultPath if that is unset too.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: loading .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = strings.TrimSuffix(cfg.PublicBaseURL, "/") + "/auth/github/callback"
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString(&c.DBPath, "DB_PATH")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.GitHubClientID, "GITHUB_CLIENT_ID")
	setString(&c.GitHubClientSecret, "GITHUB_CLIENT_SECRET")
	setString(&c.GitHubCallbackURL, "GITHUB_CALLBACK_URL")
	setString(&c.UploadDir, "UPLOAD_DIR")
	setString(&c.PublicBaseURL, "PUBLIC_BASE_URL")

	if v := os.Getenv("ADMIN_ACCOUNTS"); v != "" {
		c.AdminAccounts = nil
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				c.AdminAccounts = append(c.AdminAccounts, a)
			}
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid TOKEN_TTL %q: %w", v, err)
		}
		c.TokenTTL = ttl
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		c.RateLimitRPS = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid RATE_LIMIT_BURST %q: %w", v, err)
		}
		c.RateLimitBurst = burst
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("config: JWT secret must be at least 16 characters (set JWT_SECRET)")
	}
	if c.DBPath == "" {
		return errors.New("config: database path is required")
	}
	if c.UploadDir == "" {
		return errors.New("config: upload directory is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: token TTL must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return errors.New("config: rate limit must be positive")
	}
	return nil
}

// GitHubEnabled reports whether OAuth login routes should be mounted.
func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// IsAdminAccount reports whether account is listed in AdminAccounts.
func (c Config) IsAdminAccount(account string) bool {
	for _, a := range c.AdminAccounts {
		if a == account {
			return true
		}
	}
	return false
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
