// Package config loads the LiftLog YAML configuration and its LIFTLOG_
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"

	"github.com/claude/liftlog/internal/models"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Scoring   ScoringConfig   `yaml:"scoring"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Name       string `yaml:"name"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	SSLMode    string `yaml:"sslmode"`
	Migrations string `yaml:"migrations"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TailscaleConfig enables serving on the tailnet via tsnet. When disabled the
// server listens on Server.Host:Server.Port and every request acts as the
// local development user.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// CatalogConfig points at a custom muscle-group catalog. Empty means the
// built-in one.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// ScoringConfig holds the defaults used when a user has not saved goals.
type ScoringConfig struct {
	DefaultGoals   models.UserGoals `yaml:"default_goals"`
	IncludeWarmups bool             `yaml:"include_warmups"`
}

// DSN returns a PostgreSQL connection URL.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

// MigrationsPath returns the migrations directory, "migrations" by default.
func (d DatabaseConfig) MigrationsPath() string {
	if d.Migrations == "" {
		return "migrations"
	}
	return d.Migrations
}

// LoadDotEnv loads KEY=value pairs from a .env file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT,
//	LIFTLOG_DB_HOST, LIFTLOG_DB_PORT, LIFTLOG_DB_NAME,
//	LIFTLOG_DB_USER, LIFTLOG_DB_PASSWORD, LIFTLOG_DB_SSLMODE, LIFTLOG_DB_MIGRATIONS,
//	LIFTLOG_AUTH_API_KEY,
//	LIFTLOG_TAILSCALE_ENABLED, LIFTLOG_TAILSCALE_HOSTNAME, LIFTLOG_TAILSCALE_STATE_DIR,
//	LIFTLOG_CATALOG_PATH, LIFTLOG_SCORING_INCLUDE_WARMUPS
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

type override struct {
	env   string
	apply func(c *Config, v string) error
}

var overrides = []override{
	{"LIFTLOG_SERVER_HOST", setString(func(c *Config) *string { return &c.Server.Host })},
	{"LIFTLOG_SERVER_PORT", setInt(func(c *Config) *int { return &c.Server.Port })},
	{"LIFTLOG_DB_HOST", setString(func(c *Config) *string { return &c.Database.Host })},
	{"LIFTLOG_DB_PORT", setInt(func(c *Config) *int { return &c.Database.Port })},
	{"LIFTLOG_DB_NAME", setString(func(c *Config) *string { return &c.Database.Name })},
	{"LIFTLOG_DB_USER", setString(func(c *Config) *string { return &c.Database.User })},
	{"LIFTLOG_DB_PASSWORD", setString(func(c *Config) *string { return &c.Database.Password })},
	{"LIFTLOG_DB_SSLMODE", setString(func(c *Config) *string { return &c.Database.SSLMode })},
	{"LIFTLOG_DB_MIGRATIONS", setString(func(c *Config) *string { return &c.Database.Migrations })},
	{"LIFTLOG_AUTH_API_KEY", setString(func(c *Config) *string { return &c.Auth.APIKey })},
	{"LIFTLOG_TAILSCALE_ENABLED", setBool(func(c *Config) *bool { return &c.Tailscale.Enabled })},
	{"LIFTLOG_TAILSCALE_HOSTNAME", setString(func(c *Config) *string { return &c.Tailscale.Hostname })},
	{"LIFTLOG_TAILSCALE_STATE_DIR", setString(func(c *Config) *string { return &c.Tailscale.StateDir })},
	{"LIFTLOG_CATALOG_PATH", setString(func(c *Config) *string { return &c.Catalog.Path })},
	{"LIFTLOG_SCORING_INCLUDE_WARMUPS", setBool(func(c *Config) *bool { return &c.Scoring.IncludeWarmups })},
}

func applyEnvOverrides(cfg *Config) error {
	for _, o := range overrides {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		if err := o.apply(cfg, v); err != nil {
			return fmt.Errorf("%s: %w", o.env, err)
		}
	}
	return nil
}

func setString(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setInt(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		*field(c) = n
		return nil
	}
}

func setBool(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		*field(c) = b
		return nil
	}
}

func (c *Config) applyDefaults() {
	if c.Scoring.DefaultGoals == (models.UserGoals{}) {
		c.Scoring.DefaultGoals = models.DefaultGoals()
	}
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "liftlog"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if err := c.Scoring.DefaultGoals.Validate(); err != nil {
		return fmt.Errorf("scoring.default_goals: %w", err)
	}
	return nil
}
