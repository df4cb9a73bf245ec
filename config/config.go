// Package config handles client configuration: defaults, an optional YAML
// file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

// Config holds the connection, cache and logging settings of a client.
type Config struct {
	User     string            `yaml:"user"`
	Password string            `yaml:"password"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Database string            `yaml:"database"`
	Params   map[string]string `yaml:"params"` // extra DSN parameters

	CacheEnabled    bool          `yaml:"cache_enabled"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`         // result time-to-live (default 5s)
	CachePurgeEvery int           `yaml:"cache_purge_every"` // sweep expired entries every N accesses (default 10)

	VerboseGeneration  bool          `yaml:"verbose_sql_generation"` // log generated statements
	VerboseExecution   bool          `yaml:"verbose_sql_execution"`  // log executed statements
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`   // log statements slower than this, 0 disables
	LogLevel           string        `yaml:"log_level"`              // debug, info, warn, error (default "info")
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		User:             "root",
		Host:             "127.0.0.1",
		Port:             3306,
		Database:         "TS",
		CacheEnabled:     true,
		CacheTTL:         5 * time.Second,
		CachePurgeEvery:  10,
		VerboseExecution: true,
		LogLevel:         "info",
	}
}

// LoadFromEnv loads the default configuration with environment overrides.
func LoadFromEnv() (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a YAML file over the defaults, then applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.User, "BSQL_USER")
	setString(&c.Password, "BSQL_PASSWORD")
	setString(&c.Host, "BSQL_HOST")
	setString(&c.Database, "BSQL_DB")
	setString(&c.LogLevel, "LOG_LEVEL")
	var errs []error
	if v := os.Getenv("BSQL_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: BSQL_PORT: %w", err))
		}
		c.Port = n
	}
	if v := os.Getenv("SQL_CACHE_TIMEOUT"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: SQL_CACHE_TIMEOUT: %w", err))
		}
		c.CacheTTL = d
	}
	if v := os.Getenv("SLOW_QUERY_THRESHOLD"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: SLOW_QUERY_THRESHOLD: %w", err))
		}
		c.SlowQueryThreshold = d
	}
	errs = append(errs,
		setBool(&c.CacheEnabled, "SQL_CACHE_ENABLED"),
		setBool(&c.VerboseGeneration, "VERBOSE_SQL_GENERATION"),
		setBool(&c.VerboseExecution, "VERBOSE_SQL_EXECUTION"),
	)
	return errors.Join(errs...)
}

// Validate checks that the configuration can be used to connect.
func (c *Config) Validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, errors.New("config: host is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: invalid port %d", c.Port))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("config: database is required"))
	}
	if c.CacheEnabled && c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("config: cache enabled with non-positive ttl %s", c.CacheTTL))
	}
	if c.CachePurgeEvery < 0 {
		errs = append(errs, fmt.Errorf("config: negative cache purge period %d", c.CachePurgeEvery))
	}
	return errors.Join(errs...)
}

// DSN returns the MySQL data source name. Time values are parsed by the
// driver.
func (c *Config) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.ParseTime = true
	if len(c.Params) > 0 {
		mc.Params = make(map[string]string, len(c.Params))
		for k, v := range c.Params {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
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

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = b
	return nil
}

// parseSeconds accepts a number of seconds or a Go duration.
func parseSeconds(v string) (time.Duration, error) {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(f * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}
