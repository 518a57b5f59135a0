// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for the API
// facade, the dashboard server, the weekly reporter and their backing stores.
package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the top-level application configuration.
type Config struct {
	Environment string          `yaml:"environment"`
	API         APIConfig       `yaml:"api"`
	Server      ServerConfig    `yaml:"server"`
	Dashboard   DashboardConfig `yaml:"dashboard"`
	Postgres    PostgresConfig  `yaml:"postgres"`
	Kafka       KafkaConfig     `yaml:"kafka"`
	Redis       RedisConfig     `yaml:"redis"`
	Reporter    ReporterConfig  `yaml:"reporter"`
	Logging     LoggingConfig   `yaml:"logging"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}

// APIConfig controls how the facade reaches the feedback backend.
//
// BaseURL, when set, wins in every environment. Otherwise development talks
// to DevBaseURL directly and production goes through the same-origin /api
// prefix on Origin.
type APIConfig struct {
	BaseURL    string        `yaml:"baseURL"`
	DevBaseURL string        `yaml:"devBaseURL"`
	Origin     string        `yaml:"origin"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DashboardConfig holds the dashboard server port, the static bundle it
// serves and the backend it proxies /api to.
type DashboardConfig struct {
	Port         int      `yaml:"port"`
	StaticDir    string   `yaml:"staticDir"`
	BackendURL   string   `yaml:"backendURL"`
	AllowOrigins []string `yaml:"allowOrigins"`
	RateLimit    int      `yaml:"rateLimit"` // requests per minute per client IP

	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For is
	// believed. Empty means the connection address is always the client.
	TrustedProxies []string `yaml:"trustedProxies"`
}

// TrustedProxyPrefixes parses TrustedProxies. Bare addresses become
// single-host prefixes.
func (d DashboardConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(d.TrustedProxies))
	for _, v := range d.TrustedProxies {
		v = strings.TrimSpace(v)
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("parsing trusted proxy %q: %w", v, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("parsing trusted proxy %q: %w", v, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	ReportGenerated string `yaml:"reportGenerated"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
}

// ReporterConfig controls the weekly report job.
type ReporterConfig struct {
	Schedule      string        `yaml:"schedule"`
	Timezone      string        `yaml:"timezone"`
	LockTTL       time.Duration `yaml:"lockTTL"`
	RetryAttempts int           `yaml:"retryAttempts"`
	RetainWeeks   int           `yaml:"retainWeeks"` // 0 keeps every archived week
}

// Location resolves Timezone, falling back to the process location.
func (r ReporterConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %s: %w", r.Timezone, err)
	}
	return loc, nil
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the configured environment is development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// ResolveBaseURL returns the base URL every facade request is resolved
// against.
func (c *Config) ResolveBaseURL() string {
	if c.API.BaseURL != "" {
		return strings.TrimRight(c.API.BaseURL, "/")
	}
	if c.IsDevelopment() {
		return strings.TrimRight(c.API.DevBaseURL, "/")
	}
	return strings.TrimRight(c.API.Origin, "/") + "/api"
}

// Validate rejects configurations that cannot produce a working client.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("invalid environment %q (want %s or %s)", c.Environment, EnvDevelopment, EnvProduction)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %v", c.API.Timeout)
	}
	base, err := url.Parse(c.ResolveBaseURL())
	if err != nil {
		return fmt.Errorf("parsing api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return fmt.Errorf("api base url %q must be absolute http(s)", base.String())
	}
	if _, err := url.Parse(c.Dashboard.BackendURL); err != nil {
		return fmt.Errorf("parsing dashboard.backendURL: %w", err)
	}
	if _, err := c.Dashboard.TrustedProxyPrefixes(); err != nil {
		return fmt.Errorf("dashboard.trustedProxies: %w", err)
	}
	return nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		API: APIConfig{
			DevBaseURL: "http://127.0.0.1:8888",
			Origin:     "http://localhost:8080",
			Timeout:    10 * time.Second,
		},
		Server: ServerConfig{
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Dashboard: DashboardConfig{
			Port:         8080,
			StaticDir:    "web/dist",
			BackendURL:   "http://127.0.0.1:8888",
			AllowOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			RateLimit:    600,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "sentineleye",
			User:            "sentineleye",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				ReportGenerated: "report.generated",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 5,
		},
		Reporter: ReporterConfig{
			Schedule:      "0 22 * * 0",
			Timezone:      "Asia/Shanghai",
			LockTTL:       10 * time.Minute,
			RetryAttempts: 3,
			RetainWeeks:   52,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads SE_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SE_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("SE_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("SE_API_ORIGIN"); v != "" {
		cfg.API.Origin = v
	}
	if v := os.Getenv("SE_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = d
		}
	}
	if v := os.Getenv("SE_DASHBOARD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Dashboard.Port = port
		}
	}
	if v := os.Getenv("SE_DASHBOARD_STATIC_DIR"); v != "" {
		cfg.Dashboard.StaticDir = v
	}
	if v := os.Getenv("SE_DASHBOARD_BACKEND_URL"); v != "" {
		cfg.Dashboard.BackendURL = v
	}
	if v := os.Getenv("SE_DASHBOARD_TRUSTED_PROXIES"); v != "" {
		cfg.Dashboard.TrustedProxies = strings.Split(v, ",")
	}
	if v := os.Getenv("SE_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("SE_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("SE_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("SE_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("SE_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("SE_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SE_REPORTER_SCHEDULE"); v != "" {
		cfg.Reporter.Schedule = v
	}
	if v := os.Getenv("SE_REPORTER_TIMEZONE"); v != "" {
		cfg.Reporter.Timezone = v
	}
	if v := os.Getenv("SE_REPORTER_LOCK_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Reporter.LockTTL = d
		}
	}
	if v := os.Getenv("SE_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SE_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
