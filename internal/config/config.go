package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Default values for the service configuration.
const (
	DefaultWebPort           = 8192
	DefaultMaxBatch          = 100
	DefaultCtyUpdateInterval = 7 * 24 * time.Hour // Weekly
	MinCtyUpdateInterval     = time.Hour
	DefaultDownloadRetries   = 3
	DefaultDataDir           = "/data" // Inside the container
	DefaultCtyCharset        = "utf-8"
)

// DefaultCtyURL is where the current country file is published.
var DefaultCtyURL = "https://www.country-files.com/cty/cty.dat"

// RedisConfig holds configuration for the optional Redis lookup cache.
type RedisConfig struct {
	Enabled            bool          `env:"REDIS_ENABLED" envDefault:"false"`
	Host               string        `env:"REDIS_HOST"`
	Port               string        `env:"REDIS_PORT" envDefault:"6379"`
	User               string        `env:"REDIS_USER"`
	Password           string        `env:"REDIS_PASSWORD"`
	DB                 int           `env:"REDIS_DB" envDefault:"0"`
	UseTLS             bool          `env:"REDIS_USE_TLS" envDefault:"false"`
	InsecureSkipVerify bool          `env:"REDIS_INSECURE_SKIP_VERIFY" envDefault:"false"`
	LookupExpiry       time.Duration `env:"REDIS_LOOKUP_EXPIRY" envDefault:"10m"`
}

// Config holds all application configuration.
type Config struct {
	WebPort  int    `env:"WEBPORT" envDefault:"8192"`
	BaseURL  string `env:"WEBURL" envDefault:"/"`
	MaxBatch int    `env:"MAX_BATCH" envDefault:"100"` // Callsigns per batch lookup request
	DataDir  string `env:"DATA_DIR" envDefault:"/data"` // Directory for SQLite files

	// Country file source. CtyFile, when set, is read instead of downloading CtyURL.
	CtyFile           string        `env:"CTY_FILE"`
	CtyURL            string        `env:"CTY_URL"`
	CtyCharset        string        `env:"CTY_CHARSET" envDefault:"utf-8"`
	CtyUpdateInterval time.Duration `env:"CTY_UPDATE_INTERVAL" envDefault:"168h"`
	DownloadRetries   int           `env:"CTY_DOWNLOAD_RETRIES" envDefault:"3"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"notice"`

	// Comma separated list handed to gin's SetTrustedProxies.
	TrustedProxies string `env:"TRUSTED_PROXIES"`

	Redis RedisConfig
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	// Parse Redis-specific options
	if err := env.Parse(&cfg.Redis); err != nil {
		return nil, fmt.Errorf("failed to parse Redis environment variables: %w", err)
	}

	if cfg.CtyURL == "" {
		cfg.CtyURL = DefaultCtyURL
	}
	cfg.CtyCharset = strings.TrimSpace(cfg.CtyCharset)
	if cfg.CtyCharset == "" {
		cfg.CtyCharset = DefaultCtyCharset
	}

	if cfg.CtyUpdateInterval < MinCtyUpdateInterval {
		cfg.CtyUpdateInterval = MinCtyUpdateInterval
	}
	if cfg.DownloadRetries < 0 {
		cfg.DownloadRetries = 0
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = DefaultMaxBatch
	}
	if cfg.WebPort <= 0 || cfg.WebPort > 65535 {
		return nil, fmt.Errorf("invalid WEBPORT %d", cfg.WebPort)
	}

	// Ensure DataDir exists (it's essential for SQLite)
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}

	return cfg, nil
}

// TrustedProxyList splits TrustedProxies into trimmed, non-empty entries.
func (c *Config) TrustedProxyList() []string {
	var out []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
