// Package config loads gomesh configuration from YAML or TOML files with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/philipparndt/gomesh/internal/logging"
	"github.com/philipparndt/gomesh/pkg/meshio"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "GOMESH_"

// Config holds all configuration for gomesh.
type Config struct {
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Conversion ConversionConfig `yaml:"conversion" toml:"conversion"`
	Cache      CacheConfig      `yaml:"cache" toml:"cache"`
	Log        LogConfig        `yaml:"log" toml:"log"`
	Watch      WatchConfig      `yaml:"watch" toml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host" toml:"host"`
	Port             int           `yaml:"port" toml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout" toml:"request_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown" toml:"graceful_shutdown"`
	// MaxUploadBytes bounds the size of an uploaded mesh
	MaxUploadBytes int64 `yaml:"max_upload_bytes" toml:"max_upload_bytes"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ConversionConfig controls the canonical STL output.
type ConversionConfig struct {
	// Encoding is "binary" or "ascii"
	Encoding string `yaml:"encoding" toml:"encoding"`
	// Formats lists the accepted input tags
	Formats []string `yaml:"formats" toml:"formats"`
	// OpenSCAD is the binary used to render .scad input
	OpenSCAD string `yaml:"openscad" toml:"openscad"`
}

// ASCII reports whether canonical output is ASCII STL
func (c ConversionConfig) ASCII() bool {
	return strings.EqualFold(c.Encoding, "ascii")
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver" toml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl" toml:"ttl"`
	MaxEntries int           `yaml:"max_entries" toml:"max_entries"`
	// MaxBytes bounds the memory driver's stored values. Each upload may
	// store up to MaxUploadBytes of STL, so keep this a multiple of it.
	MaxBytes int64       `yaml:"max_bytes" toml:"max_bytes"`
	Redis    RedisConfig `yaml:"redis" toml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr" toml:"addr"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
	PoolSize int    `yaml:"pool_size" toml:"pool_size"`
	Prefix   string `yaml:"prefix" toml:"prefix"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // json or console
}

// WatchConfig holds file watcher settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// Default returns a configuration with defaults for local use.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     60 * time.Second,
			IdleTimeout:      120 * time.Second,
			RequestTimeout:   60 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxUploadBytes:   64 << 20,
		},
		Conversion: ConversionConfig{
			Encoding: "binary",
			Formats:  []string{"stl", "obj", "ply"},
			OpenSCAD: "openscad",
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        30 * time.Minute,
			MaxEntries: 256,
			MaxBytes:   512 << 20,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				PoolSize: 10,
				Prefix:   "gomesh:",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Load reads configuration from a YAML or TOML file, chosen by extension,
// and applies environment overrides. An empty path yields the defaults plus
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, cfg)
		case ".toml":
			err = toml.Unmarshal(data, cfg)
		default:
			return nil, fmt.Errorf("unsupported config file type %q", ext)
		}
		if err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	if enc := strings.ToLower(c.Conversion.Encoding); enc != "binary" && enc != "ascii" {
		return fmt.Errorf("invalid conversion encoding: %s", c.Conversion.Encoding)
	}

	if len(c.Conversion.Formats) == 0 {
		return fmt.Errorf("at least one input format must be enabled")
	}
	for _, f := range c.Conversion.Formats {
		switch meshio.ParseFormat(f) {
		case meshio.FormatSTL, meshio.FormatOBJ, meshio.FormatPLY:
		default:
			return fmt.Errorf("invalid input format: %s", f)
		}
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}

	if c.Cache.MaxBytes < 0 {
		return fmt.Errorf("cache max_bytes must not be negative")
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}

	return nil
}

// AcceptedFormats returns the enabled input formats as tags
func (c *Config) AcceptedFormats() []meshio.Format {
	formats := make([]meshio.Format, 0, len(c.Conversion.Formats))
	for _, f := range c.Conversion.Formats {
		formats = append(formats, meshio.ParseFormat(f))
	}
	return formats
}

// applyEnvOverrides applies GOMESH_* environment variables to config.
func applyEnvOverrides(cfg *Config) error {
	if v := env("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := env("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sSERVER_PORT: %w", EnvPrefix, err)
		}
		cfg.Server.Port = port
	}

	if v := env("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_UPLOAD_BYTES: %w", EnvPrefix, err)
		}
		cfg.Server.MaxUploadBytes = n
	}

	if v := env("ENCODING"); v != "" {
		cfg.Conversion.Encoding = v
	}

	if v := env("OPENSCAD"); v != "" {
		cfg.Conversion.OpenSCAD = v
	}

	if v := env("CACHE_DRIVER"); v != "" {
		cfg.Cache.Driver = v
	}

	if v := env("CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sCACHE_TTL: %w", EnvPrefix, err)
		}
		cfg.Cache.TTL = ttl
	}

	if v := env("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := env("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}

	if v := env("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := env("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	return nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}
