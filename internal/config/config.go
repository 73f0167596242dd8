package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Conf holds the application configuration, making it accessible globally.
// Read it through Current once the file watcher may be running.
var (
	Conf *Config
	mu   sync.RWMutex
)

// Config struct is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Export    ExportConfig    `mapstructure:"export"`
	Upload    UploadConfig    `mapstructure:"upload"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Rubric    RubricConfig    `mapstructure:"rubric"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port          string `mapstructure:"port"`
	SessionSecret string `mapstructure:"session_secret"`
	Production    bool   `mapstructure:"production"`
}

// SessionConfig controls how long an untouched evaluation is kept.
type SessionConfig struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// ExportConfig drives the PDF layout.
type ExportConfig struct {
	MarginMM float64 `mapstructure:"margin_mm"`
	ChartDPI int     `mapstructure:"chart_dpi"`
}

type UploadConfig struct {
	MaxBytes      int64 `mapstructure:"max_bytes"`
	LogoMaxPixels int   `mapstructure:"logo_max_pixels"`
}

// RateLimitConfig applies to the logo upload and the PDF download.
type RateLimitConfig struct {
	Requests uint          `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// RubricConfig points at an optional YAML file replacing the built-in rubric.
type RubricConfig struct {
	Path string `mapstructure:"path"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.session_secret", defaultSessionSecret)
	v.SetDefault("server.production", false)

	v.SetDefault("session.idle_timeout", 2*time.Hour)
	v.SetDefault("session.sweep_interval", time.Minute)

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	v.SetDefault("export.margin_mm", 5.0)
	v.SetDefault("export.chart_dpi", 150)

	v.SetDefault("upload.max_bytes", 2<<20)
	v.SetDefault("upload.logo_max_pixels", 512)

	v.SetDefault("rate_limit.requests", 10)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("rubric.path", "")
}

// Load reads config/config.yaml under projectRoot, layered over the defaults
// and KPI_* environment variables, and starts watching the file for changes.
func Load(projectRoot string, log *zap.Logger) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("KPI") // e.g., KPI_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	set(cfg)

	if file := v.ConfigFileUsed(); file != "" {
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
			next, err := decode(v)
			if err != nil {
				log.Error("Error reloading configuration", zap.Error(err))
				return
			}
			set(next)
		})
		v.WatchConfig()
	}

	log.Info("Configuration loaded successfully", zap.String("file", v.ConfigFileUsed()))
	return cfg, nil
}

const (
	defaultSessionSecret = "change-me-in-production"
	minSessionSecretLen  = 32
)

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Server.Port == "":
		return errors.New("config: server.port is empty")
	case c.Server.Production && c.Server.SessionSecret == defaultSessionSecret:
		return errors.New("config: server.session_secret must be changed in production")
	case c.Server.Production && len(c.Server.SessionSecret) < minSessionSecretLen:
		return fmt.Errorf("config: server.session_secret needs at least %d bytes in production", minSessionSecretLen)
	case c.Upload.MaxBytes <= 0:
		return errors.New("config: upload.max_bytes must be positive")
	case c.Upload.LogoMaxPixels <= 0:
		return errors.New("config: upload.logo_max_pixels must be positive")
	case c.Session.IdleTimeout <= 0 || c.Session.SweepInterval <= 0:
		return errors.New("config: session durations must be positive")
	case c.RateLimit.Requests == 0 || c.RateLimit.Window <= 0:
		return errors.New("config: rate_limit needs requests and window")
	}
	return nil
}

func set(c *Config) {
	mu.Lock()
	Conf = c
	mu.Unlock()
}

// Current returns the latest loaded configuration, including hot reloads.
func Current() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return Conf
}
