// Package config loads docoutline settings from defaults, an optional YAML
// config file, DOCOUTLINE_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultWorkerCount    = 4
	defaultMaxQueueSize   = 100
	defaultMaxUploadBytes = 50 << 20
	defaultJobTTL         = time.Hour
	defaultWatchSettle    = 500 * time.Millisecond
	defaultWatchAttempts  = 10
)

type Config struct {
	// Batch driver
	InputDir       string   `mapstructure:"input_dir"`
	OutputDir      string   `mapstructure:"output_dir"`
	Extensions     []string `mapstructure:"extensions"`
	OutputFormat   string   `mapstructure:"output_format"`
	ValidateOutput bool     `mapstructure:"validate_output"`

	// Worker pool
	WorkerCount  int `mapstructure:"worker_count"`
	MaxQueueSize int `mapstructure:"max_queue_size"`

	// HTTP API
	Port           string        `mapstructure:"port"`
	APIKey         string        `mapstructure:"api_key"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	JobTTL         time.Duration `mapstructure:"job_ttl"`

	// Directory watcher
	WatchSettle   time.Duration `mapstructure:"watch_settle"`
	WatchAttempts int           `mapstructure:"watch_attempts"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Loader resolves a Config. Precedence, highest first: bound flags,
// environment, config file, defaults.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	v.SetDefault("input_dir", "/app/input")
	v.SetDefault("output_dir", "/app/output")
	v.SetDefault("extensions", []string{".pdf"})
	v.SetDefault("output_format", "json")
	v.SetDefault("validate_output", true)
	v.SetDefault("worker_count", defaultWorkerCount)
	v.SetDefault("max_queue_size", defaultMaxQueueSize)
	v.SetDefault("port", "8090")
	v.SetDefault("api_key", "")
	v.SetDefault("max_upload_bytes", defaultMaxUploadBytes)
	v.SetDefault("job_ttl", defaultJobTTL)
	v.SetDefault("watch_settle", defaultWatchSettle)
	v.SetDefault("watch_attempts", defaultWatchAttempts)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetEnvPrefix("DOCOUTLINE")
	v.AutomaticEnv()

	return &Loader{v: v}
}

// BindFlag lets a command-line flag override key when the flag is set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: flag not defined", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads cfgFile, or config.yaml from . or $HOME/.docoutline when cfgFile
// is empty. A missing default config file is not an error.
func (l *Loader) Load(cfgFile string) (Config, error) {
	if cfgFile != "" {
		l.v.SetConfigFile(cfgFile)
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("$HOME/.docoutline")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// Load resolves the configuration without any bound flags.
func Load(cfgFile string) (Config, error) {
	return NewLoader().Load(cfgFile)
}

func (c *Config) normalize() {
	if c.WorkerCount <= 0 {
		c.WorkerCount = defaultWorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = defaultMaxQueueSize
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = defaultMaxUploadBytes
	}
	if c.JobTTL <= 0 {
		c.JobTTL = defaultJobTTL
	}
	if c.WatchSettle <= 0 {
		c.WatchSettle = defaultWatchSettle
	}
	if c.WatchAttempts <= 0 {
		c.WatchAttempts = defaultWatchAttempts
	}

	c.OutputFormat = strings.ToLower(strings.TrimSpace(c.OutputFormat))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
}

// Validate checks settings shared by every command.
func (c Config) Validate() error {
	switch c.OutputFormat {
	case "json", "yaml":
	default:
		return fmt.Errorf("output_format must be json or yaml, got %q", c.OutputFormat)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log_format must be json or text, got %q", c.LogFormat)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must list at least one file extension")
	}
	for _, ext := range c.Extensions {
		if !parser.IsSupportedExtension("file" + ext) {
			return fmt.Errorf("extension %q: %w", ext, parser.ErrUnsupported)
		}
	}
	return nil
}

// ValidateDirs checks the directories used by batch and watch.
func (c Config) ValidateDirs() error {
	if strings.TrimSpace(c.InputDir) == "" {
		return fmt.Errorf("input_dir is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	return nil
}
