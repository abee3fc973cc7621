// Package config loads settings for the brk command from a brk.yaml file,
// BRK_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/meigma/brk"
)

// Config holds the resolved command settings.
type Config struct {
	Key         string   `mapstructure:"key"`
	Output      string   `mapstructure:"output"`
	ResDir      string   `mapstructure:"res_dir"`
	ConfigFile  string   `mapstructure:"config_file"`
	SkipExt     []string `mapstructure:"skip_ext"`
	EncryptExt  []string `mapstructure:"encrypt_ext"`
	Compression string   `mapstructure:"compression"`
	Level       int      `mapstructure:"level"`
	Concurrency int      `mapstructure:"concurrency"`
	MaxFiles    int      `mapstructure:"max_files"`
	LogLevel    string   `mapstructure:"log_level"`
	LogFormat   string   `mapstructure:"log_format"`
	NoProgress  bool     `mapstructure:"no_progress"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"key":         "key",
	"output":      "output",
	"res":         "res_dir",
	"config-file": "config_file",
	"skip-ext":    "skip_ext",
	"encrypt-ext": "encrypt_ext",
	"compression": "compression",
	"level":       "level",
	"concurrency": "concurrency",
	"max-files":   "max_files",
	"log-level":   "log_level",
	"log-format":  "log_format",
	"no-progress": "no_progress",
}

// Load reads configuration from cfgFile (or brk.yaml in the working
// directory when empty), the environment and flags, in increasing order
// of precedence. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("key", "")
	v.SetDefault("output", "game.brk")
	v.SetDefault("res_dir", "")
	v.SetDefault("config_file", brk.DefaultConfigFile)
	v.SetDefault("skip_ext", brk.DefaultSkipExtensions())
	v.SetDefault("encrypt_ext", brk.DefaultEncryptExtensions())
	v.SetDefault("compression", "zstd")
	v.SetDefault("level", 12)
	v.SetDefault("concurrency", 0)
	v.SetDefault("max_files", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("no_progress", false)

	v.SetEnvPrefix("BRK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("brk")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Compression {
	case "zstd", "none":
	default:
		return fmt.Errorf("invalid compression %q: want zstd or none", c.Compression)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: want text or json", c.LogFormat)
	}
	if c.Level < 1 || c.Level > 22 {
		return fmt.Errorf("invalid compression level %d: want 1-22", c.Level)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("invalid concurrency %d", c.Concurrency)
	}
	return nil
}

// SlogLevel returns the configured log level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseKey decodes the configured key. An empty key yields nil.
func (c *Config) ParseKey() ([]byte, error) {
	if c.Key == "" {
		return nil, nil
	}
	return brk.ParseKey(c.Key)
}

// PackOptions translates the packing settings into brk options.
func (c *Config) PackOptions() []brk.PackOption {
	comp := brk.CompressionZstd
	if c.Compression == "none" {
		comp = brk.CompressionNone
	}
	concurrency := c.Concurrency
	if concurrency == 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return []brk.PackOption{
		brk.PackWithConfigFile(c.ConfigFile),
		brk.PackWithSkipExtensions(c.SkipExt...),
		brk.PackWithEncryptExtensions(c.EncryptExt...),
		brk.PackWithCompression(comp),
		brk.PackWithEncoderLevel(zstd.EncoderLevelFromZstd(c.Level)),
		brk.PackWithConcurrency(concurrency),
		brk.PackWithMaxFiles(c.MaxFiles),
	}
}

// LogValue implements slog.LogValuer. The key is never included.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("output", c.Output),
		slog.String("res_dir", c.ResDir),
		slog.String("config_file", c.ConfigFile),
		slog.Any("skip_ext", c.SkipExt),
		slog.Any("encrypt_ext", c.EncryptExt),
		slog.String("compression", c.Compression),
		slog.Int("level", c.Level),
		slog.Int("concurrency", c.Concurrency),
		slog.Bool("key_set", c.Key != ""),
	)
}
