package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	stegano "github.com/yyyoichi/stegano_lsb"
)

// Config holds all command configuration.
type Config struct {
	Delimiter   string    `mapstructure:"delimiter"`
	Truncate    bool      `mapstructure:"truncate"`
	JPEGQuality int       `mapstructure:"jpeg_quality"`
	Log         LogConfig `mapstructure:"log"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"delimiter":  "delimiter",
	"truncate":   "truncate",
	"quality":    "jpeg_quality",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// LoadConfig loads configuration from defaults, the config file, the
// environment and flags, in increasing order of precedence.
func LoadConfig(configPath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("delimiter", stegano.DefaultDelimiter)
	v.SetDefault("truncate", false)
	v.SetDefault("jpeg_quality", 100)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("STEGANO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Options converts the config into codec options.
func (c *Config) Options(logger *zap.Logger) ([]stegano.Option, error) {
	if err := stegano.ValidateDelimiter(c.Delimiter); err != nil {
		return nil, err
	}
	opts := []stegano.Option{
		stegano.WithDelimiter(c.Delimiter),
		stegano.WithJPEGQuality(c.JPEGQuality),
		stegano.WithLogger(logger),
	}
	if c.Truncate {
		opts = append(opts, stegano.WithTruncate())
	}
	return opts, nil
}

// NewLogger creates a zap logger writing to w with the configured level and
// format.
func NewLogger(cfg LogConfig, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	var enc zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "json":
		enc = zapcore.NewJSONEncoder(zcfg.EncoderConfig)
	case "console", "":
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewConsoleEncoder(zcfg.EncoderConfig)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core), nil
}
