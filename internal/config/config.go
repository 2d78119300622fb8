// Package config loads server settings from flags, HERITAGE_* environment
// variables, an optional .env file and an optional heritage.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key.
const EnvPrefix = "HERITAGE"

// Config is the resolved server configuration.
type Config struct {
	Addr    string `mapstructure:"addr"`
	Env     string `mapstructure:"env"`
	BaseURL string `mapstructure:"base_url"`

	// Content is an optional YAML file replacing the built-in site content.
	Content string `mapstructure:"content"`

	Codec          string   `mapstructure:"codec"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxConnections int      `mapstructure:"max_connections"`

	Log        LogConfig        `mapstructure:"log"`
	Contact    ContactConfig    `mapstructure:"contact"`
	Newsletter NewsletterConfig `mapstructure:"newsletter"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig selects the zap encoder and the optional rotating file.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// ContactConfig drives the simulated contact delivery.
type ContactConfig struct {
	Delay       time.Duration `mapstructure:"delay"`
	Banner      time.Duration `mapstructure:"banner"`
	FailureRate float64       `mapstructure:"failure_rate"`
}

// NewsletterConfig drives the newsletter confirmation.
type NewsletterConfig struct {
	Banner time.Duration `mapstructure:"banner"`
}

// Development reports whether the server runs outside production.
func (c Config) Development() bool {
	return c.Env != "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":3000")
	v.SetDefault("env", "development")
	v.SetDefault("base_url", "")
	v.SetDefault("content", "")
	v.SetDefault("codec", "phoenix")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("max_connections", 10000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("contact.delay", 1500*time.Millisecond)
	v.SetDefault("contact.banner", 5*time.Second)
	v.SetDefault("contact.failure_rate", 0.0)
	v.SetDefault("newsletter.banner", 3*time.Second)
	v.SetDefault("shutdown_timeout", 15*time.Second)
}

// BindFlags registers the command-line overrides on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("addr", ":3000", "listen address")
	fs.String("env", "development", "environment name (development or production)")
	fs.String("base-url", "", "public origin used for canonical links")
	fs.String("content", "", "site content YAML replacing the built-in content")
	fs.String("codec", "phoenix", "default wire codec: phoenix, json or msgpack")
	fs.StringSlice("allowed-origins", nil, "extra WebSocket origins")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("log-format", "console", "console or json")
	fs.String("log-file", "", "also log to this rotating file")
	fs.Float64("contact-failure-rate", 0, "probability that a mock contact delivery fails")
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"addr":                 "addr",
	"env":                  "env",
	"base-url":             "base_url",
	"content":              "content",
	"codec":                "codec",
	"allowed-origins":      "allowed_origins",
	"log-level":            "log.level",
	"log-format":           "log.format",
	"log-file":             "log.file",
	"contact-failure-rate": "contact.failure_rate",
}

// Load resolves the configuration. Precedence, highest first: flags that
// were set, environment, config file, defaults. An empty file searches the
// working directory for heritage.yaml; a named file must exist.
func Load(fs *pflag.FlagSet, file string) (Config, error) {
	// A missing .env is the normal case in production.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("heritage")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Hosting platforms set a bare PORT.
	if err := v.BindEnv("port", "PORT"); err != nil {
		return Config{}, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if port := v.GetString("port"); port != "" && !addrExplicit(v, fs) {
		cfg.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.AllowedOrigins = splitList(cfg.AllowedOrigins)

	return cfg, cfg.Validate()
}

// addrExplicit reports whether addr came from a flag, HERITAGE_ADDR or the
// config file rather than the default.
func addrExplicit(v *viper.Viper, fs *pflag.FlagSet) bool {
	if fs != nil {
		if f := fs.Lookup("addr"); f != nil && f.Changed {
			return true
		}
	}
	if _, ok := os.LookupEnv(EnvPrefix + "_ADDR"); ok {
		return true
	}
	return v.InConfig("addr")
}

// splitList flattens comma-separated entries, as environment values arrive
// as one string.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	switch c.Codec {
	case "phoenix", "json", "msgpack":
	default:
		errs = append(errs, fmt.Errorf("unknown codec %q", c.Codec))
	}
	if c.Contact.FailureRate < 0 || c.Contact.FailureRate > 1 {
		errs = append(errs, fmt.Errorf("contact.failure_rate %v outside [0,1]", c.Contact.FailureRate))
	}
	for name, d := range map[string]time.Duration{
		"contact.delay":     c.Contact.Delay,
		"contact.banner":    c.Contact.Banner,
		"newsletter.banner": c.Newsletter.Banner,
		"shutdown_timeout":  c.ShutdownTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	return errors.Join(errs...)
}
