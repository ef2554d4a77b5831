package config

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SVC_SERVER_PORT.
const EnvPrefix = "SVC"

type Config struct {
	Server struct {
		Host string `mapstructure:"host" json:"host"`
		Port int    `mapstructure:"port" json:"port"`
	} `mapstructure:"server" json:"server"`

	Journal struct {
		// Path is the badger directory. Empty keeps the journal in memory.
		Path      string `mapstructure:"path" json:"path"`
		CacheSize int    `mapstructure:"cache_size" json:"cache_size"`
	} `mapstructure:"journal" json:"journal"`

	Content struct {
		MinSize int `mapstructure:"min_size" json:"min_size"`
		Level   int `mapstructure:"level" json:"level"`
	} `mapstructure:"content" json:"content"`

	// Workdir is the root every tracked file name is relative to.
	Workdir     string `mapstructure:"workdir" json:"workdir"`
	Watch       bool   `mapstructure:"watch" json:"watch"`
	Environment string `mapstructure:"environment" json:"environment"` // development, production
	LogLevel    string `mapstructure:"log_level" json:"log_level"`     // debug, info, warn, error
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 7070)
	v.SetDefault("journal.path", "")
	v.SetDefault("journal.cache_size", 256)
	v.SetDefault("content.min_size", 1024)
	v.SetDefault("content.level", 2)
	v.SetDefault("workdir", ".")
	v.SetDefault("watch", false)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the built-in configuration with environment overrides.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(fmt.Sprintf("config: decoding defaults: %v", err))
	}
	return cfg
}

// Load reads path (JSON, YAML or TOML by extension) over the defaults.
// An empty path looks for svc.{json,yaml,yml,toml} in the working directory
// and falls back to defaults when none exists.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("svc")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Content.Level < 1 || c.Content.Level > 4 {
		return fmt.Errorf("invalid content.level %d: want 1 to 4", c.Content.Level)
	}
	if c.Workdir == "" {
		return fmt.Errorf("workdir is required")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
