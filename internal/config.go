package internal

import (
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. NOVATABLE_ENGINE_WORKERS.
const EnvPrefix = "NOVATABLE"

type NovaTableConfig struct {
	AppName string `mapstructure:"app_name"`

	Engine struct {
		Workers int `mapstructure:"workers"`
		Chunk   int `mapstructure:"chunk"`
	} `mapstructure:"engine"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Shell struct {
		History    string `mapstructure:"history"`
		HistoryMax int    `mapstructure:"history_max"`
	} `mapstructure:"shell"`

	// Preload lists table files loaded before the first statement.
	Preload []string `mapstructure:"preload"`
}

// FlagKeys maps command-line flag names to config keys.
var FlagKeys = map[string]string{
	"workers":     "engine.workers",
	"chunk":       "engine.chunk",
	"log-level":   "log.level",
	"history":     "shell.history",
	"history-max": "shell.history_max",
	"preload":     "preload",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "novatable")
	v.SetDefault("engine.workers", 8)
	v.SetDefault("engine.chunk", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("shell.history", "")
	v.SetDefault("shell.history_max", 1000)
	v.SetDefault("preload", []string{})
}

// LoadConfig reads the YAML file at path, if any, then applies NOVATABLE_*
// environment variables and the flags in fs that were set explicitly.
// Both path and fs may be empty.
func LoadConfig(path string, fs *pflag.FlagSet) (*NovaTableConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range FlagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Wrapf(err, "bind flag %q", name)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg NovaTableConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *NovaTableConfig) Validate() error {
	if c.Engine.Workers < 1 {
		return errors.Errorf("engine.workers must be at least 1, got %d", c.Engine.Workers)
	}
	if c.Engine.Chunk < 0 {
		return errors.Errorf("engine.chunk must not be negative, got %d", c.Engine.Chunk)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses Log.Level ("debug", "info", "warn", "error").
func (c *NovaTableConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.Wrapf(err, "log.level %q", c.Log.Level)
	}
	return lvl, nil
}
