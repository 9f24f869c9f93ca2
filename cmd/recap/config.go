package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/turnwise/recap"
)

// cliConfig is the resolved command-line configuration. Every field can be
// set from the YAML file, a RECAP_* environment variable, or a flag; later
// sources win.
type cliConfig struct {
	LogLevel      string  `yaml:"log_level"      env:"RECAP_LOG_LEVEL"`
	Backend       string  `yaml:"backend"        env:"RECAP_BACKEND"`
	Dir           string  `yaml:"dir"            env:"RECAP_DIR"`
	Database      string  `yaml:"database"       env:"RECAP_DATABASE"`
	OffloadPrefix string  `yaml:"offload_prefix" env:"RECAP_OFFLOAD_PREFIX"`
	Provider      string  `yaml:"provider"       env:"RECAP_PROVIDER"`
	Model         string  `yaml:"model"          env:"RECAP_MODEL"`
	MaxTurns      int     `yaml:"max_turns"      env:"RECAP_MAX_TURNS"`
	MaxSize       int     `yaml:"max_size"       env:"RECAP_MAX_SIZE"`
	MaxFraction   float64 `yaml:"max_fraction"   env:"RECAP_MAX_FRACTION"`
	KeepTurns     int     `yaml:"keep"           env:"RECAP_KEEP"`
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		LogLevel:      "info",
		Backend:       "fs",
		Dir:           ".recap",
		OffloadPrefix: recap.DefaultOffloadPrefix,
		Provider:      "fake",
	}
}

// loadConfig resolves the configuration for one command invocation.
// An explicitly named config file must exist; the default recap.yaml is
// optional.
func loadConfig(cmd *cobra.Command) (cliConfig, error) {
	cfg := defaultCLIConfig()
	fl := cmd.Flags()

	path, _ := fl.GetString("config")
	explicit := fl.Changed("config")
	if !explicit {
		if p := os.Getenv("RECAP_CONFIG"); p != "" {
			path, explicit = p, true
		} else {
			path = "recap.yaml"
		}
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	if fl.Changed("log-level") {
		cfg.LogLevel, _ = fl.GetString("log-level")
	}
	if fl.Changed("backend") {
		cfg.Backend, _ = fl.GetString("backend")
	}
	if fl.Changed("dir") {
		cfg.Dir, _ = fl.GetString("dir")
	}
	if fl.Changed("database") {
		cfg.Database, _ = fl.GetString("database")
	}
	if fl.Changed("offload-prefix") {
		cfg.OffloadPrefix, _ = fl.GetString("offload-prefix")
	}
	if fl.Changed("provider") {
		cfg.Provider, _ = fl.GetString("provider")
	}
	if fl.Changed("model") {
		cfg.Model, _ = fl.GetString("model")
	}
	if fl.Changed("max-turns") {
		cfg.MaxTurns, _ = fl.GetInt("max-turns")
	}
	if fl.Changed("max-size") {
		cfg.MaxSize, _ = fl.GetInt("max-size")
	}
	if fl.Changed("max-fraction") {
		cfg.MaxFraction, _ = fl.GetFloat64("max-fraction")
	}
	if fl.Changed("keep") {
		cfg.KeepTurns, _ = fl.GetInt("keep")
	}
	return cfg, nil
}

// newLogger builds the CLI logger. Logs go to stderr so command output on
// stdout stays pipeable; NO_COLOR disables ANSI colors.
func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	})
	return slog.New(handler), nil
}

// engineConfig translates the CLI trigger settings into an engine Config.
// With no trigger flags set, Triggers stays nil and the engine defaults
// apply.
func engineConfig(cfg cliConfig, logger *slog.Logger) *recap.Config {
	ec := &recap.Config{
		OffloadPrefix: cfg.OffloadPrefix,
		Logger:        recap.NewSlogLogger(logger),
	}
	if cfg.MaxTurns > 0 {
		ec.Triggers = append(ec.Triggers, recap.Turns(cfg.MaxTurns))
	}
	if cfg.MaxSize > 0 {
		ec.Triggers = append(ec.Triggers, recap.Size(cfg.MaxSize))
	}
	if cfg.MaxFraction > 0 {
		ec.Triggers = append(ec.Triggers, recap.Fraction(cfg.MaxFraction))
	}
	if cfg.KeepTurns > 0 {
		ec.Keep = recap.Turns(cfg.KeepTurns)
	}
	return ec
}
