package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/turnwise/recap"
)

// parseRoot builds the command tree and parses flags without running a
// subcommand, so loadConfig can be exercised directly.
func parseRoot(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	root := newRootCmd()
	if err := root.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig(parseRoot(t))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Backend != "fs" {
		t.Errorf("Backend = %q, want fs", cfg.Backend)
	}
	if cfg.Dir != ".recap" {
		t.Errorf("Dir = %q, want .recap", cfg.Dir)
	}
	if cfg.Provider != "fake" {
		t.Errorf("Provider = %q, want fake", cfg.Provider)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.OffloadPrefix != recap.DefaultOffloadPrefix {
		t.Errorf("OffloadPrefix = %q, want %q", cfg.OffloadPrefix, recap.DefaultOffloadPrefix)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	writeFile(t, filepath.Join(tmp, "recap.yaml"), "backend: sqlite\ndatabase: archive.db\nmax_turns: 40\n")

	cfg, err := loadConfig(parseRoot(t))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("Backend = %q, want sqlite", cfg.Backend)
	}
	if cfg.Database != "archive.db" {
		t.Errorf("Database = %q, want archive.db", cfg.Database)
	}
	if cfg.MaxTurns != 40 {
		t.Errorf("MaxTurns = %d, want 40", cfg.MaxTurns)
	}
	// Values the file does not mention keep their defaults.
	if cfg.Provider != "fake" {
		t.Errorf("Provider = %q, want fake", cfg.Provider)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	writeFile(t, filepath.Join(tmp, "recap.yaml"), "backend: sqlite\nlog_level: debug\n")
	t.Setenv("RECAP_BACKEND", "postgres")
	t.Setenv("RECAP_LOG_LEVEL", "warn")

	cfg, err := loadConfig(parseRoot(t, "--backend", "fs"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Backend != "fs" {
		t.Errorf("Backend = %q, want flag value fs", cfg.Backend)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want env value warn", cfg.LogLevel)
	}
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	p := filepath.Join(tmp, "other.yaml")
	writeFile(t, p, "provider: openai\n")
	t.Setenv("RECAP_CONFIG", p)

	cfg, err := loadConfig(parseRoot(t))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	writeFile(t, filepath.Join(tmp, "recap.yaml"), "bakcend: fs\n")

	if _, err := loadConfig(parseRoot(t)); err == nil {
		t.Fatal("expected an error for an unknown config key")
	}
}

func TestLoadConfigExplicitFileMustExist(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)

	_, err := loadConfig(parseRoot(t, "--config", filepath.Join(tmp, "absent.yaml")))
	if err == nil {
		t.Fatal("expected an error for a missing --config file")
	}
}

func TestEngineConfigTriggers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ec := engineConfig(cliConfig{
		OffloadPrefix: "offload",
		MaxTurns:      30,
		MaxSize:       1000,
		MaxFraction:   0.5,
		KeepTurns:     4,
	}, logger)
	if len(ec.Triggers) != 3 {
		t.Fatalf("got %d triggers, want 3", len(ec.Triggers))
	}
	if ec.Keep != recap.Turns(4) {
		t.Errorf("Keep = %+v, want Turns(4)", ec.Keep)
	}

	// No trigger flags set leaves Triggers nil so the engine defaults apply.
	ec = engineConfig(cliConfig{OffloadPrefix: "offload"}, logger)
	if ec.Triggers != nil {
		t.Errorf("Triggers = %+v, want nil", ec.Triggers)
	}
	if ec.Keep != (recap.Threshold{}) {
		t.Errorf("Keep = %+v, want zero", ec.Keep)
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := newLogger("loud"); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
	if _, err := newLogger("debug"); err != nil {
		t.Fatalf("newLogger(debug): %v", err)
	}
}

func TestArchivePath(t *testing.T) {
	if got := archivePath("offload", "s1"); got != "offload/s1.log" {
		t.Errorf("archivePath = %q, want offload/s1.log", got)
	}
}
