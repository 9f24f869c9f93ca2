// Command recap compacts conversational transcripts from the command line.
//
// It wraps the engine for offline use: estimate a transcript's size, run a
// compaction round against a stored transcript, and inspect or export the
// archive logs the engine writes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "recap",
		Short: "Compact conversational transcripts against a size budget",
		Long: `recap keeps long-running conversational transcripts inside a model's
input budget: it estimates transcript size, archives the turns it is about
to discard, and replaces them with a model-written summary.

Configuration resolves in order: flags, RECAP_* environment variables,
recap.yaml, built-in defaults.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fl := root.PersistentFlags()
	fl.String("config", "", "Path to a recap.yaml config file")
	fl.String("log-level", "", "Log level (debug, info, warn, error)")
	fl.String("backend", "", "Archive backend (fs, sqlite, postgres)")
	fl.String("dir", "", "Root directory for the fs backend")
	fl.String("database", "", "SQLite path or PostgreSQL connection string")
	fl.String("offload-prefix", "", "Path prefix for per-session archive logs")
	fl.String("provider", "", "Summary provider (fake, anthropic, openai)")
	fl.String("model", "", "Model ID for the summary provider")
	fl.Int("max-turns", 0, "Compact when the transcript exceeds this many turns")
	fl.Int("max-size", 0, "Compact when the size estimate exceeds this value")
	fl.Float64("max-fraction", 0, "Compact when the estimate exceeds this fraction of the provider's input limit")
	fl.Int("keep", 0, "Recent turns to keep out of every summary")

	root.AddCommand(
		newEstimateCmd(),
		newCompactCmd(),
		newShowCmd(),
		newExportCmd(),
		newGCCmd(),
	)
	return root
}
