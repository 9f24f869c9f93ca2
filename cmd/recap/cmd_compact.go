package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/turnwise/recap"
	"github.com/turnwise/recap/turns"
)

func newCompactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact <transcript.json>",
		Short: "Run one compaction round against a stored transcript",
		Long: `Runs the engine against a transcript read from disk. The compacted
transcript is written as JSON to stdout (or --output); the round summary
goes to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: runCompact,
	}
	cmd.Flags().String("session", "", "Session ID (defaults to a random UUID)")
	cmd.Flags().StringP("output", "o", "", "Write the compacted transcript to this file")
	cmd.Flags().String("instructions", "", "File whose content accompanies every request")
	return cmd
}

func runCompact(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	ts, err := readTranscript(args[0])
	if err != nil {
		return err
	}
	sc, err := sideChannelFromFlags(cmd)
	if err != nil {
		return err
	}
	sessionID, _ := cmd.Flags().GetString("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx := cmd.Context()
	b, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}
	engine, err := recap.New(engineConfig(cfg, logger), recap.WithBackend(b))
	if err != nil {
		return err
	}

	st := recap.NewSessionState(sessionID)
	res, err := engine.CompactWithSideChannel(ctx, ts, st, svc, sc)
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "session: %s\n", sessionID)
	fmt.Fprintf(errOut, "outcome: %s\n", res.Outcome)
	fmt.Fprintf(errOut, "estimated: %d\n", res.Estimated)
	if res.Truncated {
		fmt.Fprintln(errOut, "truncated: old invocation arguments shortened")
	}
	if res.DiscardedTurns > 0 {
		fmt.Fprintf(errOut, "discarded: %d turns\n", res.DiscardedTurns)
	}
	if res.OffloadPath != "" {
		fmt.Fprintf(errOut, "offload: %s\n", res.OffloadPath)
	}

	data, err := turns.Marshal(res.Turns)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
