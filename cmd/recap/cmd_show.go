package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turnwise/recap/backend"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a session's archive log",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	data, err := readArchive(cmd, args[0])
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// readArchive loads a session's offload log from the configured backend.
func readArchive(cmd *cobra.Command, sessionID string) ([]byte, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	b, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeBackend()

	data, err := b.Read(ctx, archivePath(cfg.OffloadPrefix, sessionID))
	if errors.Is(err, backend.ErrNotFound) {
		return nil, fmt.Errorf("no archive for session %s", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return data, nil
}
