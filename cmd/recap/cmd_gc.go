package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/turnwise/recap/backend"
)

func newGCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Prune archive logs older than a retention window",
		RunE:  runGC,
	}
	cmd.Flags().Duration("older-than", 30*24*time.Hour, "Remove logs not touched within this window")
	return cmd
}

func runGC(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	b, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	pruner, ok := b.(backend.Pruner)
	if !ok {
		return fmt.Errorf("backend %q cannot prune", cfg.Backend)
	}
	window, _ := cmd.Flags().GetDuration("older-than")
	n, err := pruner.Prune(ctx, cfg.OffloadPrefix, time.Now().Add(-window))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d archive logs\n", n)
	return nil
}
