package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turnwise/recap"
	"github.com/turnwise/recap/turns"
)

func newEstimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate <transcript.json>",
		Short: "Estimate the serialized size of a transcript",
		Args:  cobra.ExactArgs(1),
		RunE:  runEstimate,
	}
	cmd.Flags().String("instructions", "", "File whose content accompanies every request")
	return cmd
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ts, err := readTranscript(args[0])
	if err != nil {
		return err
	}
	sc, err := sideChannelFromFlags(cmd)
	if err != nil {
		return err
	}
	est := recap.Estimate(ts, sc)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "turns: %d\n", len(ts))
	if n := sc.Size(); n > 0 {
		fmt.Fprintf(out, "side channel: %d\n", n)
	}
	fmt.Fprintf(out, "estimated: %d\n", est)
	return nil
}

// readTranscript loads a JSON turn list from disk.
func readTranscript(path string) ([]turns.Turn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	ts, err := turns.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	return ts, nil
}

func sideChannelFromFlags(cmd *cobra.Command) (recap.SideChannel, error) {
	var sc recap.SideChannel
	path, _ := cmd.Flags().GetString("instructions")
	if path == "" {
		return sc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return sc, fmt.Errorf("read instructions: %w", err)
	}
	sc.Instructions = string(data)
	return sc, nil
}
