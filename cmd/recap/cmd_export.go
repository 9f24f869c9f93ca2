package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/turnwise/recap/render"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Render a session's archive log as Markdown or HTML",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	cmd.Flags().Bool("html", false, "Render sanitized HTML instead of Markdown")
	cmd.Flags().StringP("output", "o", "", "Write the rendered archive to this file")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	data, err := readArchive(cmd, args[0])
	if err != nil {
		return err
	}
	md := render.Markdown(render.ParseLog(data))
	out := []byte(md)
	if html, _ := cmd.Flags().GetBool("html"); html {
		out, err = render.HTML(md)
		if err != nil {
			return err
		}
	}
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		return os.WriteFile(path, out, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
