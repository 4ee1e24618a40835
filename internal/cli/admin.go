package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator reports (need --operator-key)",
	}

	cmd.AddCommand(newAdminStatsCmd())
	cmd.AddCommand(newAdminExportCmd())

	return cmd
}

func newAdminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show player and tap statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Stats

			if err := client.Get("/api/v1/admin/stats", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newAdminExportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download every player record as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := client.Raw("/api/v1/admin/export")
			if err != nil {
				return err
			}

			if file == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}

			if err := os.WriteFile(file, data, 0o600); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Wrote %d bytes to %s", len(data), file))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Write the CSV to this file instead of stdout")

	return cmd
}
