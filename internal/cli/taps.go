package cli

import (
	"github.com/spf13/cobra"
)

func newTapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taps",
		Short: "Logo tap analytics commands",
	}

	cmd.AddCommand(newTapsRecordCmd())
	cmd.AddCommand(newTapsTotalsCmd())

	return cmd
}

func newTapsRecordCmd() *cobra.Command {
	var brand, device string
	var taps int

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Report a device's cumulative tap count for a brand",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"brand":     brand,
				"device_id": device,
				"taps":      taps,
			}
			var result TapsResult

			if err := client.Post("/api/v1/analytics/taps", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&brand, "brand", "", "Brand whose logo was tapped (required)")
	cmd.Flags().StringVar(&device, "device", "", "Device id")
	cmd.Flags().IntVar(&taps, "taps", 0, "Cumulative tap count (required)")
	_ = cmd.MarkFlagRequired("brand")
	_ = cmd.MarkFlagRequired("taps")

	return cmd
}

func newTapsTotalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show tap totals per brand",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TapTotals

			if err := client.Get("/api/v1/analytics/taps", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
