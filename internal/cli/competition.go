package cli

import (
	"github.com/spf13/cobra"
)

func newCompetitionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "competition",
		Short: "Show or change the competition state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Competition

			if err := client.Get("/api/v1/competition", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.AddCommand(newCompetitionActionCmd("open", "Open a new competition period"))
	cmd.AddCommand(newCompetitionActionCmd("close", "Close the current competition period"))

	return cmd
}

// newCompetitionActionCmd builds the operator commands; they need --operator-key
func newCompetitionActionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Competition

			if err := client.Post("/api/v1/admin/competition/"+action, nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
