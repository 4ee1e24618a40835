package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	var device string

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Start a play session for a device",
		Long: `Start a play session for a device.

The session id is saved to the session file so the next submit picks it up.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"device_id": device}
			var result SessionResult

			if err := client.Post("/api/v1/scores/session", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveSession(result.SessionID); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&device, "device", "", "Device id (required)")
	_ = cmd.MarkFlagRequired("device")

	return cmd
}

func newSubmitCmd() *cobra.Command {
	var device, name, mode, contact, session string
	var score float64

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a score",
		RunE: func(cmd *cobra.Command, args []string) error {
			if session == "" {
				saved, err := cfg.LoadSession()
				if err != nil {
					return fmt.Errorf("failed to read session: %w", err)
				}
				session = saved
			}

			req := map[string]any{
				"device_id":   device,
				"player_name": name,
				"score":       score,
				"mode":        mode,
				"session_id":  session,
			}
			if cmd.Flags().Changed("contact") {
				req["contact"] = contact
			}
			var result SubmitResult

			if err := client.Post("/api/v1/scores", req, &result); err != nil {
				return err
			}

			if err := cfg.ClearSession(); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&device, "device", "", "Device id (required)")
	cmd.Flags().StringVar(&name, "name", "", "Player name (required)")
	cmd.Flags().Float64Var(&score, "score", 0, "Score (required)")
	cmd.Flags().StringVar(&mode, "mode", "solo", "Game mode: solo, versus")
	cmd.Flags().StringVar(&contact, "contact", "", "Contact to attach to the record")
	cmd.Flags().StringVar(&session, "session", "", "Session id (default: the last saved session)")
	_ = cmd.MarkFlagRequired("device")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func newRegisterCmd() *cobra.Command {
	var device, name, contact string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Claim a player name for a device",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"device_id":   device,
				"player_name": name,
			}
			if cmd.Flags().Changed("contact") {
				req["contact"] = contact
			}
			var result PlayerRecord

			if err := client.Post("/api/v1/scores/register", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&device, "device", "", "Device id (required)")
	cmd.Flags().StringVar(&name, "name", "", "Player name (required)")
	cmd.Flags().StringVar(&contact, "contact", "", "Contact to attach to the player")
	_ = cmd.MarkFlagRequired("device")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newLeaderboardCmd() *cobra.Command {
	var mode, period string
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the best scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("mode", mode)
			query.Set("period", period)
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			var result Leaderboard

			if err := client.Get("/api/v1/scores", query, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Only this mode: solo, versus")
	cmd.Flags().StringVar(&period, "period", "", "Only recent scores: week")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of scores (server default when 0)")

	return cmd
}
