package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ddogreen/internal/logging"
	"ddogreen/internal/power"
)

func newModeCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mode",
		Short: "Print the current power mode reported by the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			logger := logging.NewWriterLogger(logging.LevelError, logging.FormatText, cmd.ErrOrStderr())
			pm, err := power.New(cfg.Power.Backend, power.Options{
				Runner: power.NewExecRunner(ctx),
				Logger: logger,
			})
			if err != nil {
				return err
			}

			available := "available"
			if !pm.IsAvailable() {
				available = "unavailable"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (backend %s, %s)\n", pm.GetCurrentMode(), cfg.Power.Backend, available)
			return nil
		},
	}
}
