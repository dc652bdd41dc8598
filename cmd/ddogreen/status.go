package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"ddogreen/internal/config"
	"ddogreen/internal/status"
	"ddogreen/internal/tui"
)

func newStatusCmd(flags *cliFlags) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state published by a running controller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(flags.configPath)
			if err != nil {
				// status is still readable from the default location
				cfg = config.DefaultConfig()
			}

			if watch {
				return tui.Run(tui.Sources{
					StatusFile:  cfg.Status.StateFile,
					HistoryFile: cfg.Status.HistoryFile,
				})
			}

			doc, err := status.NewStore(cfg.Status.StateFile, nil).Load()
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), doc)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "open the live dashboard")
	return cmd
}

func printStatus(w io.Writer, doc status.Document) {
	running := "stopped"
	if doc.Running {
		running = "running"
	}

	fmt.Fprintf(w, "Agent:        %s (pid %d, run %s)\n", running, doc.PID, doc.RunID)
	fmt.Fprintf(w, "State:        %s\n", doc.State())
	fmt.Fprintf(w, "Power mode:   %s (backend %s)\n", doc.PowerMode, doc.Backend)
	fmt.Fprintf(w, "Load:         %.2f on %d cores (%.3f per core)\n", doc.Load, doc.CoreCount, doc.NormalizedLoad)
	fmt.Fprintf(w, "Thresholds:   high %.2f, power save %.2f\n", doc.HighThreshold, doc.PowerSaveThreshold)
	fmt.Fprintf(w, "Samples:      %d every %.0fs\n", doc.Samples, doc.IntervalSeconds)
	fmt.Fprintf(w, "Transitions:  %d (%d suppressed, %d rate limited)\n", doc.Transitions, doc.Suppressed, doc.RateLimited)
	if !doc.LastChange.IsZero() {
		fmt.Fprintf(w, "Last change:  %s\n", doc.LastChange.Local().Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Updated:      %s\n", doc.UpdatedAt.Local().Format(time.RFC3339))
}
