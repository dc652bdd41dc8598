package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ddogreen/internal/configdir"
	"ddogreen/internal/pathguard"
)

func newConfigCmd(flags *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "test [path]",
		Short: "Validate a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if len(args) == 1 {
				path = args[0]
			}
			return runConfigTest(cmd.OutOrStdout(), path)
		},
	})

	return cmd
}

// runConfigTest validates a configuration file and prints a summary
func runConfigTest(w io.Writer, path string) error {
	if path == "" {
		fmt.Fprintf(w, "Testing default configuration: %s\n", configdir.DefaultConfigPath())
	} else {
		fmt.Fprintf(w, "Testing configuration file: %s\n", path)
	}

	cfg, used, err := loadConfig(path)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if used == "" {
		fmt.Fprintln(w, "  (no file found, built-in defaults)")
	} else if dir := configdir.ConfigDir(); !pathguard.IsPathWithinDirectory(used, dir) {
		fmt.Fprintf(w, "  Note: %s is outside %s\n", pathguard.CanonicalizePath(used), dir)
	}

	fmt.Fprintln(w, "Configuration is VALID")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  Monitoring Frequency:       %ds\n", cfg.MonitoringFrequency)
	fmt.Fprintf(w, "  High Performance Threshold: %.2f\n", cfg.HighPerformanceThreshold)
	fmt.Fprintf(w, "  Power Save Threshold:       %.2f\n", cfg.PowerSaveThreshold)
	fmt.Fprintf(w, "  Power Backend:              %s\n", cfg.Power.Backend)
	fmt.Fprintf(w, "  Rate Limit:                 %d per %dms\n", cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowMS)
	fmt.Fprintf(w, "  Log Level:                  %s\n", cfg.Logging.Level)
	if cfg.Status.ListenAddr != "" {
		fmt.Fprintf(w, "  Status Server:              %s\n", cfg.Status.ListenAddr)
	}

	for _, warning := range cfg.Warnings() {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}

	return nil
}
