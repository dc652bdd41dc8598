package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ddogreen/internal/config"
	"ddogreen/internal/logging"
)

const version = "0.3.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds the persistent flags shared by all commands
type cliFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:   "ddogreen",
		Short: "Activity-driven power mode controller",
		Long: `ddogreen watches the system load average and switches the machine between
a performance and a power-saving profile, with hysteresis and a minimum dwell time
between changes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"configuration file (default <configdir>/ddogreen.yaml)")

	rootCmd.AddCommand(
		newRunCmd(flags),
		newStatusCmd(flags),
		newConfigCmd(flags),
		newModeCmd(flags),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ddogreen version %s\n", version)
		},
	}
}

// loadConfig loads the explicit path if given, else the default location
func loadConfig(path string) (config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}
	return config.LoadDefault()
}

// newLogger builds the logger described by the logging section
func newLogger(cfg config.LoggingConfig) (*logging.Logger, error) {
	level := logging.ParseLevel(cfg.Level)
	format := logging.Format(cfg.Format)
	if cfg.File == "" {
		return logging.NewWriterLogger(level, format, os.Stderr), nil
	}
	return logging.NewFileLogger(level, format, cfg.File)
}
