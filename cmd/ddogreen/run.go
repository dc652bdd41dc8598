package main

import (
	"context"

	"github.com/spf13/cobra"

	"ddogreen/internal/agent"
)

func newRunCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the controller in the foreground",
		Long: `Run samples the load average and applies the matching power mode until it
receives SIGINT or SIGTERM. SIGHUP reloads the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}

			if err := agent.CheckPrivileges(cfg.Power.Backend); err != nil {
				return err
			}

			logger, err := newLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer logger.Close()

			logger.Info("config.loaded", "Configuration loaded", map[string]interface{}{
				"path":                       path,
				"monitoring_frequency":       cfg.MonitoringFrequency,
				"high_performance_threshold": cfg.HighPerformanceThreshold,
				"power_save_threshold":       cfg.PowerSaveThreshold,
				"backend":                    cfg.Power.Backend,
			})
			for _, w := range cfg.Warnings() {
				logger.Warn("config.warning", w, nil)
			}

			a, err := agent.New(agent.Options{
				Config:     cfg,
				ConfigPath: path,
				Version:    version,
				Logger:     logger,
			})
			if err != nil {
				logger.Error("agent.init.failed", "Failed to initialize agent", map[string]interface{}{
					"error": err.Error(),
				})
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return a.Run(ctx)
		},
	}
}
