package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/config"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/internal/telemetry"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
	"github.com/spf13/cobra"
)

var telemetryShutdown func(context.Context) error

func configCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "manage configuration file",
	}

	cmd.AddCommand(
		configShowCmd(ctx),
		configInitCmd(ctx),
	)

	return cmd
}

// Command for inititalizing a default config at the --home location
func configInitCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"i"},
		Short:   "Creates a default config file in the home directory defined by --home",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := configPath(ctx, cmd)
			if err := config.InitConfig(cfgPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", cfgPath)
			return nil
		},
	}
	return fileFlag(cmd)
}

// Command for printing current configuration
func configShowCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"s", "list", "l"},
		Short:   "Prints current configuration",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := configPath(ctx, cmd)
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				return fmt.Errorf("config does not exist: %s", cfgPath)
			}
			if err := initConfig(ctx, cmd); err != nil {
				return err
			}

			out, err := config.Marshal(cfgPath, *ctx.Config)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	return fileFlag(cmd)
}

func configPath(ctx *config.Context, cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup(flagFile); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return config.DefaultConfigPath(ctx.HomePath)
}

// initConfig loads the config file and sets up telemetry and logging from it.
func initConfig(ctx *config.Context, cmd *cobra.Command) error {
	if ctx.Config != nil {
		return nil
	}
	cfg, err := config.LoadConfig(configPath(ctx, cmd))
	if err != nil {
		return err
	}
	if f := cmd.Flags().Lookup(flagPrometheusAddr); f != nil && f.Changed {
		cfg.Global.Telemetry.PrometheusAddr = f.Value.String()
	}
	ctx.Config = cfg

	global := cfg.Global
	shutdown, err := telemetry.SetupOTelSDK(cmd.Context(), global.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to set up the OpenTelemetry SDK: %w", err)
	}
	telemetryShutdown = shutdown

	if err := log.InitLogger(
		global.LoggerConfig.Level,
		global.LoggerConfig.Format,
		global.LoggerConfig.Output,
		global.Telemetry.LogsEnabled(),
	); err != nil {
		return err
	}
	if err := telemetry.InitializeMetrics(); err != nil {
		return fmt.Errorf("failed to initialize the metrics: %w", err)
	}
	return nil
}

func shutdownTelemetry(ctx context.Context) {
	if telemetryShutdown == nil {
		return
	}
	if err := telemetryShutdown(ctx); err != nil {
		getCmdLogger().Error("failed to shut down telemetry", err)
	}
	telemetryShutdown = nil
}

func getCmdLogger() *log.RelayLogger {
	return log.GetLogger().WithModule("cmd")
}
