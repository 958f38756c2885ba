package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homePath    string
	defaultHome = filepath.Join(os.Getenv("HOME"), ".xrly")
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	cobra.EnableCommandSorting = false

	ctx := &config.Context{}

	// rootCmd represents the base command when called without any subcommands
	var rootCmd = &cobra.Command{
		Use:   "xrly",
		Short: "This application relays cross-chain calls between the XRP Ledger and the XRPL EVM sidechain through the amplifier hub",
	}
	rootCmd.SilenceUsage = true

	// Register top level flags --home
	rootCmd.PersistentFlags().StringVar(&homePath, flagHome, defaultHome, "set home directory")
	if err := viper.BindPFlag(flagHome, rootCmd.PersistentFlags().Lookup(flagHome)); err != nil {
		return err
	}

	rootCmd.AddCommand(
		configCmd(ctx),
		keysCmd(ctx),
		serviceCmd(ctx),
		serverCmd(ctx),
		queryCmd(ctx),
		txCmd(ctx),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		ctx.HomePath = viper.GetString(flagHome)
		return nil
	}

	defer func() {
		if err := ctx.Close(); err != nil {
			getCmdLogger().Error("failed to close relayer components", err)
		}
		shutdownTelemetry(context.Background())
	}()

	return rootCmd.Execute()
}
