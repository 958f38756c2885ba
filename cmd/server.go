package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/config"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/server"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

func serverCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Payload intake server commands",
	}
	cmd.AddCommand(
		serverStartCmd(ctx),
	)
	return cmd
}

func serverStartCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run only the payload intake server",
		Long:  "Run only the payload intake server. This is useful when the relay service shares a redis payload cache.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(ctx, cmd); err != nil {
				return err
			}
			serverConfig := ctx.Config.Server
			if addr, err := cmd.Flags().GetString(flagListenAddr); err != nil {
				return err
			} else if addr != "" {
				serverConfig.ListenAddr = addr
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, unix.SIGTERM)
			defer stop()

			cache, err := ctx.PayloadCache()
			if err != nil {
				return err
			}
			if err := core.StartService(runCtx, nil, server.NewPayloadServer(serverConfig, cache)); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	return prometheusAddrFlag(listenAddrFlag(fileFlag(cmd)))
}
