package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/chains/evm"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/chains/xrpl"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/config"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/server"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

func serviceCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Relay Service Commands",
		Long:  "Commands to manage the relay service",
	}
	cmd.AddCommand(
		startCmd(ctx),
	)
	return cmd
}

func startCmd(ctx *config.Context) *cobra.Command {
	const (
		defaultServePayloads = true
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Watch both ledgers and relay every detected cross-chain call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(ctx, cmd); err != nil {
				return err
			}
			cfg := ctx.Config
			servePayloads, err := cmd.Flags().GetBool(flagServePayloads)
			if err != nil {
				return err
			}
			evmPollInterval, err := getDurationFlag(cmd, flagEVMPollInterval, cfg.Chains.EVM.GetBlockPollInterval())
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, unix.SIGTERM)
			defer stop()

			cache, err := ctx.PayloadCache()
			if err != nil {
				return err
			}
			relayer, err := ctx.Relayer(runCtx)
			if err != nil {
				return err
			}
			dispatcher, err := ctx.Dispatcher(relayer)
			if err != nil {
				return err
			}
			evmChain, err := ctx.EVMChain(runCtx, true)
			if err != nil {
				return err
			}

			watcher := evm.NewContractCallWatcher(evmChain.ChainID(), evmChain, dispatcher, evmPollInterval)
			if start := cfg.Chains.EVM.StartBlock; start > 0 {
				watcher.SetWatermark(start - 1)
			}
			runners := []core.Runner{
				watcher,
				xrpl.NewTransactionSubscriber(cfg.Chains.XRPL, cfg.Chains.EVM.ChainID, cache, dispatcher),
			}
			if servePayloads {
				runners = append(runners, server.NewPayloadServer(cfg.Server, cache))
			}

			getCmdLogger().InfoContext(runCtx, "starting relay service",
				"hub", cfg.Chains.Axelarnet.ChainID,
				"evm", cfg.Chains.EVM.ChainID,
				"xrpl", cfg.Chains.XRPL.ChainID,
				"serve_payloads", servePayloads,
			)
			if err := core.StartService(runCtx, dispatcher, runners...); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().Bool(flagServePayloads, defaultServePayloads, "run the payload intake server alongside the ingestors")
	cmd.Flags().Duration(flagEVMPollInterval, evm.DefaultBlockPollInterval, "time interval between block head requests on the sidechain, overriding block_poll_interval")
	return prometheusAddrFlag(fileFlag(cmd))
}
