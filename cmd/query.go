package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/chains/evm"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/config"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/coreutil"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/helpers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// queryCmd represents the query command tree
func queryCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"q"},
		Short:   "query the hub and the sidechain",
	}

	cmd.AddCommand(
		queryProofCmd(ctx),
		queryEVMHeightCmd(ctx),
	)

	return cmd
}

func queryProofCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proof [xrpl|evm] [multisig-session-id]",
		Short: "Query the proof of a multisig session from the prover of the destination ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(ctx, cmd); err != nil {
				return err
			}
			routes := ctx.Config.Routes()
			var prover string
			switch core.Origin(args[0]) {
			case core.OriginXRPL:
				prover = routes.XRPLProver
			case core.OriginEVM:
				prover = routes.EVMProver
			default:
				return fmt.Errorf("unknown destination %q, expected %q or %q", args[0], core.OriginXRPL, core.OriginEVM)
			}

			hub, err := ctx.HubClient()
			if err != nil {
				return err
			}
			proof, out, err := helpers.QueryProof(cmd.Context(), hub, prover, args[1])
			if err != nil {
				return err
			}
			if viper.GetBool(flagJSON) || proof == nil {
				fmt.Fprintln(cmd.OutOrStdout(), out.String())
				return nil
			}
			bz, err := json.MarshalIndent(proof, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return nil
		},
	}
	return jsonFlag(fileFlag(cmd))
}

func queryEVMHeightCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evm-height",
		Short: "Query the latest block number of the sidechain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(ctx, cmd); err != nil {
				return err
			}
			dst, err := ctx.EVMDestination(cmd.Context(), false)
			if err != nil {
				return err
			}
			chain, err := coreutil.UnwrapEVMDestination[*evm.Chain](dst)
			if err != nil {
				return err
			}
			height, err := chain.LatestBlockNumber(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), height)
			return nil
		},
	}
	return fileFlag(cmd)
}
