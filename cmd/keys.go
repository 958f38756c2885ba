package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/chains/axelar"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/config"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/coreutil"
	"github.com/spf13/cobra"
)

// keysCmd represents the keys command
func keysCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keys",
		Aliases: []string{"k"},
		Short:   "manage keys of the hub account held by this relayer",
	}

	cmd.AddCommand(
		keysAddCmd(ctx),
		keysRestoreCmd(ctx),
		keysShowCmd(ctx),
	)

	return cmd
}

// hubChain returns the native hub client that owns the keyring.
func hubChain(ctx *config.Context, cmd *cobra.Command) (*axelar.Chain, error) {
	if err := initConfig(ctx, cmd); err != nil {
		return nil, err
	}
	hub, err := ctx.HubClient()
	if err != nil {
		return nil, err
	}
	chain, err := coreutil.UnwrapHubClient[*axelar.Chain](hub)
	if err != nil {
		return nil, fmt.Errorf("keys are managed only with the %q backend: %w", axelar.BackendNative, err)
	}
	return chain, nil
}

func keyName(ctx *config.Context, args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return ctx.Config.Chains.Axelarnet.Key
}

func keysAddCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add [name]",
		Aliases: []string{"a"},
		Short:   "adds a key to the keyring, the configured key name is used when name is omitted",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := hubChain(ctx, cmd)
			if err != nil {
				return err
			}
			mnemonic, addr, err := chain.AddKey(keyName(ctx, args))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\nmnemonic: %s\n", addr, mnemonic)
			return nil
		},
	}
	return fileFlag(cmd)
}

func keysRestoreCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "restore [name]",
		Aliases: []string{"r"},
		Short:   "restores a key from a mnemonic read from stdin",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := hubChain(ctx, cmd)
			if err != nil {
				return err
			}
			mnemonic, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && strings.TrimSpace(mnemonic) == "" {
				return fmt.Errorf("failed to read mnemonic: %w", err)
			}
			addr, err := chain.RestoreKey(keyName(ctx, args), strings.TrimSpace(mnemonic))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr)
			return nil
		},
	}
	return fileFlag(cmd)
}

func keysShowCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "show [name]",
		Aliases: []string{"s"},
		Short:   "shows the address of a key",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := hubChain(ctx, cmd)
			if err != nil {
				return err
			}
			addr, err := chain.ShowAddress(keyName(ctx, args))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr)
			return nil
		},
	}
	return fileFlag(cmd)
}
