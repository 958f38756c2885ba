package cmd

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/chains/xrpl"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/config"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/server"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/utils"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// txCmd represents the tx command tree
func txCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "send payloads and test transfers",
	}

	cmd.AddCommand(
		postPayloadCmd(ctx),
		xrplTransferCmd(ctx),
	)

	return cmd
}

func postPayloadCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post-payload [payload-hex]",
		Short: "Post a payload to the intake server ahead of its XRPL payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, err := cmd.Flags().GetString(flagServer)
			if err != nil {
				return err
			}
			hash, err := postPayload(cmd.Context(), baseURL, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	return serverFlag(cmd)
}

func xrplTransferCmd(ctx *config.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xrpl-transfer [amount-drops] [evm-destination] [payload-hex]",
		Short: "Post a payload and pay the XRPL gateway with the memos routing it to the sidechain",
		Long: "Post a payload and pay the XRPL gateway with the memos routing it to the sidechain.\n" +
			"The payment is signed by the server with the secret in XRLY_XRPL_SECRET.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(ctx, cmd); err != nil {
				return err
			}
			drops, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			destination := args[1]
			if _, err := utils.DecodeHex(destination); err != nil {
				return fmt.Errorf("invalid EVM destination %q: %w", destination, err)
			}
			account, err := cmd.Flags().GetString(flagAccount)
			if err != nil {
				return err
			}
			if _, err := utils.DecodeXRPLAccountID(account); err != nil {
				return fmt.Errorf("invalid --%s: %w", flagAccount, err)
			}
			baseURL, err := cmd.Flags().GetString(flagServer)
			if err != nil {
				return err
			}
			secret := config.XRPLSecret(config.NewEnv())
			if secret == "" {
				return fmt.Errorf("%s_XRPL_SECRET is not set", config.EnvPrefix)
			}

			hash, err := postPayload(cmd.Context(), baseURL, args[2])
			if err != nil {
				return err
			}

			cfg := ctx.Config
			txJSON := xrpl.NewPayment(account, cfg.Chains.XRPL.NativeGatewayAddress, drops,
				xrpl.Memos(destination, cfg.Chains.EVM.ChainID, hash))
			result, err := ctx.XRPLChain().SignAndSubmit(cmd.Context(), txJSON, secret)
			if err != nil {
				return err
			}
			if !result.Accepted {
				return fmt.Errorf("payment %s was not accepted: %s", result.TxHash, result.EngineResult)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "payload_hash: %s\ntx_hash: %s\nengine_result: %s\n", hash, result.TxHash, result.EngineResult)
			return nil
		},
	}
	cmd.Flags().String(flagAccount, "", "XRPL account that sends the payment")
	if err := cmd.MarkFlagRequired(flagAccount); err != nil {
		panic(err)
	}
	return serverFlag(fileFlag(cmd))
}

// postPayload posts payloadHex to the intake server at baseURL and returns the payload hash.
func postPayload(ctx context.Context, baseURL, payloadHex string) (string, error) {
	payload, err := utils.DecodeHex(payloadHex)
	if err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}
	body, err := json.Marshal(map[string]string{"payload": hex.EncodeToString(payload)})
	if err != nil {
		return "", err
	}
	url := strings.TrimSuffix(baseURL, "/") + server.PayloadPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "failed to post payload to %s", url)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("payload server responded with %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return utils.HashPayload(payload), nil
}
