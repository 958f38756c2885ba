package axelar

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/avast/retry-go"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
)

// CommandRunner runs a command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands as subprocesses with Env appended to the process environment.
type ExecRunner struct {
	Env []string
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), r.Env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), errors.Wrapf(err, "%s: %s", name, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// CLIClient reaches the hub by running axelard with the operator's keyring.
type CLIClient struct {
	config ChainConfig
	runner CommandRunner
}

var _ core.HubClient = (*CLIClient)(nil)

// NewCLIClient returns a client running axelard through runner. A nil runner runs real subprocesses.
func NewCLIClient(config ChainConfig, runner CommandRunner) *CLIClient {
	if runner == nil {
		runner = ExecRunner{Env: []string{"AXELARD_CHAIN_ID=" + config.TmChainID}}
	}
	return &CLIClient{config: config, runner: runner}
}

// ExecuteTx runs `axelard tx wasm execute` and, when the broadcast result carries
// no events, waits for the commit with `axelard q tx`.
func (c *CLIClient) ExecuteTx(ctx context.Context, contract string, action []byte) (core.RawOutput, error) {
	logger := GetChainLogger(c.config.ChainID)

	out, err := c.runner.Run(ctx, c.config.AxelardPath, c.txArgs(contract, action)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute contract with axelard")
	}
	res := gjson.ParseBytes(jsonDocument(out))
	txHash := res.Get("txhash").String()
	if txHash == "" {
		// not a transaction response; let the caller classify the raw output
		return core.RawOutput(out), nil
	}
	if res.Get("code").Uint() != 0 || hasEvents(res) {
		return normalizeTxResponse(res)
	}

	var committed gjson.Result
	if err := retry.Do(func() error {
		out, err := c.runner.Run(ctx, c.config.AxelardPath, c.queryTxArgs(txHash)...)
		if err != nil {
			return err
		}
		committed = gjson.ParseBytes(jsonDocument(out))
		if committed.Get("txhash").String() == "" {
			return errors.Newf("unexpected output of query tx %s", txHash)
		}
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(uint(c.config.MaxRetryForCommit)),
		retry.Delay(c.config.AverageBlockTime()),
		retry.LastErrorOnly(true),
	); err != nil {
		return nil, errors.Wrapf(err, "failed to make sure that tx %s is committed", txHash)
	}
	logger.DebugContext(ctx, "transaction committed", "contract", contract, "tx_hash", txHash, "height", committed.Get("height").String())
	return normalizeTxResponse(committed)
}

// QueryState runs `axelard q wasm contract-state smart`, which already prints `{"data": ...}`.
func (c *CLIClient) QueryState(ctx context.Context, contract string, query []byte) (core.RawOutput, error) {
	args := []string{"q", "wasm", "contract-state", "smart", contract, string(query), "--node", c.config.RPCAddr, "--output", "json"}
	out, err := c.runner.Run(ctx, c.config.AxelardPath, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query contract %s with axelard", contract)
	}
	return core.RawOutput(jsonDocument(out)), nil
}

func (c *CLIClient) txArgs(contract string, action []byte) []string {
	args := []string{
		"tx", "wasm", "execute", contract, string(action),
		"--from", c.config.Key,
		"--keyring-backend", c.config.KeyringBackend,
	}
	if c.config.KeyringDir != "" {
		args = append(args, "--keyring-dir", c.config.KeyringDir)
	}
	gas := "auto"
	if c.config.Gas != 0 {
		gas = strconv.FormatUint(c.config.Gas, 10)
	}
	args = append(args,
		"--gas", gas,
		"--gas-adjustment", strconv.FormatFloat(c.config.GasAdjustment, 'f', -1, 64),
		"--gas-prices", c.config.GasPrices,
		"--chain-id", c.config.TmChainID,
		"--node", c.config.RPCAddr,
		"--output", "json",
		"-y",
	)
	return append(args, c.config.ExtraFlags...)
}

func (c *CLIClient) queryTxArgs(txHash string) []string {
	return []string{"q", "tx", txHash, "--node", c.config.RPCAddr, "--output", "json"}
}

// jsonDocument skips anything axelard prints before the JSON document, such as gas estimates.
func jsonDocument(out []byte) []byte {
	if i := bytes.IndexByte(out, '{'); i > 0 {
		return out[i:]
	}
	return out
}

func hasEvents(res gjson.Result) bool {
	return len(res.Get("events").Array()) > 0 || len(res.Get("logs.0.events").Array()) > 0
}

// normalizeTxResponse converts a TxResponse printed by axelard into the
// single-log form. Responses without logs have their flat events moved into
// the first log.
func normalizeTxResponse(res gjson.Result) (core.RawOutput, error) {
	code := uint32(res.Get("code").Uint())
	out := core.TxOutput{
		TxHash: res.Get("txhash").String(),
		Code:   &code,
		RawLog: res.Get("raw_log").String(),
	}
	if logs := res.Get("logs"); len(logs.Array()) > 0 {
		if err := json.Unmarshal([]byte(logs.Raw), &out.Logs); err != nil {
			return nil, errors.Wrap(err, "failed to decode transaction logs")
		}
	} else {
		var events []core.LoggedEvent
		if raw := res.Get("events"); raw.Exists() {
			if err := json.Unmarshal([]byte(raw.Raw), &events); err != nil {
				return nil, errors.Wrap(err, "failed to decode transaction events")
			}
		}
		out.Logs = []core.TxLog{{MsgIndex: 0, Events: events}}
	}
	return json.Marshal(out)
}
