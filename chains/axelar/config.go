package axelar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
)

const (
	BackendNative = "native"
	BackendCLI    = "cli"
)

// ChainConfig is the `chains.axelarnet` section of the relayer config.
type ChainConfig struct {
	// ChainID is the name of the hub as a source chain in cc_ids.
	ChainID string `json:"chain_id" yaml:"chain_id"`
	// TmChainID is the chain id transactions are signed for.
	TmChainID string `json:"tm_chain_id" yaml:"tm_chain_id"`
	RPCAddr   string `json:"rpc" yaml:"rpc"`
	// GRPCAddr is used for contract queries when set. ABCI queries over RPCAddr are used otherwise.
	GRPCAddr string `json:"grpc_addr,omitempty" yaml:"grpc_addr,omitempty"`

	AccountPrefix  string `json:"account_prefix" yaml:"account_prefix"`
	KeyringBackend string `json:"keyring_backend" yaml:"keyring_backend"`
	KeyringDir     string `json:"keyring_dir,omitempty" yaml:"keyring_dir,omitempty"`
	Key            string `json:"key" yaml:"key"`

	// Gas is the gas limit of every transaction. Zero means simulate and apply GasAdjustment.
	Gas           uint64  `json:"gas" yaml:"gas"`
	GasAdjustment float64 `json:"gas_adjustment" yaml:"gas_adjustment"`
	GasPrices     string  `json:"gas_prices" yaml:"gas_prices"`

	AxelarnetGatewayAddress string `json:"axelarnet_gateway_address" yaml:"axelarnet_gateway_address"`
	AxelarnetITSAddress     string `json:"axelarnet_interchain_token_service_address" yaml:"axelarnet_interchain_token_service_address"`

	AverageBlockTimeMsec uint64 `json:"average_block_time_msec" yaml:"average_block_time_msec"`
	MaxRetryForCommit    uint64 `json:"max_retry_for_commit" yaml:"max_retry_for_commit"`

	// Backend selects how transactions reach the hub: "native" signs and
	// broadcasts in process, "cli" runs axelard.
	Backend     string   `json:"backend" yaml:"backend"`
	AxelardPath string   `json:"axelard_path,omitempty" yaml:"axelard_path,omitempty"`
	ExtraFlags  []string `json:"extra_flags,omitempty" yaml:"extra_flags,omitempty"`
}

func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		ChainID:              "axelarnet",
		TmChainID:            "devnet-amplifier",
		RPCAddr:              "http://localhost:26657",
		AccountPrefix:        "axelar",
		KeyringBackend:       keyring.BackendTest,
		Key:                  "relayer",
		Gas:                  20000000,
		GasAdjustment:        1.5,
		GasPrices:            "0.00005uamplifier",
		AverageBlockTimeMsec: 1000,
		MaxRetryForCommit:    30,
		Backend:              BackendNative,
		AxelardPath:          "axelard",
	}
}

func (c ChainConfig) Validate() error {
	isEmpty := func(s string) bool {
		return strings.TrimSpace(s) == ""
	}

	var errs []error
	switch c.KeyringBackend {
	case keyring.BackendFile:
	case keyring.BackendOS:
	case keyring.BackendKWallet:
	case keyring.BackendPass:
	case keyring.BackendTest:
	case keyring.BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("config attribute \"keyring_backend\" is unexpected: %s", c.KeyringBackend))
	}
	switch c.Backend {
	case BackendNative:
	case BackendCLI:
		if isEmpty(c.AxelardPath) {
			errs = append(errs, fmt.Errorf("config attribute \"axelard_path\" is empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("config attribute \"backend\" is unexpected: %s", c.Backend))
	}
	if isEmpty(c.Key) {
		errs = append(errs, fmt.Errorf("config attribute \"key\" is empty"))
	}
	if isEmpty(c.ChainID) {
		errs = append(errs, fmt.Errorf("config attribute \"chain_id\" is empty"))
	}
	if isEmpty(c.TmChainID) {
		errs = append(errs, fmt.Errorf("config attribute \"tm_chain_id\" is empty"))
	}
	if isEmpty(c.RPCAddr) {
		errs = append(errs, fmt.Errorf("config attribute \"rpc\" is empty"))
	}
	if isEmpty(c.AccountPrefix) {
		errs = append(errs, fmt.Errorf("config attribute \"account_prefix\" is empty"))
	}
	if c.GasAdjustment <= 0 {
		errs = append(errs, fmt.Errorf("config attribute \"gas_adjustment\" is too small: %v", c.GasAdjustment))
	}
	if isEmpty(c.GasPrices) {
		errs = append(errs, fmt.Errorf("config attribute \"gas_prices\" is empty"))
	} else if _, err := sdk.ParseDecCoins(c.GasPrices); err != nil {
		errs = append(errs, fmt.Errorf("config attribute \"gas_prices\" is invalid: %v", err))
	}
	if isEmpty(c.AxelarnetGatewayAddress) {
		errs = append(errs, fmt.Errorf("config attribute \"axelarnet_gateway_address\" is empty"))
	}
	if isEmpty(c.AxelarnetITSAddress) {
		errs = append(errs, fmt.Errorf("config attribute \"axelarnet_interchain_token_service_address\" is empty"))
	}
	if c.AverageBlockTimeMsec == 0 {
		errs = append(errs, fmt.Errorf("config attribute \"average_block_time_msec\" is zero"))
	}
	if c.MaxRetryForCommit == 0 {
		errs = append(errs, fmt.Errorf("config attribute \"max_retry_for_commit\" is zero"))
	}

	// errors.Join returns nil if len(errs) == 0
	return errors.Join(errs...)
}

func (c ChainConfig) AverageBlockTime() time.Duration {
	return time.Duration(c.AverageBlockTimeMsec) * time.Millisecond
}

// Build returns the hub client selected by Backend.
func (c ChainConfig) Build(homePath string, timeout time.Duration) (core.HubClient, error) {
	switch c.Backend {
	case BackendCLI:
		return NewCLIClient(c, nil), nil
	default:
		chain, err := NewChain(c, homePath, timeout)
		if err != nil {
			return nil, err
		}
		return chain, nil
	}
}
