package evm

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultBlockPollInterval = 2 * time.Second
	DefaultITSGasLimit       = 8_000_000
)

type RPCConfig struct {
	HTTP string `json:"http" yaml:"http"`
}

// ChainConfig is the `chains.xrpl-evm-sidechain` section of the relayer config.
type ChainConfig struct {
	ChainID                        string            `json:"chain_id" yaml:"chain_id"`
	RPC                            RPCConfig         `json:"rpc" yaml:"rpc"`
	NativeGatewayAddress           string            `json:"native_gateway_address" yaml:"native_gateway_address"`
	NativeITSAddress               string            `json:"native_interchain_token_service_address" yaml:"native_interchain_token_service_address"`
	AxelarnetMultisigProverAddress string            `json:"axelarnet_multisig_prover_address" yaml:"axelarnet_multisig_prover_address"`
	AxelarnetGatewayAddress        string            `json:"axelarnet_gateway_address" yaml:"axelarnet_gateway_address"`
	TokenContracts                 map[string]string `json:"token_contracts,omitempty" yaml:"token_contracts,omitempty"`
	// BlockPollInterval is how often the latest block number is requested.
	BlockPollInterval string `json:"block_poll_interval,omitempty" yaml:"block_poll_interval,omitempty"`
	// StartBlock is the first block scanned. Zero means the latest block at startup.
	StartBlock uint64 `json:"start_block,omitempty" yaml:"start_block,omitempty"`
}

func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		ChainID:           "xrpl-evm-sidechain",
		RPC:               RPCConfig{HTTP: "http://localhost:8545"},
		BlockPollInterval: DefaultBlockPollInterval.String(),
	}
}

func (c ChainConfig) Validate() error {
	isEmpty := func(s string) bool {
		return strings.TrimSpace(s) == ""
	}
	isAddress := func(name, s string) error {
		if isEmpty(s) {
			return fmt.Errorf("config attribute %q is empty", name)
		}
		if !common.IsHexAddress(s) {
			return fmt.Errorf("config attribute %q is not a hex address: %s", name, s)
		}
		return nil
	}

	var errs []error
	if isEmpty(c.ChainID) {
		errs = append(errs, fmt.Errorf("config attribute \"chain_id\" is empty"))
	}
	if isEmpty(c.RPC.HTTP) {
		errs = append(errs, fmt.Errorf("config attribute \"rpc.http\" is empty"))
	}
	if err := isAddress("native_gateway_address", c.NativeGatewayAddress); err != nil {
		errs = append(errs, err)
	}
	if err := isAddress("native_interchain_token_service_address", c.NativeITSAddress); err != nil {
		errs = append(errs, err)
	}
	if isEmpty(c.AxelarnetMultisigProverAddress) {
		errs = append(errs, fmt.Errorf("config attribute \"axelarnet_multisig_prover_address\" is empty"))
	}
	if isEmpty(c.AxelarnetGatewayAddress) {
		errs = append(errs, fmt.Errorf("config attribute \"axelarnet_gateway_address\" is empty"))
	}
	if c.BlockPollInterval != "" {
		if d, err := time.ParseDuration(c.BlockPollInterval); err != nil {
			errs = append(errs, fmt.Errorf("config attribute \"block_poll_interval\" is invalid: %v", err))
		} else if d <= 0 {
			errs = append(errs, fmt.Errorf("config attribute \"block_poll_interval\" must be positive: %v", d))
		}
	}

	// errors.Join returns nil if len(errs) == 0
	return errors.Join(errs...)
}

func (c ChainConfig) GetBlockPollInterval() time.Duration {
	if c.BlockPollInterval == "" {
		return DefaultBlockPollInterval
	}
	d, err := time.ParseDuration(c.BlockPollInterval)
	if err != nil {
		panic(err)
	}
	return d
}
