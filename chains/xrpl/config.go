package xrpl

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/utils"
)

const (
	DefaultReconnectInterval = 5 * time.Second
	DefaultRequestTimeout    = 30 * time.Second
)

type RPCConfig struct {
	WS string `json:"ws" yaml:"ws"`
}

// ChainConfig is the `chains.xrpl` section of the relayer config.
type ChainConfig struct {
	ChainID                        string    `json:"chain_id" yaml:"chain_id"`
	RPC                            RPCConfig `json:"rpc" yaml:"rpc"`
	AxelarnetGatewayAddress        string    `json:"axelarnet_gateway_address" yaml:"axelarnet_gateway_address"`
	AxelarnetMultisigProverAddress string    `json:"axelarnet_multisig_prover_address" yaml:"axelarnet_multisig_prover_address"`
	NativeGatewayAddress           string    `json:"native_gateway_address" yaml:"native_gateway_address"`

	MessageIDFormat   string `json:"message_id_format,omitempty" yaml:"message_id_format,omitempty"`
	TxIDEncoding      string `json:"tx_id_encoding,omitempty" yaml:"tx_id_encoding,omitempty"`
	ReconnectInterval string `json:"reconnect_interval,omitempty" yaml:"reconnect_interval,omitempty"`
	RequestTimeout    string `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty"`
}

func DefaultChainConfig() ChainConfig {
	return ChainConfig{
		ChainID:           "xrpl",
		RPC:               RPCConfig{WS: "wss://s.devnet.rippletest.net:51233"},
		MessageIDFormat:   string(core.MessageIDFormatSuffixed),
		TxIDEncoding:      string(core.TxIDEncodingBytes),
		ReconnectInterval: DefaultReconnectInterval.String(),
		RequestTimeout:    DefaultRequestTimeout.String(),
	}
}

func (c ChainConfig) Validate() error {
	isEmpty := func(s string) bool {
		return strings.TrimSpace(s) == ""
	}
	isDuration := func(name, s string) error {
		if s == "" {
			return nil
		}
		if _, err := time.ParseDuration(s); err != nil {
			return fmt.Errorf("config attribute %q is invalid: %v", name, err)
		}
		return nil
	}

	var errs []error
	if isEmpty(c.ChainID) {
		errs = append(errs, fmt.Errorf("config attribute \"chain_id\" is empty"))
	}
	if isEmpty(c.RPC.WS) {
		errs = append(errs, fmt.Errorf("config attribute \"rpc.ws\" is empty"))
	}
	if isEmpty(c.AxelarnetGatewayAddress) {
		errs = append(errs, fmt.Errorf("config attribute \"axelarnet_gateway_address\" is empty"))
	}
	if isEmpty(c.AxelarnetMultisigProverAddress) {
		errs = append(errs, fmt.Errorf("config attribute \"axelarnet_multisig_prover_address\" is empty"))
	}
	if isEmpty(c.NativeGatewayAddress) {
		errs = append(errs, fmt.Errorf("config attribute \"native_gateway_address\" is empty"))
	} else if _, err := utils.DecodeXRPLAccountID(c.NativeGatewayAddress); err != nil {
		errs = append(errs, fmt.Errorf("config attribute \"native_gateway_address\" is invalid: %v", err))
	}
	if _, err := c.Identity(); err != nil {
		errs = append(errs, err)
	}
	if err := isDuration("reconnect_interval", c.ReconnectInterval); err != nil {
		errs = append(errs, err)
	}
	if err := isDuration("request_timeout", c.RequestTimeout); err != nil {
		errs = append(errs, err)
	}

	// errors.Join returns nil if len(errs) == 0
	return errors.Join(errs...)
}

// Identity returns the message identity strategy. Empty fields fall back to the defaults.
func (c ChainConfig) Identity() (core.XRPLIdentity, error) {
	id := core.DefaultXRPLIdentity()
	if c.MessageIDFormat != "" {
		id.Format = core.MessageIDFormat(c.MessageIDFormat)
	}
	if c.TxIDEncoding != "" {
		id.Encoding = core.TxIDEncoding(c.TxIDEncoding)
	}
	return id, id.Validate()
}

func (c ChainConfig) GetReconnectInterval() time.Duration {
	return parseDurationOr(c.ReconnectInterval, DefaultReconnectInterval)
}

func (c ChainConfig) GetRequestTimeout() time.Duration {
	return parseDurationOr(c.RequestTimeout, DefaultRequestTimeout)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
