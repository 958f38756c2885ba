package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/chains/axelar"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/chains/evm"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/chains/xrpl"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/internal/notify"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/internal/telemetry"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/payload"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/server"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/signer"
)

const (
	DefaultConfigDir  = "config"
	DefaultConfigFile = "config.json"

	DefaultPostSubmitMaxAttempts = 60
)

type Config struct {
	Global GlobalConfig `yaml:"global" json:"global"`
	Chains ChainsConfig `yaml:"chains" json:"chains"`
	// TokenIDs maps a token symbol to its interchain token id.
	TokenIDs    map[string]string   `yaml:"token_ids" json:"token_ids"`
	ITSGasLimit uint64              `yaml:"its_gas_limit" json:"its_gas_limit"`
	Server      server.Config       `yaml:"server" json:"server"`
	Cache       payload.Config      `yaml:"cache" json:"cache"`
	Notify      notify.Config       `yaml:"notify" json:"notify"`
	Signer      signer.EnvKeyConfig `yaml:"signer" json:"signer"`

	// path to the loaded config file
	ConfigPath string `yaml:"-" json:"-"`
}

type GlobalConfig struct {
	Timeout      string           `yaml:"timeout" json:"timeout"`
	LoggerConfig LoggerConfig     `yaml:"logger" json:"logger"`
	Telemetry    telemetry.Config `yaml:"telemetry" json:"telemetry"`
	Relay        RelayConfig      `yaml:"relay" json:"relay"`
}

type LoggerConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

type RelayConfig struct {
	// Polling bounds every hub stage up to proof retrieval.
	Polling PollingConfig `yaml:"polling" json:"polling"`
	// PostSubmit bounds the confirmations sent after an XRPL submission.
	PostSubmit        PollingConfig `yaml:"post_submit" json:"post_submit"`
	MaxConcurrentRuns int64         `yaml:"max_concurrent_runs" json:"max_concurrent_runs"`
	DedupCacheSize    int           `yaml:"dedup_cache_size" json:"dedup_cache_size"`
}

// PollingConfig is the file form of core.PollConfig.
// A zero max_attempts with an empty timeout polls forever.
type PollingConfig struct {
	Interval    string `yaml:"interval" json:"interval"`
	MaxAttempts uint   `yaml:"max_attempts" json:"max_attempts"`
	Timeout     string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

type ChainsConfig struct {
	Axelarnet axelar.ChainConfig `yaml:"axelarnet" json:"axelarnet"`
	EVM       evm.ChainConfig    `yaml:"xrpl-evm-sidechain" json:"xrpl-evm-sidechain"`
	XRPL      xrpl.ChainConfig   `yaml:"xrpl" json:"xrpl"`
}

func DefaultConfig() Config {
	return Config{
		Global: newDefaultGlobalConfig(),
		Chains: ChainsConfig{
			Axelarnet: axelar.DefaultChainConfig(),
			EVM:       evm.DefaultChainConfig(),
			XRPL:      xrpl.DefaultChainConfig(),
		},
		TokenIDs:    map[string]string{},
		ITSGasLimit: evm.DefaultITSGasLimit,
		Server:      server.DefaultConfig(),
		Cache:       payload.DefaultConfig(),
		Signer:      signer.DefaultEnvKeyConfig(),
	}
}

// newDefaultGlobalConfig returns a global config with defaults set
func newDefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		Timeout: "10s",
		LoggerConfig: LoggerConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stderr",
		},
		Telemetry: telemetry.DefaultConfig(),
		Relay: RelayConfig{
			Polling: PollingConfig{
				Interval: core.DefaultPollInterval.String(),
			},
			PostSubmit: PollingConfig{
				Interval:    core.DefaultPollInterval.String(),
				MaxAttempts: DefaultPostSubmitMaxAttempts,
			},
			MaxConcurrentRuns: core.DefaultMaxConcurrentRuns,
			DedupCacheSize:    core.DefaultDedupCacheSize,
		},
	}
}

func (c Config) Validate() error {
	var errs []error
	if err := c.Global.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("global: %w", err))
	}
	if err := c.Chains.Axelarnet.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("chains.axelarnet: %w", err))
	}
	if err := c.Chains.EVM.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("chains.xrpl-evm-sidechain: %w", err))
	}
	if err := c.Chains.XRPL.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("chains.xrpl: %w", err))
	}
	if c.ITSGasLimit == 0 {
		errs = append(errs, fmt.Errorf("config attribute \"its_gas_limit\" is zero"))
	}
	for symbol, id := range c.TokenIDs {
		if symbol != strings.ToLower(symbol) {
			errs = append(errs, fmt.Errorf("config attribute \"token_ids\" has a non-lowercase symbol: %s", symbol))
		}
		if strings.TrimSpace(id) == "" {
			errs = append(errs, fmt.Errorf("config attribute \"token_ids.%s\" is empty", symbol))
		}
	}
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}
	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	if err := c.Notify.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("notify: %w", err))
	}
	if err := c.Signer.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("signer: %w", err))
	}
	// errors.Join returns nil if len(errs) == 0
	return errors.Join(errs...)
}

func (c GlobalConfig) Validate() error {
	var errs []error
	if _, err := c.GetTimeout(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToUpper(c.LoggerConfig.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("config attribute \"logger.level\" is invalid: %s", c.LoggerConfig.Level))
	}
	switch c.LoggerConfig.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config attribute \"logger.format\" is invalid: %s", c.LoggerConfig.Format))
	}
	switch c.LoggerConfig.Output {
	case "stdout", "stderr":
	default:
		errs = append(errs, fmt.Errorf("config attribute \"logger.output\" is invalid: %s", c.LoggerConfig.Output))
	}
	if _, err := c.Relay.Polling.PollConfig(); err != nil {
		errs = append(errs, fmt.Errorf("relay.polling: %w", err))
	}
	postSubmit, err := c.Relay.PostSubmit.PollConfig()
	if err != nil {
		errs = append(errs, fmt.Errorf("relay.post_submit: %w", err))
	} else if postSubmit.Unbounded() {
		errs = append(errs, fmt.Errorf("config attribute \"relay.post_submit\" must set max_attempts or timeout"))
	}
	if c.Relay.MaxConcurrentRuns < 0 {
		errs = append(errs, fmt.Errorf("config attribute \"relay.max_concurrent_runs\" is negative"))
	}
	if c.Relay.DedupCacheSize < 0 {
		errs = append(errs, fmt.Errorf("config attribute \"relay.dedup_cache_size\" is negative"))
	}
	return errors.Join(errs...)
}

func (c GlobalConfig) GetTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config attribute \"timeout\" is invalid: %v", err)
	}
	return d, nil
}

// PollConfig converts the file form into a core.PollConfig.
func (c PollingConfig) PollConfig() (core.PollConfig, error) {
	cfg := core.PollConfig{MaxAttempts: c.MaxAttempts}
	if c.Interval != "" {
		d, err := time.ParseDuration(c.Interval)
		if err != nil {
			return cfg, fmt.Errorf("config attribute \"interval\" is invalid: %v", err)
		} else if d <= 0 {
			return cfg, fmt.Errorf("config attribute \"interval\" must be positive: %v", d)
		}
		cfg.Interval = d
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("config attribute \"timeout\" is invalid: %v", err)
		} else if d < 0 {
			return cfg, fmt.Errorf("config attribute \"timeout\" is negative: %v", d)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// Routes names the chains and hub contracts taken from the chain sections.
func (c Config) Routes() core.Routes {
	return core.Routes{
		HubChain:   c.Chains.Axelarnet.ChainID,
		HubGateway: c.Chains.Axelarnet.AxelarnetGatewayAddress,
		HubITS:     c.Chains.Axelarnet.AxelarnetITSAddress,

		EVMChain:      c.Chains.EVM.ChainID,
		EVMHubGateway: c.Chains.EVM.AxelarnetGatewayAddress,
		EVMProver:     c.Chains.EVM.AxelarnetMultisigProverAddress,

		XRPLChain:          c.Chains.XRPL.ChainID,
		XRPLHubGateway:     c.Chains.XRPL.AxelarnetGatewayAddress,
		XRPLProver:         c.Chains.XRPL.AxelarnetMultisigProverAddress,
		XRPLGatewayAccount: c.Chains.XRPL.NativeGatewayAddress,
	}
}

// RelayConfig returns the orchestrator settings. The config is expected to be validated.
func (c Config) RelayConfig() (core.RelayConfig, error) {
	identity, err := c.Chains.XRPL.Identity()
	if err != nil {
		return core.RelayConfig{}, err
	}
	poll, err := c.Global.Relay.Polling.PollConfig()
	if err != nil {
		return core.RelayConfig{}, err
	}
	postSubmit, err := c.Global.Relay.PostSubmit.PollConfig()
	if err != nil {
		return core.RelayConfig{}, err
	}
	tokenIDs := make(map[string]string, len(c.TokenIDs))
	for symbol, id := range c.TokenIDs {
		tokenIDs[strings.ToLower(symbol)] = id
	}
	return core.RelayConfig{
		Routes:         c.Routes(),
		Identity:       identity,
		TokenIDs:       tokenIDs,
		Poll:           poll,
		PostSubmitPoll: postSubmit,
	}, nil
}

// DefaultConfigPath returns the config file path under homePath.
func DefaultConfigPath(homePath string) string {
	return filepath.Join(homePath, DefaultConfigDir, DefaultConfigFile)
}

// InitConfig writes the default config to path. It fails if the file already exists.
func InitConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	cfg := DefaultConfig()
	cfg.ConfigPath = path
	return cfg.Save()
}

// LoadConfig reads and validates the config at path.
func LoadConfig(path string) (*Config, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s, did you run 'xrly config init'? error: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := Unmarshal(path, bz, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.ConfigPath = path
	cfg.ApplyEnv(NewEnv())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config back to ConfigPath.
func (c Config) Save() error {
	if c.ConfigPath == "" {
		return errors.New("config path is not set")
	}
	bz, err := Marshal(c.ConfigPath, c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.ConfigPath, bz, 0600)
}
