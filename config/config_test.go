package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Chains.Axelarnet.AxelarnetGatewayAddress = "axelar1gateway"
	cfg.Chains.Axelarnet.AxelarnetITSAddress = "axelar1its"
	cfg.Chains.EVM.NativeGatewayAddress = "0x1111111111111111111111111111111111111111"
	cfg.Chains.EVM.NativeITSAddress = "0x2222222222222222222222222222222222222222"
	cfg.Chains.EVM.AxelarnetGatewayAddress = "axelar1evmgateway"
	cfg.Chains.EVM.AxelarnetMultisigProverAddress = "axelar1evmprover"
	cfg.Chains.XRPL.AxelarnetGatewayAddress = "axelar1xrplgateway"
	cfg.Chains.XRPL.AxelarnetMultisigProverAddress = "axelar1xrplprover"
	cfg.Chains.XRPL.NativeGatewayAddress = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	cfg.TokenIDs = map[string]string{"xrp": "0xba5a21ca88ef6bba2bfff5088994f90e1077e2a1cc3dcc38bd261f00fce2824f"}
	return cfg
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	// the defaults leave every contract address empty
	err := DefaultConfig().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "axelarnet_gateway_address")
	assert.Contains(t, err.Error(), "native_gateway_address")
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Config)
		want   string
	}{
		"bad timeout": {
			mutate: func(c *Config) { c.Global.Timeout = "soon" },
			want:   "timeout",
		},
		"bad log level": {
			mutate: func(c *Config) { c.Global.LoggerConfig.Level = "TRACE" },
			want:   "logger.level",
		},
		"unbounded post submit": {
			mutate: func(c *Config) { c.Global.Relay.PostSubmit = PollingConfig{Interval: "1s"} },
			want:   "relay.post_submit",
		},
		"zero poll interval": {
			mutate: func(c *Config) { c.Global.Relay.Polling.Interval = "0s" },
			want:   "interval",
		},
		"uppercase token symbol": {
			mutate: func(c *Config) { c.TokenIDs["XRP"] = "0x01" },
			want:   "non-lowercase",
		},
		"zero its gas limit": {
			mutate: func(c *Config) { c.ITSGasLimit = 0 },
			want:   "its_gas_limit",
		},
		"unknown cache backend": {
			mutate: func(c *Config) { c.Cache.Backend = "memcached" },
			want:   "memcached",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRelayConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Global.Relay.Polling = PollingConfig{Interval: "2s"}
	cfg.Global.Relay.PostSubmit = PollingConfig{Interval: "1s", MaxAttempts: 3, Timeout: "1m"}

	rc, err := cfg.RelayConfig()
	require.NoError(t, err)

	assert.Equal(t, core.PollConfig{Interval: 2 * time.Second}, rc.Poll)
	assert.True(t, rc.Poll.Unbounded())
	assert.Equal(t, core.PollConfig{Interval: time.Second, MaxAttempts: 3, Timeout: time.Minute}, rc.PostSubmitPoll)
	assert.Equal(t, core.DefaultXRPLIdentity(), rc.Identity)

	routes := rc.Routes
	assert.Equal(t, "axelarnet", routes.HubChain)
	assert.Equal(t, "axelar1gateway", routes.HubGateway)
	assert.Equal(t, "axelar1evmgateway", routes.EVMHubGateway)
	assert.Equal(t, "axelar1evmprover", routes.EVMProver)
	assert.Equal(t, "xrpl", routes.XRPLChain)
	assert.Equal(t, "axelar1xrplprover", routes.XRPLProver)
	assert.Equal(t, "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", routes.XRPLGatewayAccount)
	assert.Contains(t, rc.TokenIDs, "xrp")
}

func TestInitAndLoad(t *testing.T) {
	for _, name := range []string{"config.json", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultConfigDir, name)
			require.NoError(t, InitConfig(path))
			assert.ErrorContains(t, InitConfig(path), "config already exists")

			// the defaults are written but are not a runnable config
			_, err := LoadConfig(path)
			require.Error(t, err)

			cfg := validConfig()
			cfg.ConfigPath = path
			require.NoError(t, cfg.Save())

			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, path, loaded.ConfigPath)
			assert.Equal(t, cfg.Chains, loaded.Chains)
			assert.Equal(t, cfg.Global, loaded.Global)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "xrly config init")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("XRLY_REDIS_PASSWORD", "s3cret")
	t.Setenv("XRLY_XRPL_SECRET", "sEdTM1uX8pu2do5XvTnutH6HsouMaM2")

	cfg := validConfig()
	env := NewEnv()
	cfg.ApplyEnv(env)
	assert.Equal(t, "s3cret", cfg.Cache.Redis.Password)
	assert.Equal(t, "sEdTM1uX8pu2do5XvTnutH6HsouMaM2", XRPLSecret(env))
}

func TestSaveRequiresPath(t *testing.T) {
	cfg := validConfig()
	assert.Error(t, cfg.Save())

	cfg.ConfigPath = filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, cfg.Save())
	info, err := os.Stat(cfg.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
