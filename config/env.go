package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "XRLY"

	envRedisPassword = "redis_password"
	envXRPLSecret    = "xrpl_secret"
)

// NewEnv returns a viper instance reading XRLY_* environment variables.
func NewEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyEnv overrides secrets of the config with the values of XRLY_* environment variables.
func (c *Config) ApplyEnv(v *viper.Viper) {
	if pw := v.GetString(envRedisPassword); pw != "" {
		c.Cache.Redis.Password = pw
	}
}

// XRPLSecret returns the XRPL wallet secret from XRLY_XRPL_SECRET.
func XRPLSecret(v *viper.Viper) string {
	return v.GetString(envXRPLSecret)
}
