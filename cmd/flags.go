package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagHome             = "home"
	flagFile             = "file"
	flagJSON             = "json"
	flagServePayloads    = "serve-payloads"
	flagEVMPollInterval  = "evm-poll-interval"
	flagListenAddr       = "listen-addr"
	flagServer           = "server"
	flagAccount          = "account"
	flagPrometheusAddr   = "prometheus-addr"
	defaultPayloadServer = "http://localhost:3000"
)

func fileFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().StringP(flagFile, "f", "", "use the config file at the specified path instead of the one in --home")
	return cmd
}

func jsonFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().BoolP(flagJSON, "j", false, "returns the response in json format")
	if err := viper.BindPFlag(flagJSON, cmd.Flags().Lookup(flagJSON)); err != nil {
		panic(err)
	}
	return cmd
}

func serverFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().String(flagServer, defaultPayloadServer, "base URL of the payload intake server")
	return cmd
}

func listenAddrFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().String(flagListenAddr, "", "address the payload intake server listens on, overriding server.listen_addr")
	return cmd
}

func prometheusAddrFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().String(flagPrometheusAddr, "", "host address to which the prometheus exporter listens, overriding global.telemetry.prometheus_addr")
	return cmd
}

// getDurationFlag returns the flag value, or def when the flag was not set.
func getDurationFlag(cmd *cobra.Command, name string, def time.Duration) (time.Duration, error) {
	if !cmd.Flags().Changed(name) {
		return def, nil
	}
	return cmd.Flags().GetDuration(name)
}
