package config

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/chains/evm"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/chains/xrpl"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/internal/notify"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/otelcore"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/payload"
)

// Context builds the relayer components described by a Config.
// Each component is built once and shared by later callers.
type Context struct {
	Config   *Config
	HomePath string

	hub     core.HubClient
	evm     *evm.Chain
	xrpl    *xrpl.Chain
	cache   payload.Cache
	closers []io.Closer
}

func NewContext(config *Config, homePath string) *Context {
	return &Context{Config: config, HomePath: homePath}
}

// HubClient returns the hub client of the configured backend, wrapped for tracing.
func (c *Context) HubClient() (core.HubClient, error) {
	if c.hub != nil {
		return c.hub, nil
	}
	timeout, err := c.Config.Global.GetTimeout()
	if err != nil {
		return nil, err
	}
	hub, err := c.Config.Chains.Axelarnet.Build(c.HomePath, timeout)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build hub client")
	}
	if closer, ok := hub.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}
	c.hub = otelcore.NewHubClient(hub, c.Config.Chains.Axelarnet.ChainID, nil)
	return c.hub, nil
}

// EVMChain returns the sidechain client. When withSigner is false the
// client is read-only and the private key is not required.
func (c *Context) EVMChain(ctx context.Context, withSigner bool) (*evm.Chain, error) {
	if c.evm != nil {
		return c.evm, nil
	}
	var chain *evm.Chain
	if withSigner {
		s, err := c.Config.Signer.Build()
		if err != nil {
			return nil, errors.Wrap(err, "failed to build sidechain signer")
		}
		chain, err = evm.NewChain(ctx, c.Config.Chains.EVM, c.Config.ITSGasLimit, s)
		if err != nil {
			return nil, err
		}
		c.evm = chain
		return chain, nil
	}
	return evm.NewChain(ctx, c.Config.Chains.EVM, c.Config.ITSGasLimit, nil)
}

// EVMDestination returns the sidechain client wrapped for tracing.
func (c *Context) EVMDestination(ctx context.Context, withSigner bool) (core.EVMDestination, error) {
	chain, err := c.EVMChain(ctx, withSigner)
	if err != nil {
		return nil, err
	}
	return otelcore.NewEVMDestination(chain, chain.ChainID(), nil), nil
}

func (c *Context) XRPLChain() *xrpl.Chain {
	if c.xrpl == nil {
		c.xrpl = xrpl.NewChain(c.Config.Chains.XRPL)
		c.closers = append(c.closers, c.xrpl)
	}
	return c.xrpl
}

func (c *Context) PayloadCache() (payload.Cache, error) {
	if c.cache != nil {
		return c.cache, nil
	}
	cache, err := c.Config.Cache.Build()
	if err != nil {
		return nil, err
	}
	if closer, ok := cache.(io.Closer); ok {
		c.closers = append(c.closers, closer)
	}
	c.cache = cache
	return cache, nil
}

// Relayer wires the hub and both destinations into an orchestrator.
func (c *Context) Relayer(ctx context.Context) (*core.Relayer, error) {
	relayConfig, err := c.Config.RelayConfig()
	if err != nil {
		return nil, err
	}
	hub, err := c.HubClient()
	if err != nil {
		return nil, err
	}
	evmDestination, err := c.EVMDestination(ctx, true)
	if err != nil {
		return nil, err
	}
	xrplChain := c.XRPLChain()
	return core.NewRelayer(
		hub,
		evmDestination,
		otelcore.NewXRPLDestination(xrplChain, xrplChain.ChainID(), nil),
		relayConfig,
	), nil
}

// Dispatcher returns a dispatcher running relays on the configured pool.
// A Kafka listener is registered when notify is configured.
func (c *Context) Dispatcher(relayer core.MessageRelayer) (*core.Dispatcher, error) {
	relay := c.Config.Global.Relay
	d, err := core.NewDispatcher(relayer, relay.MaxConcurrentRuns, relay.DedupCacheSize)
	if err != nil {
		return nil, err
	}
	if c.Config.Notify.Enabled() {
		l, err := notify.NewKafkaListener(c.Config.Notify)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, l)
		d.RegisterListener(l)
	}
	return d, nil
}

// Close releases every component built so far.
func (c *Context) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
