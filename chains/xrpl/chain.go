package xrpl

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
	"github.com/tidwall/gjson"
)

// Chain submits transactions to the XRP Ledger over a shared websocket connection.
type Chain struct {
	config ChainConfig

	mu     sync.Mutex
	client *Client
}

var _ core.XRPLDestination = (*Chain)(nil)

func NewChain(config ChainConfig) *Chain {
	return &Chain{config: config}
}

func (c *Chain) ChainID() string {
	return c.config.ChainID
}

func (c *Chain) Config() ChainConfig {
	return c.config
}

// connect returns the open connection, dialing a new one if the previous one ended.
func (c *Chain) connect(ctx context.Context) (*Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		select {
		case <-c.client.Done():
			GetChainLogger(c.config.ChainID).Warn("reconnecting", "reason", c.client.Err())
			c.client = nil
		default:
			return c.client, nil
		}
	}
	client, err := Dial(ctx, c.config.RPC.WS)
	if err != nil {
		return nil, err
	}
	go drain(client)
	c.client = client
	return client, nil
}

// drain discards stream messages of a connection used only for requests.
func drain(client *Client) {
	for range client.Stream() {
	}
}

func (c *Chain) request(ctx context.Context, req Request) (gjson.Result, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return gjson.Result{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.config.GetRequestTimeout())
	defer cancel()
	return client.Request(ctx, req)
}

// SubmitTxBlob submits a signed transaction blob with fail_hard set.
func (c *Chain) SubmitTxBlob(ctx context.Context, txBlob string) (*core.XRPLSubmitResult, error) {
	result, err := c.request(ctx, Request{
		"command":   "submit",
		"tx_blob":   txBlob,
		"fail_hard": true,
	})
	if err != nil {
		return nil, err
	}
	res := parseSubmitResult(result)
	GetChainLogger(c.config.ChainID).InfoContext(ctx, "transaction blob submitted",
		"tx_hash", res.TxHash,
		"engine_result", res.EngineResult,
		"accepted", res.Accepted,
	)
	return res, nil
}

// SignAndSubmit lets the server autofill, sign with secret and submit txJSON.
func (c *Chain) SignAndSubmit(ctx context.Context, txJSON map[string]any, secret string) (*core.XRPLSubmitResult, error) {
	if secret == "" {
		return nil, errors.New("no secret is given")
	}
	result, err := c.request(ctx, Request{
		"command": "submit",
		"tx_json": txJSON,
		"secret":  secret,
	})
	if err != nil {
		return nil, err
	}
	return parseSubmitResult(result), nil
}

func (c *Chain) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

func parseSubmitResult(result gjson.Result) *core.XRPLSubmitResult {
	res := &core.XRPLSubmitResult{
		EngineResult: result.Get("engine_result").String(),
		TxHash:       result.Get("tx_json.hash").String(),
	}
	if accepted := result.Get("accepted"); accepted.Exists() {
		res.Accepted = accepted.Bool()
	} else {
		res.Accepted = res.EngineResult == resultSuccess
	}
	for _, pk := range result.Get("tx_json.Signers.#.Signer.SigningPubKey").Array() {
		res.SignerPublicKeys = append(res.SignerPublicKeys, pk.String())
	}
	return res
}

func GetChainLogger(chainID string) *log.RelayLogger {
	return log.GetLogger().
		WithChain(chainID).
		WithModule("xrpl.chain")
}
