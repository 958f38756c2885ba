package xrpl

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/payload"
	"github.com/tidwall/gjson"
)

// TransactionSubscriber streams the transactions of the gateway account and
// dispatches the cross-chain payments among them.
type TransactionSubscriber struct {
	config     ChainConfig
	evmChainID string
	cache      payload.Cache
	dispatcher core.MessageDispatcher

	dial func(ctx context.Context, url string) (*Client, error)
}

var _ core.Runner = (*TransactionSubscriber)(nil)

func NewTransactionSubscriber(config ChainConfig, evmChainID string, cache payload.Cache, dispatcher core.MessageDispatcher) *TransactionSubscriber {
	return &TransactionSubscriber{
		config:     config,
		evmChainID: evmChainID,
		cache:      cache,
		dispatcher: dispatcher,
		dial:       Dial,
	}
}

func (s *TransactionSubscriber) Name() string {
	return "xrpl-transaction-subscriber"
}

// Run subscribes to the gateway account and reconnects whenever the stream ends.
func (s *TransactionSubscriber) Run(ctx context.Context) error {
	logger := s.getLogger()
	for {
		err := s.subscribe(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.WarnContext(ctx, "transaction stream ended", "error", err, "retry_in", s.config.GetReconnectInterval())
		if err := core.Wait(ctx, s.config.GetReconnectInterval()); err != nil {
			return err
		}
	}
}

func (s *TransactionSubscriber) subscribe(ctx context.Context) error {
	logger := s.getLogger()
	client, err := s.dial(ctx, s.config.RPC.WS)
	if err != nil {
		return err
	}
	defer client.Close()

	reqCtx, cancel := context.WithTimeout(ctx, s.config.GetRequestTimeout())
	_, err = client.Request(reqCtx, Request{
		"command":  "subscribe",
		"accounts": []string{s.config.NativeGatewayAddress},
	})
	cancel()
	if err != nil {
		return errors.Wrap(err, "failed to subscribe")
	}
	logger.InfoContext(ctx, "subscribed", "account", s.config.NativeGatewayAddress)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-client.Stream():
			if !ok {
				return client.Err()
			}
			if msg.Get("type").String() != "transaction" {
				continue
			}
			if err := s.HandleTransaction(ctx, msg); err != nil {
				logger.ErrorContext(ctx, "failed to handle transaction", err, "tx_hash", txHash(msg))
			}
		}
	}
}

// HandleTransaction dispatches tx if it is a cross-chain payment whose payload
// has been registered. Unrelated transactions are dropped without an error.
func (s *TransactionSubscriber) HandleTransaction(ctx context.Context, tx gjson.Result) error {
	logger := s.getLogger()
	p, err := ParsePayment(tx, s.config.NativeGatewayAddress, s.evmChainID)
	if errors.Is(err, core.ErrMalformedSourceTx) {
		logger.DebugContext(ctx, "transaction dropped", "tx_hash", txHash(tx), "reason", err.Error())
		return nil
	} else if err != nil {
		return err
	}
	logger.InfoContext(ctx, "payment to gateway detected",
		"tx_hash", p.TxHash,
		"source_address", p.Account,
		"destination_address", p.DestinationAddress,
		"payload_hash", p.PayloadHash,
	)

	data, err := s.cache.Take(ctx, p.PayloadHash)
	if err != nil {
		return errors.Wrapf(err, "payment %s", p.TxHash)
	}
	err = s.dispatcher.Dispatch(ctx, p.Message(s.config.ChainID, data))
	if !errors.Is(err, core.ErrDuplicateMessage) {
		return err
	}
	// a duplicate delivery must not consume the payload of the run that owns it
	if _, putErr := s.cache.Put(ctx, data); putErr != nil {
		return errors.Join(err, errors.Wrapf(putErr, "failed to restore payload %s", p.PayloadHash))
	}
	logger.WarnContext(ctx, "duplicate payment delivery ignored",
		"tx_hash", p.TxHash,
		"payload_hash", p.PayloadHash,
		"reason", err.Error(),
	)
	return nil
}

func txHash(tx gjson.Result) string {
	if h := tx.Get("hash"); h.Exists() {
		return h.String()
	}
	if h := tx.Get("transaction.hash"); h.Exists() {
		return h.String()
	}
	return tx.Get("tx_json.hash").String()
}

func (s *TransactionSubscriber) getLogger() *log.RelayLogger {
	return log.GetLogger().
		WithChain(s.config.ChainID).
		WithModule("xrpl.subscriber")
}
