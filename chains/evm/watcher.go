package evm

import (
	"context"
	"encoding/hex"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/internal/telemetry"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const headQueueSize = 64

// LogSource is the part of the sidechain client the watcher reads from.
type LogSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterContractCalls(ctx context.Context, from, to uint64) ([]*ContractCallEvent, error)
}

// ContractCallWatcher turns gateway ContractCall logs into relay runs.
//
// Block heads are queued and handled one at a time. For each head M the
// watermark is advanced to M before the range (watermark, M] is fetched, so a
// failed fetch skips that range instead of retrying it.
type ContractCallWatcher struct {
	chainID      string
	source       LogSource
	dispatcher   core.MessageDispatcher
	pollInterval time.Duration

	watermark    atomic.Uint64
	watermarkSet atomic.Bool
}

var _ core.Runner = (*ContractCallWatcher)(nil)

func NewContractCallWatcher(chainID string, source LogSource, dispatcher core.MessageDispatcher, pollInterval time.Duration) *ContractCallWatcher {
	if pollInterval <= 0 {
		pollInterval = DefaultBlockPollInterval
	}
	return &ContractCallWatcher{
		chainID:      chainID,
		source:       source,
		dispatcher:   dispatcher,
		pollInterval: pollInterval,
	}
}

func (w *ContractCallWatcher) Name() string {
	return "evm-contract-call-watcher"
}

// Watermark returns the last block whose logs have been requested.
func (w *ContractCallWatcher) Watermark() uint64 {
	return w.watermark.Load()
}

// SetWatermark makes the next scan start at n+1. Zero is a valid watermark.
func (w *ContractCallWatcher) SetWatermark(n uint64) {
	w.watermark.Store(n)
	w.watermarkSet.Store(true)
}

// Run polls for new heads until ctx is done. If no watermark is set, scanning
// starts after the latest block at startup.
func (w *ContractCallWatcher) Run(ctx context.Context) error {
	logger := w.getLogger()
	if !w.watermarkSet.Load() {
		latest, err := w.source.LatestBlockNumber(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to get the latest block number")
		}
		w.SetWatermark(latest)
	}
	logger.InfoContext(ctx, "listening for ContractCall events", "watermark", w.Watermark())

	heads := make(chan uint64, headQueueSize)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer close(heads)
		return w.pollHeads(ctx, heads)
	})
	eg.Go(func() error {
		for head := range heads {
			if err := w.OnBlock(ctx, head); err != nil {
				logger.ErrorContext(ctx, "failed to handle block", err, "block_number", head)
			}
		}
		return nil
	})
	return eg.Wait()
}

func (w *ContractCallWatcher) pollHeads(ctx context.Context, heads chan<- uint64) error {
	logger := w.getLogger()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		head, err := w.source.LatestBlockNumber(ctx)
		if err != nil {
			logger.WarnContext(ctx, "failed to get the latest block number", "error", err)
			continue
		}
		if head <= last {
			continue
		}
		last = head
		select {
		case heads <- head:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// OnBlock handles a new head. It must not be called concurrently.
func (w *ContractCallWatcher) OnBlock(ctx context.Context, head uint64) error {
	logger := w.getLogger()
	prev := w.watermark.Load()
	if head <= prev {
		logger.DebugContext(ctx, "block is not beyond the watermark", "block_number", head, "watermark", prev)
		return nil
	}
	w.watermark.Store(head)
	telemetry.ProcessedBlockHeightGauge.Set(int64(head), attribute.String("chain_id", w.chainID))

	logger.DebugContext(ctx, "fetching logs", "from", prev+1, "to", head)
	events, err := w.source.FilterContractCalls(ctx, prev+1, head)
	if err != nil {
		return errors.Wrapf(err, "skipping blocks [%d, %d]", prev+1, head)
	}

	for _, ev := range events {
		msg := w.newMessage(ev)
		logger.InfoContext(ctx, "ContractCall detected",
			"tx_hash", msg.TxHash,
			"log_index", ev.Raw.Index,
			"destination_chain", msg.DestinationChainID,
			"destination_address", msg.DestinationAddress,
		)
		if err := w.dispatcher.Dispatch(ctx, msg); err != nil {
			logger.WarnContext(ctx, "message was not dispatched", "tx_hash", msg.TxHash, "error", err)
		}
	}
	return nil
}

func (w *ContractCallWatcher) newMessage(ev *ContractCallEvent) *core.CrossChainMessage {
	index := ev.Raw.Index
	return &core.CrossChainMessage{
		Origin:             core.OriginEVM,
		TxHash:             ev.Raw.TxHash.Hex(),
		EventIndex:         &index,
		SourceAddress:      ev.Sender.Hex(),
		SourceChainID:      w.chainID,
		DestinationChainID: ev.DestinationChain,
		DestinationAddress: ev.DestinationContractAddress,
		PayloadHash:        hex.EncodeToString(ev.PayloadHash[:]),
		Payload:            ev.Payload,
	}
}

func (w *ContractCallWatcher) getLogger() *log.RelayLogger {
	return log.GetLogger().
		WithChain(w.chainID).
		WithModule("evm.watcher")
}
