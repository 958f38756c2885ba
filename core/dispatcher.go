package core

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/internal/telemetry"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
	api "go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultMaxConcurrentRuns = 16
	DefaultDedupCacheSize    = 4096
)

type RunOutcome string

const (
	RunOutcomeCompleted RunOutcome = "completed"
	RunOutcomeAborted   RunOutcome = "aborted"
	RunOutcomeFailed    RunOutcome = "failed"
	RunOutcomeCanceled  RunOutcome = "canceled"
)

// MessageRelayer relays a single message.
type MessageRelayer interface {
	MessageID(msg *CrossChainMessage) string
	Relay(ctx context.Context, msg *CrossChainMessage) (*RelayRun, error)
}

// RunReport summarizes a finished relay run.
type RunReport struct {
	RunID             string     `json:"run_id"`
	MessageID         string     `json:"message_id"`
	Origin            Origin     `json:"origin"`
	SourceChain       string     `json:"source_chain"`
	DestinationChain  string     `json:"destination_chain"`
	SourceTxHash      string     `json:"source_tx_hash"`
	DestinationTxHash string     `json:"destination_tx_hash,omitempty"`
	Stage             string     `json:"stage"`
	Outcome           RunOutcome `json:"outcome"`
	Error             string     `json:"error,omitempty"`
	StartedAt         time.Time  `json:"started_at"`
	FinishedAt        time.Time  `json:"finished_at"`
}

// RelayListener is notified of every finished relay run.
type RelayListener interface {
	OnRelayFinished(ctx context.Context, report RunReport)
}

// Dispatcher tracks relay runs by message id and runs them on a bounded pool.
type Dispatcher struct {
	relayer   MessageRelayer
	sem       *semaphore.Weighted
	completed *lru.Cache
	listeners []RelayListener

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

func NewDispatcher(relayer MessageRelayer, maxConcurrentRuns int64, dedupCacheSize int) (*Dispatcher, error) {
	if maxConcurrentRuns <= 0 {
		maxConcurrentRuns = DefaultMaxConcurrentRuns
	}
	if dedupCacheSize <= 0 {
		dedupCacheSize = DefaultDedupCacheSize
	}
	completed, err := lru.New(dedupCacheSize)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		relayer:   relayer,
		sem:       semaphore.NewWeighted(maxConcurrentRuns),
		completed: completed,
		inflight:  make(map[string]struct{}),
	}, nil
}

func (d *Dispatcher) RegisterListener(l RelayListener) {
	d.listeners = append(d.listeners, l)
}

// Dispatch starts a relay run for msg without waiting for it.
// A message whose id is in flight or was relayed recently is rejected with ErrDuplicateMessage.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *CrossChainMessage) error {
	id := d.relayer.MessageID(msg)

	d.mu.Lock()
	if _, ok := d.inflight[id]; ok {
		d.mu.Unlock()
		return errors.Wrapf(ErrDuplicateMessage, "message %s is in flight", id)
	}
	if d.completed.Contains(id) {
		d.mu.Unlock()
		return errors.Wrapf(ErrDuplicateMessage, "message %s was already relayed", id)
	}
	d.inflight[id] = struct{}{}
	telemetry.InflightRunsGauge.Set(int64(len(d.inflight)))
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(ctx, id, msg)
	}()
	return nil
}

// InFlight returns the number of runs that have been dispatched and not finished.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}

// Wait blocks until every dispatched run has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, id string, msg *CrossChainMessage) {
	logger := log.GetLogger().WithMessage(id).WithModule("core.dispatcher")
	started := time.Now()

	var (
		run *RelayRun
		err error
	)
	if err = d.sem.Acquire(ctx, 1); err == nil {
		ctx, span := tracer.Start(ctx, "Dispatcher.run", withPackage(d.relayer))
		run, err = d.relayer.Relay(ctx, msg)
		span.End()
		d.sem.Release(1)
	}

	d.mu.Lock()
	delete(d.inflight, id)
	if err == nil {
		d.completed.Add(id, struct{}{})
	}
	telemetry.InflightRunsGauge.Set(int64(len(d.inflight)))
	d.mu.Unlock()

	report := newRunReport(id, msg, run, started, err)
	telemetry.RelayRunsCounter.Add(context.Background(), 1, api.WithAttributes(AttributeKeyOutcome.String(string(report.Outcome))))

	switch report.Outcome {
	case RunOutcomeCompleted:
		logger.InfoContext(ctx, "relay completed", "destination_tx_hash", report.DestinationTxHash, "elapsed", time.Since(started))
	case RunOutcomeAborted:
		logger.WarnContext(ctx, "relay aborted", "stage", report.Stage, "error", err)
	case RunOutcomeCanceled:
		logger.InfoContext(ctx, "relay canceled", "stage", report.Stage)
	default:
		logger.ErrorContext(ctx, "relay failed", err, "stage", report.Stage)
	}

	for _, l := range d.listeners {
		l.OnRelayFinished(context.WithoutCancel(ctx), report)
	}
}

func newRunReport(id string, msg *CrossChainMessage, run *RelayRun, started time.Time, err error) RunReport {
	report := RunReport{
		MessageID:        id,
		Origin:           msg.Origin,
		SourceChain:      msg.SourceChainID,
		DestinationChain: msg.DestinationChainID,
		SourceTxHash:     msg.TxHash,
		Stage:            StageDetected.String(),
		StartedAt:        started,
		FinishedAt:       time.Now(),
	}
	if run != nil {
		report.RunID = run.RunID
		report.Stage = run.Stage.String()
		report.DestinationTxHash = run.DestinationTxHash
	}
	switch {
	case err == nil:
		report.Outcome = RunOutcomeCompleted
	case IsAbort(err) || errors.Is(err, ErrMalformedSourceTx):
		report.Outcome = RunOutcomeAborted
	case errors.Is(err, context.Canceled):
		report.Outcome = RunOutcomeCanceled
	default:
		report.Outcome = RunOutcomeFailed
	}
	if err != nil {
		report.Error = err.Error()
	}
	return report
}
