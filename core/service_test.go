package core_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type funcRunner struct {
	name string
	run  func(ctx context.Context) error
}

func (r funcRunner) Name() string                  { return r.name }
func (r funcRunner) Run(ctx context.Context) error { return r.run(ctx) }

func blockingRunner(name string, stopped *atomic.Bool) core.Runner {
	return funcRunner{name: name, run: func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Store(true)
		return ctx.Err()
	}}
}

func TestStartServiceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var a, b atomic.Bool

	done := make(chan error, 1)
	go func() {
		done <- core.StartService(ctx, nil, blockingRunner("a", &a), blockingRunner("b", &b))
	}()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
	assert.True(t, a.Load())
	assert.True(t, b.Load())
}

func TestStartServiceRunnerFailure(t *testing.T) {
	var other atomic.Bool
	failing := funcRunner{name: "failing", run: func(context.Context) error {
		return errors.New("connection lost")
	}}

	err := core.StartService(context.Background(), nil, failing, blockingRunner("other", &other))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runner failing")
	assert.Contains(t, err.Error(), "connection lost")
	assert.True(t, other.Load())
}

func TestStartServiceWaitsForRuns(t *testing.T) {
	ctrl := gomock.NewController(t)
	relayer := NewMockMessageRelayer(ctrl)
	d, err := core.NewDispatcher(relayer, 1, 8)
	require.NoError(t, err)

	release := make(chan struct{})
	var finished atomic.Bool
	relayer.EXPECT().MessageID(gomock.Any()).Return("0xabc-3")
	relayer.EXPECT().Relay(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *core.CrossChainMessage) (*core.RelayRun, error) {
			<-release
			finished.Store(true)
			return &core.RelayRun{}, nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	ingestor := funcRunner{name: "ingestor", run: func(ctx context.Context) error {
		if err := d.Dispatch(context.Background(), evmMessage()); err != nil {
			return err
		}
		cancel()
		<-ctx.Done()
		close(release)
		return nil
	}}

	require.NoError(t, core.StartService(ctx, d, ingestor))
	assert.True(t, finished.Load())
	assert.Zero(t, d.InFlight())
}

func TestWait(t *testing.T) {
	require.NoError(t, core.Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, core.Wait(ctx, time.Hour), context.Canceled)
}
