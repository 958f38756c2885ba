package core

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
	"golang.org/x/sync/errgroup"
)

// StartService runs every runner until ctx is canceled or one of them fails,
// then waits for the dispatched relay runs to stop.
func StartService(ctx context.Context, dispatcher *Dispatcher, runners ...Runner) error {
	logger := log.GetLogger().WithModule("core.service")

	eg, ctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		r := r
		eg.Go(func() error {
			logger.InfoContext(ctx, "starting", "runner", r.Name())
			if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorContext(ctx, "runner stopped", err, "runner", r.Name())
				return errors.Wrapf(err, "runner %s", r.Name())
			}
			logger.InfoContext(ctx, "stopped", "runner", r.Name())
			return nil
		})
	}
	err := eg.Wait()

	if dispatcher != nil {
		logger.Info("waiting for in-flight relay runs", "count", dispatcher.InFlight())
		dispatcher.Wait()
	}
	return err
}

// Wait blocks for the given duration or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
