package core

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/internal/telemetry"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
)

const DefaultPollInterval = 5 * time.Second

// PollConfig bounds a poll. A zero MaxAttempts and a zero Timeout poll forever.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts uint
	Timeout     time.Duration
}

func (c PollConfig) Unbounded() bool {
	return c.MaxAttempts == 0 && c.Timeout == 0
}

type pendingError struct {
	reason string
}

func (e *pendingError) Error() string {
	return "pending: " + e.reason
}

// PollUntil calls invoke until classify reports Success or Rejected.
// Pending outcomes and invoke errors are retried every cfg.Interval.
// Rejected ends the poll immediately with an error marked ErrRejected.
// When the attempt or time budget runs out the error is marked ErrPollBudgetExhausted.
func PollUntil[T any](
	ctx context.Context,
	logger *log.RelayLogger,
	cfg PollConfig,
	operation string,
	invoke func(context.Context) (RawOutput, error),
	classify Classifier[T],
) (T, error) {
	var result T

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	pollCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	var b backoff.BackOff = backoff.NewConstantBackOff(interval)
	if cfg.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(cfg.MaxAttempts-1))
	}

	attempts := 0
	attrs := api.WithAttributes(attribute.String("operation", operation))
	err := backoff.RetryNotify(func() error {
		attempts++
		telemetry.PollAttemptsCounter.Add(pollCtx, 1, attrs)

		out, err := invoke(pollCtx)
		if err != nil {
			return err
		}
		o := classify(out)
		switch {
		case o.IsSuccess():
			result = o.Value()
			return nil
		case o.IsRejected():
			return backoff.Permanent(NewRejectedError(operation, o.Reason()))
		default:
			return &pendingError{reason: o.Reason()}
		}
	}, backoff.WithContext(b, pollCtx), func(err error, next time.Duration) {
		logger.InfoContext(ctx, "retrying hub operation",
			"operation", operation,
			"attempt", attempts,
			"retry_in", next,
			"reason", err.Error(),
		)
	})
	if err == nil {
		return result, nil
	}
	if errors.Is(err, ErrRejected) {
		return result, err
	}
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	return result, errors.Mark(
		errors.Wrapf(err, "%s gave up after %d attempts", operation, attempts),
		ErrPollBudgetExhausted,
	)
}
