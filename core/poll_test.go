package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted returns the outputs in order and repeats the last one.
func scripted(calls *int, outputs ...string) func(context.Context) (core.RawOutput, error) {
	return func(context.Context) (core.RawOutput, error) {
		i := *calls
		*calls++
		if i >= len(outputs) {
			i = len(outputs) - 1
		}
		return core.RawOutput(outputs[i]), nil
	}
}

func TestPollUntilSuccess(t *testing.T) {
	calls := 0
	cfg := core.PollConfig{Interval: time.Millisecond, MaxAttempts: 5}
	_, err := core.PollUntil(context.Background(), log.GetLogger(), cfg, "verify",
		scripted(&calls, "{}", "{}", `{"events":"already_verified"}`),
		core.ClassifyVerification,
	)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPollUntilRetriesInvokeErrors(t *testing.T) {
	calls := 0
	cfg := core.PollConfig{Interval: time.Millisecond, MaxAttempts: 3}
	hash, err := core.PollUntil(context.Background(), log.GetLogger(), cfg, "route",
		func(context.Context) (core.RawOutput, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("account sequence mismatch")
			}
			return core.RawOutput(`{"txhash":"ABC","code":0}`), nil
		},
		core.ClassifyCommitted,
	)
	require.NoError(t, err)
	assert.Equal(t, "ABC", hash)
	assert.Equal(t, 2, calls)
}

func TestPollUntilRejectedStopsImmediately(t *testing.T) {
	calls := 0
	cfg := core.PollConfig{Interval: time.Millisecond, MaxAttempts: 5}
	_, err := core.PollUntil(context.Background(), log.GetLogger(), cfg, "verify",
		scripted(&calls, "already_rejected"),
		core.ClassifyVerification,
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrRejected))
	assert.False(t, errors.Is(err, core.ErrPollBudgetExhausted))
	assert.Equal(t, 1, calls)

	var rejected *core.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "verify", rejected.Operation)
}

func TestPollUntilAttemptBudget(t *testing.T) {
	calls := 0
	cfg := core.PollConfig{Interval: time.Millisecond, MaxAttempts: 4}
	_, err := core.PollUntil(context.Background(), log.GetLogger(), cfg, "verify",
		scripted(&calls, "{}"),
		core.ClassifyVerification,
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrPollBudgetExhausted))
	assert.Contains(t, err.Error(), "verify gave up after 4 attempts")
	assert.Equal(t, 4, calls)
}

func TestPollUntilTimeBudget(t *testing.T) {
	calls := 0
	cfg := core.PollConfig{Interval: time.Millisecond, Timeout: 20 * time.Millisecond}
	_, err := core.PollUntil(context.Background(), log.GetLogger(), cfg, "get_proof",
		scripted(&calls, `{"data":{"status":"pending"}}`),
		core.ClassifyProof,
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrPollBudgetExhausted))
	assert.Positive(t, calls)
}

func TestPollUntilContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := core.PollUntil(ctx, log.GetLogger(), core.PollConfig{Interval: time.Millisecond}, "verify",
		func(context.Context) (core.RawOutput, error) {
			calls++
			if calls == 3 {
				cancel()
			}
			return core.RawOutput("{}"), nil
		},
		core.ClassifyVerification,
	)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, core.ErrPollBudgetExhausted))
}

func TestPollConfigUnbounded(t *testing.T) {
	assert.True(t, core.PollConfig{Interval: time.Second}.Unbounded())
	assert.False(t, core.PollConfig{MaxAttempts: 1}.Unbounded())
	assert.False(t, core.PollConfig{Timeout: time.Second}.Unbounded())
}
