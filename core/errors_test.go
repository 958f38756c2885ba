package core_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/stretchr/testify/assert"
)

func TestRejectedErrorIs(t *testing.T) {
	err := core.NewRejectedError("verify", "already_rejected")
	wrapped := fmt.Errorf("stage verify: %w", errors.Wrap(err, "relay"))

	for _, e := range []error{err, wrapped} {
		assert.True(t, stderrors.Is(e, core.ErrRejected))
		assert.True(t, errors.Is(e, core.ErrRejected))
		assert.ErrorIs(t, e, core.ErrRejected)
		assert.True(t, core.IsAbort(e))

		var rejected *core.RejectedError
		assert.True(t, stderrors.As(e, &rejected))
		assert.Equal(t, "already_rejected", rejected.Reason)
	}

	assert.False(t, stderrors.Is(err, core.ErrPollBudgetExhausted))
	assert.False(t, core.IsAbort(errors.New("timeout")))
}
