package core

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrPayloadNotFound is returned when no payload has been registered for a hash.
	ErrPayloadNotFound = errors.New("payload not found")
	// ErrRejected marks an explicit rejection by the hub or a destination ledger.
	ErrRejected = errors.New("rejected")
	// ErrMalformedSourceTx marks a source transaction that does not carry a transfer intent.
	ErrMalformedSourceTx = errors.New("malformed source transaction")
	// ErrPollBudgetExhausted is returned when a bounded poll gives up.
	ErrPollBudgetExhausted = errors.New("poll budget exhausted")
	// ErrDuplicateMessage is returned when a message is dispatched while it is in flight or already relayed.
	ErrDuplicateMessage = errors.New("duplicate message")
)

type RejectedError struct {
	Operation string
	Reason    string
}

func NewRejectedError(operation, reason string) error {
	return errors.Mark(&RejectedError{Operation: operation, Reason: reason}, ErrRejected)
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Operation, e.Reason)
}

// Is reports ErrRejected so that the standard library errors.Is sees the mark too.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

type MissingAttributeError struct {
	Field string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("event attribute %q is missing or empty", e.Field)
}

// IsAbort reports whether err ends a relay run without being worth a retry.
func IsAbort(err error) bool {
	var missing *MissingAttributeError
	return errors.Is(err, ErrRejected) || errors.As(err, &missing)
}
