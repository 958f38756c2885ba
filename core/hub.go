package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
)

// HubClient issues state-changing and state-querying operations against the hub chain.
// Implementations only transport; retries and classification belong to the caller.
type HubClient interface {
	// ExecuteTx executes `action` on the contract and returns the transaction output.
	ExecuteTx(ctx context.Context, contract string, action []byte) (RawOutput, error)
	// QueryState runs a smart query and returns `{"data": <response>}`.
	QueryState(ctx context.Context, contract string, query []byte) (RawOutput, error)
}

// RawOutput is the unclassified output of a hub operation.
type RawOutput []byte

func (o RawOutput) Contains(marker string) bool {
	return bytes.Contains(o, []byte(marker))
}

func (o RawOutput) String() string {
	return string(o)
}

// TxOutput is the normalized result of a hub transaction.
type TxOutput struct {
	TxHash string  `json:"txhash"`
	Code   *uint32 `json:"code"`
	RawLog string  `json:"raw_log,omitempty"`
	Logs   []TxLog `json:"logs"`
}

type TxLog struct {
	MsgIndex uint32        `json:"msg_index"`
	Events   []LoggedEvent `json:"events"`
}

// ParseTxOutput decodes a transaction output, skipping any text printed before the JSON document.
func ParseTxOutput(o RawOutput) (*TxOutput, error) {
	start := bytes.IndexByte(o, '{')
	if start < 0 {
		return nil, errors.New("transaction output does not contain a JSON object")
	}
	var out TxOutput
	if err := json.Unmarshal(o[start:], &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode transaction output")
	}
	return &out, nil
}

// FindEvent returns the first event of the given type in the first message log.
func (o *TxOutput) FindEvent(eventType string) (LoggedEvent, bool) {
	if len(o.Logs) == 0 {
		return LoggedEvent{}, false
	}
	for _, ev := range o.Logs[0].Events {
		if ev.Type == eventType {
			return ev, true
		}
	}
	return LoggedEvent{}, false
}

const (
	markerAlreadyVerified = "already_verified"
	markerAlreadyRejected = "already_rejected"
)

// ClassifyVerification succeeds once the gateway reports the message as verified
// and rejects once it reports the message as rejected.
func ClassifyVerification(o RawOutput) Outcome[struct{}] {
	switch {
	case o.Contains(markerAlreadyRejected):
		return Rejected[struct{}]("message verification was rejected")
	case o.Contains(markerAlreadyVerified):
		return Success(struct{}{})
	default:
		return Pending[struct{}]("message is not verified yet")
	}
}

// ClassifyCommitted succeeds with the transaction hash when the transaction was executed with code 0.
func ClassifyCommitted(o RawOutput) Outcome[string] {
	out, err := ParseTxOutput(o)
	if err != nil {
		return Pending[string](err.Error())
	}
	if out.TxHash == "" || out.Code == nil {
		return Pending[string]("transaction output lacks txhash or code")
	}
	if *out.Code != 0 {
		return Pending[string](fmt.Sprintf("transaction %s failed with code %d: %s", out.TxHash, *out.Code, out.RawLog))
	}
	return Success(out.TxHash)
}

// ClassifyEvent succeeds with the first event of the given type found in the transaction logs.
func ClassifyEvent(eventType string) Classifier[LoggedEvent] {
	return func(o RawOutput) Outcome[LoggedEvent] {
		if !o.Contains(eventType) {
			return Pending[LoggedEvent](fmt.Sprintf("output does not contain %s", eventType))
		}
		out, err := ParseTxOutput(o)
		if err != nil {
			return Pending[LoggedEvent](err.Error())
		}
		ev, ok := out.FindEvent(eventType)
		if !ok {
			return Pending[LoggedEvent](fmt.Sprintf("%s is not in the first message log", eventType))
		}
		return Success(ev)
	}
}
