package core_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnfurl(t *testing.T) {
	ev := contractCalled("axelarnet", "axelar1its", "0xhub-1", "abcd", "xrpl", testXRPLSender)
	ev.Attributes = append(ev.Attributes, core.EventAttribute{Key: "msg_index", Value: "0"})

	got, err := core.Unfurl(ev)
	require.NoError(t, err)
	assert.Equal(t, &core.UnfurledEvent{
		SourceChain:        "axelarnet",
		SourceAddress:      "axelar1its",
		MessageID:          "0xhub-1",
		Payload:            "abcd",
		PayloadHash:        testPayloadHash,
		DestinationChain:   "xrpl",
		DestinationAddress: testXRPLSender,
	}, got)
}

func TestUnfurlMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		drop  string
		empty string
	}{
		{name: "no source chain", drop: "source_chain"},
		{name: "no payload", drop: "payload"},
		{name: "no destination address", drop: "destination_address"},
		{name: "empty message id", empty: "message_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full := contractCalled("axelarnet", "axelar1its", "0xhub-1", "abcd", "xrpl", testXRPLSender)
			ev := core.LoggedEvent{Type: full.Type}
			for _, attr := range full.Attributes {
				switch attr.Key {
				case tt.drop:
					continue
				case tt.empty:
					attr.Value = ""
				}
				ev.Attributes = append(ev.Attributes, attr)
			}

			_, err := core.Unfurl(ev)
			var missing *core.MissingAttributeError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.drop+tt.empty, missing.Field)
			assert.True(t, core.IsAbort(err))
		})
	}
}

func TestUnquotedAttribute(t *testing.T) {
	ev := event("wasm-proof_under_construction", "multisig_session_id", `"42"`, "plain", "7", "broken", `"7`)

	v, ok := ev.UnquotedAttribute("multisig_session_id")
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	v, ok = ev.UnquotedAttribute("plain")
	assert.True(t, ok)
	assert.Equal(t, "7", v)

	v, ok = ev.UnquotedAttribute("broken")
	assert.True(t, ok)
	assert.Equal(t, `"7`, v)

	_, ok = ev.UnquotedAttribute("missing")
	assert.False(t, ok)
}

func TestParseTxOutputSkipsPreamble(t *testing.T) {
	raw := core.RawOutput("gas estimate: 123456\n" + `{"txhash":"ABC","code":0,"logs":[]}`)
	out, err := core.ParseTxOutput(raw)
	require.NoError(t, err)
	assert.Equal(t, "ABC", out.TxHash)
	require.NotNil(t, out.Code)
	assert.Zero(t, *out.Code)

	_, err = core.ParseTxOutput(core.RawOutput("Error: rpc error"))
	assert.Error(t, err)
}

func TestClassifyVerification(t *testing.T) {
	assert.True(t, core.ClassifyVerification(core.RawOutput(`{"type":"wasm-already_verified"}`)).IsSuccess())
	assert.True(t, core.ClassifyVerification(core.RawOutput(`{"type":"wasm-already_rejected"}`)).IsRejected())
	assert.True(t, core.ClassifyVerification(core.RawOutput(`{"type":"wasm-messages_poll_started"}`)).IsPending())
	assert.True(t, core.ClassifyVerification(nil).IsPending())
}

func TestClassifyCommitted(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		success bool
	}{
		{name: "committed", output: `{"txhash":"ABC","code":0}`, success: true},
		{name: "failed code", output: `{"txhash":"ABC","code":32,"raw_log":"account sequence mismatch"}`},
		{name: "no code", output: `{"txhash":"ABC"}`},
		{name: "no txhash", output: `{"code":0}`},
		{name: "not json", output: `timed out waiting for tx`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := core.ClassifyCommitted(core.RawOutput(tt.output))
			assert.Equal(t, tt.success, o.IsSuccess())
			assert.False(t, o.IsRejected())
			if tt.success {
				assert.Equal(t, "ABC", o.Value())
			}
		})
	}
}

func TestClassifyEventFirstLogOnly(t *testing.T) {
	classify := core.ClassifyEvent(core.EventTypeContractCalled)
	called := contractCalled("axelarnet", "axelar1its", "0xhub-1", "abcd", "xrpl", testXRPLSender)

	o := classify(txOutput(t, "ABC", 0, event("wasm-message_executed"), called))
	require.True(t, o.IsSuccess())
	assert.Equal(t, called, o.Value())

	o = classify(txOutput(t, "ABC", 0, event("wasm-message_executed")))
	assert.True(t, o.IsPending())

	// present only in a later message log
	raw := core.RawOutput(`{"txhash":"ABC","code":0,"logs":[` +
		`{"msg_index":0,"events":[{"type":"message","attributes":[]}]},` +
		`{"msg_index":1,"events":[{"type":"wasm-contract_called","attributes":[]}]}]}`)
	assert.True(t, classify(raw).IsPending())
}
