package evm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLogSource struct {
	latest uint64
	events []*ContractCallEvent
	err    error

	ranges [][2]uint64
}

func (s *fakeLogSource) LatestBlockNumber(context.Context) (uint64, error) {
	return s.latest, nil
}

func (s *fakeLogSource) FilterContractCalls(_ context.Context, from, to uint64) ([]*ContractCallEvent, error) {
	s.ranges = append(s.ranges, [2]uint64{from, to})
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

type recordingDispatcher struct {
	mu   sync.Mutex
	msgs []*core.CrossChainMessage
}

func (d *recordingDispatcher) Dispatch(_ context.Context, msg *core.CrossChainMessage) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.msgs = append(d.msgs, msg)
	return nil
}

func TestOnBlockAdvancesWatermarkBeforeFetching(t *testing.T) {
	source := &fakeLogSource{err: errors.New("connection reset")}
	w := NewContractCallWatcher("xrpl-evm-sidechain", source, &recordingDispatcher{}, 0)
	w.SetWatermark(100)

	err := w.OnBlock(context.TODO(), 105)
	assert.Error(t, err)
	assert.Equal(t, [][2]uint64{{101, 105}}, source.ranges)
	assert.EqualValues(t, 105, w.Watermark())

	// the failed range is not fetched again
	source.err = nil
	require.NoError(t, w.OnBlock(context.TODO(), 107))
	assert.Equal(t, [][2]uint64{{101, 105}, {106, 107}}, source.ranges)
	assert.EqualValues(t, 107, w.Watermark())
}

func TestRunStartsAfterWatermark(t *testing.T) {
	for _, tc := range []struct {
		name      string
		watermark *uint64
		ranges    [][2]uint64
	}{
		{name: "unset starts at head", ranges: nil},
		{name: "zero scans from genesis", watermark: new(uint64), ranges: [][2]uint64{{1, 5}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			source := &fakeLogSource{latest: 5}
			w := NewContractCallWatcher("xrpl-evm-sidechain", source, &recordingDispatcher{}, time.Millisecond)
			if tc.watermark != nil {
				w.SetWatermark(*tc.watermark)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			assert.ErrorIs(t, w.Run(ctx), context.DeadlineExceeded)
			assert.Equal(t, tc.ranges, source.ranges)
			assert.EqualValues(t, 5, w.Watermark())
		})
	}
}

func TestOnBlockIgnoresOldHeads(t *testing.T) {
	source := &fakeLogSource{}
	w := NewContractCallWatcher("xrpl-evm-sidechain", source, &recordingDispatcher{}, 0)
	w.SetWatermark(100)

	require.NoError(t, w.OnBlock(context.TODO(), 100))
	require.NoError(t, w.OnBlock(context.TODO(), 99))
	assert.Empty(t, source.ranges)
	assert.EqualValues(t, 100, w.Watermark())
}

func TestOnBlockDispatchesContractCalls(t *testing.T) {
	txHash := common.HexToHash("0xabc0000000000000000000000000000000000000000000000000000000000001")
	sender := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	source := &fakeLogSource{events: []*ContractCallEvent{{
		Sender:                     sender,
		DestinationChain:           "axelarnet",
		DestinationContractAddress: "0xDestination",
		PayloadHash:                [32]byte{0x12, 0x34},
		Payload:                    []byte{0x12, 0x12},
		Raw:                        types.Log{TxHash: txHash, Index: 2},
	}}}
	dispatcher := &recordingDispatcher{}
	w := NewContractCallWatcher("xrpl-evm-sidechain", source, dispatcher, 0)
	w.SetWatermark(10)

	require.NoError(t, w.OnBlock(context.TODO(), 11))
	require.Len(t, dispatcher.msgs, 1)
	msg := dispatcher.msgs[0]
	assert.Equal(t, core.OriginEVM, msg.Origin)
	assert.Equal(t, txHash.Hex(), msg.TxHash)
	require.NotNil(t, msg.EventIndex)
	assert.EqualValues(t, 2, *msg.EventIndex)
	assert.Equal(t, sender.Hex(), msg.SourceAddress)
	assert.Equal(t, "xrpl-evm-sidechain", msg.SourceChainID)
	assert.Equal(t, "axelarnet", msg.DestinationChainID)
	assert.Equal(t, "0xDestination", msg.DestinationAddress)
	assert.Equal(t, "1234000000000000000000000000000000000000000000000000000000000000", msg.PayloadHash)
	assert.Equal(t, []byte{0x12, 0x12}, msg.Payload)
}

type hubCall struct {
	contract string
	action   []byte
}

// rejectingHub answers every transaction with a rejection and records what it was sent.
type rejectingHub struct {
	calls []hubCall
}

func (h *rejectingHub) ExecuteTx(_ context.Context, contract string, action []byte) (core.RawOutput, error) {
	h.calls = append(h.calls, hubCall{contract, action})
	return core.RawOutput(`{"verify_messages":"already_rejected"}`), nil
}

func (h *rejectingHub) QueryState(context.Context, string, []byte) (core.RawOutput, error) {
	return nil, errors.New("unexpected query")
}

type relayingDispatcher struct {
	relayer *core.Relayer
	errs    []error
}

func (d *relayingDispatcher) Dispatch(ctx context.Context, msg *core.CrossChainMessage) error {
	_, err := d.relayer.Relay(ctx, msg)
	d.errs = append(d.errs, err)
	return nil
}

func TestContractCallReachesVerifyStage(t *testing.T) {
	hub := &rejectingHub{}
	relayer := core.NewRelayer(hub, nil, nil, core.RelayConfig{
		Routes: core.Routes{
			HubChain:      "axelarnet",
			HubGateway:    "axelar1gateway",
			EVMChain:      "xrpl-evm-sidechain",
			EVMHubGateway: "axelar1evmgateway",
		},
		Identity: core.DefaultXRPLIdentity(),
	})
	dispatcher := &relayingDispatcher{relayer: relayer}

	const txHash = "0x9a6c0e2d8bd2e8e1a4f2a1b3c0d8e7f6a5b4c3d2e1f0a9b8c7d6e5f4a3b2c1d0"
	source := &fakeLogSource{events: []*ContractCallEvent{{
		DestinationChain:           "axelarnet",
		DestinationContractAddress: "axelar1its",
		Payload:                    []byte{0x01},
		Raw:                        types.Log{TxHash: common.HexToHash(txHash), Index: 2},
	}}}
	w := NewContractCallWatcher("xrpl-evm-sidechain", source, dispatcher, 0)
	w.SetWatermark(1)
	require.NoError(t, w.OnBlock(context.TODO(), 2))

	require.Len(t, dispatcher.errs, 1)
	assert.ErrorIs(t, dispatcher.errs[0], core.ErrRejected)

	require.Len(t, hub.calls, 1)
	assert.Equal(t, "axelar1evmgateway", hub.calls[0].contract)

	var action struct {
		VerifyMessages []core.GatewayMessage `json:"verify_messages"`
	}
	require.NoError(t, json.Unmarshal(hub.calls[0].action, &action))
	require.Len(t, action.VerifyMessages, 1)
	assert.Equal(t, txHash+"-2", action.VerifyMessages[0].CCID.MessageID)
	assert.Equal(t, "xrpl-evm-sidechain", action.VerifyMessages[0].CCID.SourceChain)
	assert.Equal(t, "axelarnet", action.VerifyMessages[0].DestinationChain)
}
