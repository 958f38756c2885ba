package xrpl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/payload"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

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

func (d *recordingDispatcher) messages() []*core.CrossChainMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*core.CrossChainMessage(nil), d.msgs...)
}

func testConfig() ChainConfig {
	cfg := DefaultChainConfig()
	cfg.NativeGatewayAddress = testGateway
	cfg.AxelarnetGatewayAddress = "axelar1xrplgateway"
	cfg.AxelarnetMultisigProverAddress = "axelar1xrplprover"
	cfg.ReconnectInterval = "10ms"
	return cfg
}

func TestHandleTransactionResolvesPayload(t *testing.T) {
	ctx := context.TODO()
	cache := payload.NewMemoryCache()
	record, err := cache.Put(ctx, []byte{0x12, 0x12})
	require.NoError(t, err)

	dispatcher := &recordingDispatcher{}
	s := NewTransactionSubscriber(testConfig(), testEVMChainID, cache, dispatcher)

	msg := streamMessage(t, func(tx, _ map[string]any) {
		tx["Memos"] = Memos(testEVMAddress, testEVMChainID, record.HashHex)
	})
	require.NoError(t, s.HandleTransaction(ctx, msg))

	msgs := dispatcher.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []byte{0x12, 0x12}, msgs[0].Payload)
	assert.Equal(t, utils.HashPayload([]byte{0x12, 0x12}), msgs[0].PayloadHash)
	assert.Equal(t, "xrpl", msgs[0].SourceChainID)

	// the payload was consumed
	err = s.HandleTransaction(ctx, msg)
	assert.ErrorIs(t, err, core.ErrPayloadNotFound)
	assert.Len(t, dispatcher.messages(), 1)
}

type duplicateDispatcher struct{}

func (duplicateDispatcher) Dispatch(context.Context, *core.CrossChainMessage) error {
	return errors.Wrap(core.ErrDuplicateMessage, "message is in flight")
}

func TestHandleTransactionDuplicateKeepsPayload(t *testing.T) {
	ctx := context.TODO()
	cache := payload.NewMemoryCache()
	record, err := cache.Put(ctx, []byte{0x12, 0x12})
	require.NoError(t, err)

	s := NewTransactionSubscriber(testConfig(), testEVMChainID, cache, duplicateDispatcher{})
	msg := streamMessage(t, func(tx, _ map[string]any) {
		tx["Memos"] = Memos(testEVMAddress, testEVMChainID, record.HashHex)
	})
	require.NoError(t, s.HandleTransaction(ctx, msg))
	assert.Equal(t, 1, cache.Len())

	bz, err := cache.Take(ctx, record.HashHex)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x12}, bz)
}

func TestHandleTransactionDropsMalformed(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	s := NewTransactionSubscriber(testConfig(), testEVMChainID, payload.NewMemoryCache(), dispatcher)

	msg := streamMessage(t, func(tx, _ map[string]any) {
		tx["TransactionType"] = "OfferCreate"
	})
	assert.NoError(t, s.HandleTransaction(context.TODO(), msg))
	assert.Empty(t, dispatcher.messages())
}

// fakeRippled accepts a subscribe request and then streams txs.
func fakeRippled(t *testing.T, txs ...any) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close(websocket.StatusNormalClosure, "")
		ctx := r.Context()

		var req map[string]any
		if err := wsjson.Read(ctx, c, &req); err != nil {
			return
		}
		assert.Equal(t, "subscribe", req["command"])
		assert.Equal(t, []any{testGateway}, req["accounts"])
		if err := wsjson.Write(ctx, c, map[string]any{
			"id":     req["id"],
			"type":   "response",
			"status": "success",
			"result": map[string]any{},
		}); err != nil {
			return
		}
		for _, tx := range txs {
			if err := wsjson.Write(ctx, c, tx); err != nil {
				return
			}
		}
		for {
			if _, _, err := c.Read(ctx); err != nil {
				return
			}
		}
	}))
}

func TestSubscriberRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := payload.NewMemoryCache()
	record, err := cache.Put(ctx, []byte("hello"))
	require.NoError(t, err)

	tx := streamMessage(t, func(tx, _ map[string]any) {
		tx["Memos"] = Memos(testEVMAddress, testEVMChainID, record.HashHex)
	})
	srv := fakeRippled(t, map[string]any{"type": "ledgerClosed"}, tx.Value())
	defer srv.Close()

	cfg := testConfig()
	cfg.RPC.WS = "ws" + strings.TrimPrefix(srv.URL, "http")
	dispatcher := &recordingDispatcher{}
	s := NewTransactionSubscriber(cfg, testEVMChainID, cache, dispatcher)

	errC := make(chan error, 1)
	go func() { errC <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(dispatcher.messages()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []byte("hello"), dispatcher.messages()[0].Payload)

	cancel()
	select {
	case err := <-errC:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}
