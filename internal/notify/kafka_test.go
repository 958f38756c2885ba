package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaListenerPublishesReport(t *testing.T) {
	w := &fakeWriter{}
	l := NewKafkaListenerWithWriter(w)

	l.OnRelayFinished(context.Background(), core.RunReport{
		RunID:     "run-1",
		MessageID: "0xabc-0",
		Origin:    core.OriginXRPL,
		Stage:     "submit",
		Outcome:   core.RunOutcomeCompleted,
	})

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "0xabc-0", string(w.msgs[0].Key))
	var got core.RunReport
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, core.RunOutcomeCompleted, got.Outcome)

	require.NoError(t, l.Close())
	assert.True(t, w.closed)
}

func TestKafkaListenerSwallowsWriteErrors(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	l := NewKafkaListenerWithWriter(w)
	assert.NotPanics(t, func() {
		l.OnRelayFinished(context.Background(), core.RunReport{MessageID: "0xabc-0"})
	})
	assert.Empty(t, w.msgs)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.Error(t, Config{Brokers: []string{"localhost:9092"}}.Validate())
	assert.Error(t, Config{Brokers: []string{"localhost:9092"}, Topic: "relays", RequiredAcks: "some"}.Validate())
	assert.NoError(t, Config{Brokers: []string{"localhost:9092"}, Topic: "relays", RequiredAcks: "all", WriteTimeout: "2s"}.Validate())

	_, err := NewKafkaListener(Config{})
	assert.Error(t, err)
}
