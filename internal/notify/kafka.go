package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/kafka-go"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
)

const defaultWriteTimeout = 5 * time.Second

// Config is the `notify` section of the relayer config. Reports are published only when Brokers is set.
type Config struct {
	Brokers      []string `json:"brokers,omitempty" yaml:"brokers,omitempty"`
	Topic        string   `json:"topic,omitempty" yaml:"topic,omitempty"`
	RequiredAcks string   `json:"required_acks,omitempty" yaml:"required_acks,omitempty"`
	Async        bool     `json:"async,omitempty" yaml:"async,omitempty"`
	WriteTimeout string   `json:"write_timeout,omitempty" yaml:"write_timeout,omitempty"`
}

func (c Config) Enabled() bool {
	return len(c.Brokers) > 0
}

func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Topic == "" {
		return errors.New("config attribute \"topic\" is empty")
	}
	switch c.RequiredAcks {
	case "", "none", "one", "all":
	default:
		return errors.Newf("config attribute \"required_acks\" is unexpected: %s", c.RequiredAcks)
	}
	if c.WriteTimeout != "" {
		if _, err := time.ParseDuration(c.WriteTimeout); err != nil {
			return errors.Wrap(err, "config attribute \"write_timeout\" is invalid")
		}
	}
	return nil
}

// MessageWriter is the part of kafka.Writer used to publish reports.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaListener publishes a JSON RunReport for every finished relay run, keyed by message id.
type KafkaListener struct {
	writer MessageWriter
}

var _ core.RelayListener = (*KafkaListener)(nil)

func NewKafkaListener(cfg Config) (*KafkaListener, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, errors.New("kafka brokers are not configured")
	}

	var requiredAcks kafka.RequiredAcks
	switch cfg.RequiredAcks {
	case "none":
		requiredAcks = kafka.RequireNone
	case "all":
		requiredAcks = kafka.RequireAll
	default:
		requiredAcks = kafka.RequireOne
	}
	writeTimeout := defaultWriteTimeout
	if cfg.WriteTimeout != "" {
		writeTimeout, _ = time.ParseDuration(cfg.WriteTimeout)
	}

	logger := GetNotifyLogger()
	return NewKafkaListenerWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: requiredAcks,
		Async:        cfg.Async,
		WriteTimeout: writeTimeout,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error("kafka writer error", errors.Newf(msg, args...))
		}),
	}), nil
}

func NewKafkaListenerWithWriter(w MessageWriter) *KafkaListener {
	return &KafkaListener{writer: w}
}

func (l *KafkaListener) OnRelayFinished(ctx context.Context, report core.RunReport) {
	logger := GetNotifyLogger().WithMessage(report.MessageID)

	value, err := json.Marshal(report)
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode relay report", err)
		return
	}
	if err := l.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(report.MessageID),
		Value: value,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to publish relay report", err)
	}
}

// Close flushes buffered reports.
func (l *KafkaListener) Close() error {
	return l.writer.Close()
}

func GetNotifyLogger() *log.RelayLogger {
	return log.GetLogger().WithModule("notify")
}
