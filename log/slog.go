package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const otelScopeName = "github.com/hyperledger-labs/xrpl-amplifier-relayer"

type RelayLogger struct {
	*slog.Logger
}

var relayLogger *RelayLogger

func InitLogger(logLevel, format, output string, enableTelemetry bool) error {
	var writer io.Writer
	switch output {
	case "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		return errors.New("invalid log output")
	}
	return InitLoggerWithWriter(logLevel, format, writer, enableTelemetry)
}

func InitLoggerWithWriter(logLevel, format string, writer io.Writer, enableTelemetry bool) error {
	var slogLevel slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		slogLevel = slog.LevelDebug
	case "INFO":
		slogLevel = slog.LevelInfo
	case "WARN":
		slogLevel = slog.LevelWarn
	case "ERROR":
		slogLevel = slog.LevelError
	default:
		return errors.New("invalid log level")
	}
	handlerOpts := &slog.HandlerOptions{
		Level:     slogLevel,
		AddSource: true,
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(writer, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(writer, handlerOpts)
	default:
		return errors.New("invalid log format")
	}

	if enableTelemetry {
		handler = slogmulti.Fanout(
			handler,
			otelslog.NewHandler(otelScopeName),
		)
	}

	// set global logger
	relayLogger = &RelayLogger{
		slog.New(handler),
	}
	return nil
}

// GetLogger returns the process-wide logger.
// A text logger writing to stderr is installed if InitLogger has not been called yet.
func GetLogger() *RelayLogger {
	if relayLogger == nil {
		relayLogger = &RelayLogger{slog.New(slog.NewTextHandler(os.Stderr, nil))}
	}
	return relayLogger
}

// log emits a record whose source points `depth` frames above the caller of log.
func (rl *RelayLogger) log(ctx context.Context, level slog.Level, depth int, msg string, args ...any) {
	if !rl.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(depth+2, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = rl.Handler().Handle(ctx, r)
}

func (rl *RelayLogger) Error(msg string, err error, otherArgs ...any) {
	args := append([]any{"error", err}, otherArgs...)
	rl.log(context.Background(), slog.LevelError, 1, msg, args...)
}

func (rl *RelayLogger) ErrorContext(ctx context.Context, msg string, err error, otherArgs ...any) {
	args := append([]any{"error", err}, otherArgs...)
	rl.log(ctx, slog.LevelError, 1, msg, args...)
}

func (rl *RelayLogger) ErrorWithStack(msg string, err error, otherArgs ...any) {
	cError := errors.WithStackDepth(err, 1)
	args := append([]any{"error", err, "stack", fmt.Sprintf("%+v", cError)}, otherArgs...)
	rl.log(context.Background(), slog.LevelError, 1, msg, args...)
}

func (rl *RelayLogger) Fatal(msg string, err error, otherArgs ...any) {
	args := append([]any{"error", err}, otherArgs...)
	rl.log(context.Background(), slog.LevelError, 1, msg, args...)
	os.Exit(1)
}

func (rl *RelayLogger) WithChain(
	chainID string,
) *RelayLogger {
	return &RelayLogger{
		rl.With(
			"chain_id", chainID,
		),
	}
}

func (rl *RelayLogger) WithChainPair(
	srcChainID string,
	dstChainID string,
) *RelayLogger {
	return &RelayLogger{
		rl.With(
			"source_chain_id", srcChainID,
			"destination_chain_id", dstChainID,
		),
	}
}

func (rl *RelayLogger) WithMessage(
	messageID string,
) *RelayLogger {
	return &RelayLogger{
		rl.With(
			"message_id", messageID,
		),
	}
}

func (rl *RelayLogger) WithModule(
	moduleName string,
) *RelayLogger {
	return &RelayLogger{
		rl.With(
			"module", moduleName,
		),
	}
}
