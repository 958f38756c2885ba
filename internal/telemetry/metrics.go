package telemetry

import (
	"fmt"
	"net/http"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	namespaceRoot = "relayer"
)

var (
	ProcessedBlockHeightGauge *Int64SyncGauge
	InflightRunsGauge         *Int64SyncGauge
	PayloadCacheEntriesGauge  *Int64SyncGauge

	RelayRunsCounter    api.Int64Counter = noop.Int64Counter{}
	PollAttemptsCounter api.Int64Counter = noop.Int64Counter{}

	meter = otel.Meter(name)
)

func InitializeMetrics() error {
	var err error

	// create the instrument "relayer.processed_block_height"
	name := fmt.Sprintf("%s.processed_block_height", namespaceRoot)
	if ProcessedBlockHeightGauge, err = NewInt64SyncGauge(
		meter,
		name,
		api.WithUnit("1"),
		api.WithDescription("latest block whose logs have been requested"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.relay_runs_inflight"
	name = fmt.Sprintf("%s.relay_runs_inflight", namespaceRoot)
	if InflightRunsGauge, err = NewInt64SyncGauge(
		meter,
		name,
		api.WithUnit("1"),
		api.WithDescription("number of relay runs that are dispatched and not finished"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.payload_cache_entries"
	name = fmt.Sprintf("%s.payload_cache_entries", namespaceRoot)
	if PayloadCacheEntriesGauge, err = NewInt64SyncGauge(
		meter,
		name,
		api.WithUnit("1"),
		api.WithDescription("number of payloads waiting for their source transaction"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.relay_runs"
	name = fmt.Sprintf("%s.relay_runs", namespaceRoot)
	if RelayRunsCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of finished relay runs by outcome"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	// create the instrument "relayer.poll_attempts"
	name = fmt.Sprintf("%s.poll_attempts", namespaceRoot)
	if PollAttemptsCounter, err = meter.Int64Counter(
		name,
		api.WithUnit("1"),
		api.WithDescription("number of hub operations issued while polling"),
	); err != nil {
		return fmt.Errorf("failed to create the instrument %s: %v", name, err)
	}

	return nil
}

func NewPrometheusExporter(addr string) (*prometheus.Exporter, error) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger := log.GetLogger().WithModule("core.metrics")
			logger.Fatal("Prometheus exporter server failed", err)
		}
	}()

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create the Prometheus Exporter: %v", err)
	}

	return exporter, nil
}
