package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInt64SyncGauge(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	g, err := NewInt64SyncGauge(provider.Meter("test"), "relayer.processed_block_height")
	require.NoError(t, err)

	evm := attribute.String("chain_id", "xrpl-evm-sidechain")
	g.Set(10, evm)
	g.Set(12, evm)
	g.Set(3)

	v, ok := g.Value(evm)
	assert.True(t, ok)
	assert.EqualValues(t, 12, v)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)
	gauge, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Len(t, gauge.DataPoints, 2)
}

func TestInt64SyncGaugeNil(t *testing.T) {
	var g *Int64SyncGauge
	g.Set(1)
	_, ok := g.Value()
	assert.False(t, ok)
}
