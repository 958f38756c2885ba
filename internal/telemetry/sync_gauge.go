package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	api "go.opentelemetry.io/otel/metric"
)

// Int64SyncGauge holds the last value set per attribute set and reports it on every collection.
type Int64SyncGauge struct {
	mu     sync.RWMutex
	values map[attribute.Distinct]observation
}

type observation struct {
	value int64
	attrs attribute.Set
}

func NewInt64SyncGauge(meter api.Meter, name string, options ...api.Int64ObservableGaugeOption) (*Int64SyncGauge, error) {
	g := &Int64SyncGauge{values: make(map[attribute.Distinct]observation)}
	options = append(options, api.WithInt64Callback(g.observe))
	if _, err := meter.Int64ObservableGauge(name, options...); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Int64SyncGauge) observe(_ context.Context, observer api.Int64Observer) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, o := range g.values {
		observer.Observe(o.value, api.WithAttributeSet(o.attrs))
	}
	return nil
}

// Set records value for the attribute set. It is a no-op before InitializeMetrics.
func (g *Int64SyncGauge) Set(value int64, attrs ...attribute.KeyValue) {
	if g == nil {
		return
	}
	set := attribute.NewSet(attrs...)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[set.Equivalent()] = observation{value: value, attrs: set}
}

// Value returns the last value set for the attribute set.
func (g *Int64SyncGauge) Value(attrs ...attribute.KeyValue) (int64, bool) {
	if g == nil {
		return 0, false
	}
	set := attribute.NewSet(attrs...)
	g.mu.RLock()
	defer g.mu.RUnlock()
	o, ok := g.values[set.Equivalent()]
	return o.value, ok
}
