package otelcore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/otelcore/semconv"
)

const tracerName = "github.com/hyperledger-labs/xrpl-amplifier-relayer/otelcore"

func defaultTracer(tracer trace.Tracer) trace.Tracer {
	if tracer == nil {
		return otel.Tracer(tracerName)
	}
	return tracer
}

// HubClient records a span for every hub operation.
type HubClient struct {
	core.HubClient
	chainID string
	tracer  trace.Tracer
}

func NewHubClient(hub core.HubClient, chainID string, tracer trace.Tracer) core.HubClient {
	return &HubClient{
		HubClient: hub,
		chainID:   chainID,
		tracer:    defaultTracer(tracer),
	}
}

func UnwrapHubClient(hub core.HubClient) (core.HubClient, error) {
	h, ok := hub.(*HubClient)
	if !ok {
		return nil, fmt.Errorf("hub client type is not %T, but %T", &HubClient{}, hub)
	}
	return h.HubClient, nil
}

func (h *HubClient) ExecuteTx(ctx context.Context, contract string, action []byte) (core.RawOutput, error) {
	ctx, span := h.tracer.Start(ctx, "HubClient.ExecuteTx",
		core.WithChainAttributes(h.chainID),
		trace.WithAttributes(
			semconv.ContractKey.String(contract),
			semconv.ActionKey.String(actionName(action)),
		),
	)
	defer span.End()

	out, err := h.HubClient.ExecuteTx(ctx, contract, action)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}
	if hash := gjson.GetBytes(jsonDocument(out), "txhash"); hash.Exists() {
		span.SetAttributes(semconv.TxHashKey.String(hash.String()))
	}
	return out, nil
}

func (h *HubClient) QueryState(ctx context.Context, contract string, query []byte) (core.RawOutput, error) {
	ctx, span := h.tracer.Start(ctx, "HubClient.QueryState",
		core.WithChainAttributes(h.chainID),
		trace.WithAttributes(
			semconv.ContractKey.String(contract),
			semconv.ActionKey.String(actionName(query)),
		),
	)
	defer span.End()

	out, err := h.HubClient.QueryState(ctx, contract, query)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

// actionName returns the single top-level key of a contract message.
func actionName(msg []byte) string {
	name := ""
	gjson.ParseBytes(msg).ForEach(func(key, _ gjson.Result) bool {
		name = key.String()
		return false
	})
	return name
}

func jsonDocument(out []byte) []byte {
	if i := bytes.IndexByte(out, '{'); i > 0 {
		return out[i:]
	}
	return out
}
