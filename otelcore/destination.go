package otelcore

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/otelcore/semconv"
)

type EVMDestination struct {
	core.EVMDestination
	chainID string
	tracer  trace.Tracer
}

func NewEVMDestination(dst core.EVMDestination, chainID string, tracer trace.Tracer) core.EVMDestination {
	return &EVMDestination{
		EVMDestination: dst,
		chainID:        chainID,
		tracer:         defaultTracer(tracer),
	}
}

func UnwrapEVMDestination(dst core.EVMDestination) (core.EVMDestination, error) {
	d, ok := dst.(*EVMDestination)
	if !ok {
		return nil, fmt.Errorf("destination type is not %T, but %T", &EVMDestination{}, dst)
	}
	return d.EVMDestination, nil
}

func (d *EVMDestination) SendExecuteData(ctx context.Context, executeData []byte) (string, error) {
	ctx, span := d.tracer.Start(ctx, "EVMDestination.SendExecuteData",
		core.WithChainAttributes(d.chainID),
	)
	defer span.End()

	txHash, err := d.EVMDestination.SendExecuteData(ctx, executeData)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return txHash, err
	}
	span.SetAttributes(semconv.TxHashKey.String(txHash))
	return txHash, nil
}

func (d *EVMDestination) ExecuteITS(ctx context.Context, exec core.ITSExecution) (string, error) {
	ctx, span := d.tracer.Start(ctx, "EVMDestination.ExecuteITS",
		core.WithChainAttributes(d.chainID),
		trace.WithAttributes(core.AttributeKeySourceChain.String(exec.SourceChain)),
	)
	defer span.End()

	txHash, err := d.EVMDestination.ExecuteITS(ctx, exec)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return txHash, err
	}
	span.SetAttributes(semconv.TxHashKey.String(txHash))
	return txHash, nil
}

type XRPLDestination struct {
	core.XRPLDestination
	chainID string
	tracer  trace.Tracer
}

func NewXRPLDestination(dst core.XRPLDestination, chainID string, tracer trace.Tracer) core.XRPLDestination {
	return &XRPLDestination{
		XRPLDestination: dst,
		chainID:         chainID,
		tracer:          defaultTracer(tracer),
	}
}

func UnwrapXRPLDestination(dst core.XRPLDestination) (core.XRPLDestination, error) {
	d, ok := dst.(*XRPLDestination)
	if !ok {
		return nil, fmt.Errorf("destination type is not %T, but %T", &XRPLDestination{}, dst)
	}
	return d.XRPLDestination, nil
}

func (d *XRPLDestination) SubmitTxBlob(ctx context.Context, txBlob string) (*core.XRPLSubmitResult, error) {
	ctx, span := d.tracer.Start(ctx, "XRPLDestination.SubmitTxBlob",
		core.WithChainAttributes(d.chainID),
	)
	defer span.End()

	res, err := d.XRPLDestination.SubmitTxBlob(ctx, txBlob)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		semconv.TxHashKey.String(res.TxHash),
		semconv.EngineResultKey.String(res.EngineResult),
	)
	return res, nil
}
