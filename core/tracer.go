package core

import (
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("github.com/hyperledger-labs/xrpl-amplifier-relayer/core")
)

// WithRunAttributes sets the identity of a relay run to the span.
func WithRunAttributes(run *RelayRun) trace.SpanStartOption {
	return trace.WithAttributes(AttributeGroup("run",
		AttributeKeyRunID.String(run.RunID),
		AttributeKeyMessageID.String(run.MessageID),
		AttributeKeyOrigin.String(string(run.Origin)),
		AttributeKeySourceChain.String(run.SourceChain),
		AttributeKeyDestinationChain.String(run.DestinationChain),
	)...)
}

// WithChainAttributes sets the chain ID to the span.
func WithChainAttributes(chainID string) trace.SpanStartOption {
	return trace.WithAttributes(AttributeKeyChainID.String(chainID))
}

// withPackage adds the package name of the function/method `v`
func withPackage(v any) trace.SpanStartOption {
	return trace.WithAttributes(AttributeKeyPackage.String(getPackageName(v)))
}

func getPackageName(v any) string {
	if v == nil {
		return ""
	}

	rt := reflect.TypeOf(v)
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	return rt.PkgPath()
}
