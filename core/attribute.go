package core

import (
	"go.opentelemetry.io/otel/attribute"
)

const (
	AttributeKeyChainID          = attribute.Key("chain_id")
	AttributeKeySourceChain      = attribute.Key("source_chain")
	AttributeKeyDestinationChain = attribute.Key("destination_chain")
	AttributeKeyMessageID        = attribute.Key("message_id")
	AttributeKeyRunID            = attribute.Key("run_id")
	AttributeKeyOrigin           = attribute.Key("origin")
	AttributeKeyStage            = attribute.Key("stage")
	AttributeKeyOutcome          = attribute.Key("outcome")
	AttributeKeyPackage          = attribute.Key("package")
)

// AttributeGroup prefixes the given key to all attributes.
//
// For example, if the key is "foo" and the key of an attribute is "bar", the new key will be "foo.bar".
func AttributeGroup(key string, attributes ...attribute.KeyValue) []attribute.KeyValue {
	newAttrs := make([]attribute.KeyValue, 0, len(attributes))
	for _, attr := range attributes {
		newAttrs = append(newAttrs, attribute.KeyValue{
			Key:   attribute.Key(key + "." + string(attr.Key)),
			Value: attr.Value,
		})

	}
	return newAttrs
}
