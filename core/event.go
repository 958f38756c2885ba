package core

import (
	"encoding/json"
)

const (
	EventTypeContractCalled         = "wasm-contract_called"
	EventTypeProofUnderConstruction = "wasm-proof_under_construction"
	AttributeKeyMultisigSessionID   = "multisig_session_id"
	attributeKeySourceChain         = "source_chain"
	attributeKeySourceAddress       = "source_address"
	attributeKeyMessageID           = "message_id"
	attributeKeyPayload             = "payload"
	attributeKeyPayloadHash         = "payload_hash"
	attributeKeyDestinationChain    = "destination_chain"
	attributeKeyDestinationAddress  = "destination_address"
)

type EventAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// LoggedEvent is an event as emitted by a hub transaction.
type LoggedEvent struct {
	Type       string           `json:"type"`
	Attributes []EventAttribute `json:"attributes"`
}

// Attribute returns the value of the first attribute named key.
func (e LoggedEvent) Attribute(key string) (string, bool) {
	for _, attr := range e.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// UnquotedAttribute returns the attribute value with JSON string quoting removed, if any.
func (e LoggedEvent) UnquotedAttribute(key string) (string, bool) {
	v, ok := e.Attribute(key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal([]byte(v), &s); err == nil {
		return s, true
	}
	return v, true
}

type UnfurledEvent struct {
	SourceChain        string `json:"source_chain"`
	SourceAddress      string `json:"source_address"`
	MessageID          string `json:"message_id"`
	Payload            string `json:"payload"`
	PayloadHash        string `json:"payload_hash"`
	DestinationChain   string `json:"destination_chain"`
	DestinationAddress string `json:"destination_address"`
}

// Unfurl converts the attribute list of a contract_called event into a typed record.
// Unknown attributes are ignored; every field must end up non-empty.
func Unfurl(event LoggedEvent) (*UnfurledEvent, error) {
	var out UnfurledEvent
	for _, attr := range event.Attributes {
		switch attr.Key {
		case attributeKeyDestinationAddress:
			out.DestinationAddress = attr.Value
		case attributeKeyDestinationChain:
			out.DestinationChain = attr.Value
		case attributeKeyMessageID:
			out.MessageID = attr.Value
		case attributeKeyPayload:
			out.Payload = attr.Value
		case attributeKeyPayloadHash:
			out.PayloadHash = attr.Value
		case attributeKeySourceAddress:
			out.SourceAddress = attr.Value
		case attributeKeySourceChain:
			out.SourceChain = attr.Value
		}
	}

	fields := []struct {
		key   string
		value string
	}{
		{attributeKeySourceChain, out.SourceChain},
		{attributeKeySourceAddress, out.SourceAddress},
		{attributeKeyMessageID, out.MessageID},
		{attributeKeyPayload, out.Payload},
		{attributeKeyPayloadHash, out.PayloadHash},
		{attributeKeyDestinationChain, out.DestinationChain},
		{attributeKeyDestinationAddress, out.DestinationAddress},
	}
	for _, f := range fields {
		if f.value == "" {
			return nil, &MissingAttributeError{Field: f.key}
		}
	}
	return &out, nil
}
