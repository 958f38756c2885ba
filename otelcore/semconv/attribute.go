package semconv

import (
	"go.opentelemetry.io/otel/attribute"
)

const (
	// ChainIDKey represents the chain ID.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "axelarnet", "xrpl", "xrpl-evm-sidechain"
	ChainIDKey = attribute.Key("chain_id")

	// ContractKey represents the address of a hub contract.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "axelar1k8w6ayqdxm3cq6k3pqqnnxnf8lzjmy5ahrm7ckgt6p7tzhr2gm3qfv6wq8"
	ContractKey = attribute.Key("contract")

	// ActionKey represents the name of a contract action or query.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "verify_messages", "construct_proof", "proof"
	ActionKey = attribute.Key("action")

	// TxHashKey represents the transaction hash.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "A829D898DF92C54346408380BA7D0CDE557B2425593F29579D87388DAA64430A"
	TxHashKey = attribute.Key("tx_hash")

	// EngineResultKey represents the engine result of an XRPL submission.
	//
	// Type: string
	// RequirementLevel: Recommended
	// Stability: Development
	// Examples: "tesSUCCESS", "tefPAST_SEQ"
	EngineResultKey = attribute.Key("engine_result")
)
