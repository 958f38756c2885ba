package core

import (
	"encoding/hex"
	"encoding/json"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/utils"
)

// CCID identifies a message within the hub.
type CCID struct {
	SourceChain string `json:"source_chain"`
	MessageID   string `json:"message_id"`
}

// GatewayMessage is a message as understood by the amplifier gateway contracts.
type GatewayMessage struct {
	CCID               CCID   `json:"cc_id"`
	SourceAddress      string `json:"source_address"`
	DestinationChain   string `json:"destination_chain"`
	DestinationAddress string `json:"destination_address"`
	PayloadHash        string `json:"payload_hash"`
}

// XRPLUserMessage is a payment to the XRPL gateway account as understood by the XRPL gateway contract.
type XRPLUserMessage struct {
	TxID               any     `json:"tx_id"`
	SourceAddress      []int   `json:"source_address"`
	DestinationChain   string  `json:"destination_chain"`
	DestinationAddress string  `json:"destination_address"`
	PayloadHash        string  `json:"payload_hash"`
	Amount             *Amount `json:"amount"`
}

type xrplMessage struct {
	UserMessage   *XRPLUserMessage `json:"user_message,omitempty"`
	ProverMessage string           `json:"prover_message,omitempty"`
}

type incomingMessage struct {
	Payload string      `json:"payload"`
	Message xrplMessage `json:"message"`
}

type signerPublicKey struct {
	ECDSA string `json:"ecdsa"`
}

func verifyMessagesAction(msgs ...GatewayMessage) ([]byte, error) {
	return json.Marshal(map[string]any{"verify_messages": msgs})
}

func routeMessagesAction(msgs ...GatewayMessage) ([]byte, error) {
	return json.Marshal(map[string]any{"route_messages": msgs})
}

func verifyXRPLUserMessageAction(um *XRPLUserMessage) ([]byte, error) {
	return json.Marshal(map[string]any{
		"verify_messages": []xrplMessage{{UserMessage: um}},
	})
}

func routeXRPLIncomingMessageAction(um *XRPLUserMessage, payload []byte) ([]byte, error) {
	return json.Marshal(map[string]any{
		"route_incoming_messages": []incomingMessage{{
			Payload: hex.EncodeToString(payload),
			Message: xrplMessage{UserMessage: um},
		}},
	})
}

func verifyProverMessageAction(txHash string) ([]byte, error) {
	return json.Marshal(map[string]any{
		"verify_messages": []xrplMessage{{ProverMessage: txHash}},
	})
}

func executeAction(ccID CCID, payloadHex string) ([]byte, error) {
	return json.Marshal(map[string]any{
		"execute": map[string]any{
			"cc_id":   ccID,
			"payload": utils.Remove0x(payloadHex),
		},
	})
}

func constructXRPLProofAction(ccID CCID, payloadHex string) ([]byte, error) {
	return json.Marshal(map[string]any{
		"construct_proof": map[string]any{
			"message_id": ccID,
			"payload":    utils.Remove0x(payloadHex),
		},
	})
}

func constructEVMProofAction(ccIDs ...CCID) ([]byte, error) {
	return json.Marshal(map[string]any{"construct_proof": ccIDs})
}

// ProofQuery builds the prover query for a multisig session.
func ProofQuery(multisigSessionID string) ([]byte, error) {
	return json.Marshal(map[string]any{
		"proof": map[string]string{"multisig_session_id": multisigSessionID},
	})
}

func confirmTxStatusAction(multisigSessionID, signedTxHash string, signerPublicKeys []string) ([]byte, error) {
	keys := make([]signerPublicKey, len(signerPublicKeys))
	for i, k := range signerPublicKeys {
		keys[i] = signerPublicKey{ECDSA: k}
	}
	return json.Marshal(map[string]any{
		"confirm_tx_status": map[string]any{
			"multisig_session_id": multisigSessionID,
			"signed_tx_hash":      signedTxHash,
			"signer_public_keys":  keys,
		},
	})
}
