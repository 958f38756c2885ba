package core

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	itsMessageTypeInterchainTransfer = 0
	itsMessageTypeSendToHub          = 3
)

var (
	uint256Type = mustNewType("uint256")
	bytes32Type = mustNewType("bytes32")
	bytesType   = mustNewType("bytes")
	stringType  = mustNewType("string")

	interchainTransferArgs = abi.Arguments{
		{Name: "messageType", Type: uint256Type},
		{Name: "tokenId", Type: bytes32Type},
		{Name: "sourceAddress", Type: bytesType},
		{Name: "destinationAddress", Type: bytesType},
		{Name: "amount", Type: uint256Type},
		{Name: "data", Type: bytesType},
	}
	hubMessageArgs = abi.Arguments{
		{Name: "messageType", Type: uint256Type},
		{Name: "destinationChain", Type: stringType},
		{Name: "payload", Type: bytesType},
	}
)

func mustNewType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// InterchainTransfer is the ITS message moving tokens between chains.
type InterchainTransfer struct {
	TokenID            [32]byte
	SourceAddress      []byte
	DestinationAddress []byte
	Amount             *big.Int
	Data               []byte
}

// EncodeHubMessage wraps an interchain transfer for delivery to destinationChain through the ITS hub.
func EncodeHubMessage(destinationChain string, transfer InterchainTransfer) ([]byte, error) {
	inner, err := interchainTransferArgs.Pack(
		big.NewInt(itsMessageTypeInterchainTransfer),
		transfer.TokenID,
		transfer.SourceAddress,
		transfer.DestinationAddress,
		transfer.Amount,
		transfer.Data,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode interchain transfer")
	}
	out, err := hubMessageArgs.Pack(big.NewInt(itsMessageTypeSendToHub), destinationChain, inner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode hub message")
	}
	return out, nil
}

// DecodeHubMessage is the inverse of EncodeHubMessage.
func DecodeHubMessage(b []byte) (string, *InterchainTransfer, error) {
	outer, err := hubMessageArgs.Unpack(b)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to decode hub message")
	}
	if outer[0].(*big.Int).Int64() != itsMessageTypeSendToHub {
		return "", nil, errors.Newf("unexpected hub message type %v", outer[0])
	}
	fields, err := interchainTransferArgs.Unpack(outer[2].([]byte))
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to decode interchain transfer")
	}
	if fields[0].(*big.Int).Int64() != itsMessageTypeInterchainTransfer {
		return "", nil, errors.Newf("unexpected ITS message type %v", fields[0])
	}
	return outer[1].(string), &InterchainTransfer{
		TokenID:            fields[1].([32]byte),
		SourceAddress:      fields[2].([]byte),
		DestinationAddress: fields[3].([]byte),
		Amount:             fields[4].(*big.Int),
		Data:               fields[5].([]byte),
	}, nil
}

// ITSCommandID derives the command id the destination ITS uses to deduplicate executions.
func ITSCommandID(sourceChain, messageID string) [32]byte {
	return crypto.Keccak256Hash([]byte(sourceChain + "_" + messageID))
}
