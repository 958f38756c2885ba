package evm

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	eventContractCall = "ContractCall"
	methodExecute     = "execute"
)

const gatewayABIJSON = `[
  {
    "anonymous": false,
    "type": "event",
    "name": "ContractCall",
    "inputs": [
      {"indexed": true, "name": "sender", "type": "address"},
      {"indexed": false, "name": "destinationChain", "type": "string"},
      {"indexed": false, "name": "destinationContractAddress", "type": "string"},
      {"indexed": true, "name": "payloadHash", "type": "bytes32"},
      {"indexed": false, "name": "payload", "type": "bytes"}
    ]
  }
]`

const itsABIJSON = `[
  {
    "type": "function",
    "name": "execute",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "commandId", "type": "bytes32"},
      {"name": "sourceChain", "type": "string"},
      {"name": "sourceAddress", "type": "string"},
      {"name": "payload", "type": "bytes"}
    ],
    "outputs": []
  }
]`

var (
	gatewayABI = mustParseABI(gatewayABIJSON)
	itsABI     = mustParseABI(itsABIJSON)

	contractCallTopic = gatewayABI.Events[eventContractCall].ID
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ContractCallEvent is a ContractCall log emitted by the sidechain gateway.
type ContractCallEvent struct {
	Sender                     common.Address
	DestinationChain           string
	DestinationContractAddress string
	PayloadHash                [32]byte
	Payload                    []byte
	Raw                        types.Log
}
