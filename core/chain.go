package core

//go:generate mockgen -destination=mock_core_test.go -package=core_test . HubClient,EVMDestination,XRPLDestination,MessageRelayer,RelayListener

import (
	"context"
)

// ITSExecution is a call to `execute` on the interchain token service of the EVM sidechain.
type ITSExecution struct {
	CommandID     [32]byte
	SourceChain   string
	SourceAddress string
	Payload       []byte
}

// EVMDestination is the set of primitives needed to deliver a message to the EVM sidechain.
type EVMDestination interface {
	// SendExecuteData sends the prover's execute data to the gateway and waits for the receipt.
	SendExecuteData(ctx context.Context, executeData []byte) (txHash string, err error)
	// ExecuteITS executes an approved ITS message and waits for the receipt.
	ExecuteITS(ctx context.Context, exec ITSExecution) (txHash string, err error)
}

// XRPLSubmitResult is the outcome of submitting a signed blob to the XRP Ledger.
type XRPLSubmitResult struct {
	Accepted         bool
	EngineResult     string
	TxHash           string
	SignerPublicKeys []string
}

// XRPLDestination is the set of primitives needed to deliver a message to the XRP Ledger.
type XRPLDestination interface {
	SubmitTxBlob(ctx context.Context, txBlob string) (*XRPLSubmitResult, error)
}

// MessageDispatcher accepts messages detected by ingestors.
type MessageDispatcher interface {
	Dispatch(ctx context.Context, msg *CrossChainMessage) error
}

// Runner is a long-running component of the relay service.
type Runner interface {
	Name() string
	Run(ctx context.Context) error
}
