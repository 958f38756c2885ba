package core_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubMessage(t *testing.T) {
	transfer := core.InterchainTransfer{
		TokenID:            common.HexToHash(testXRPTokenID),
		SourceAddress:      []byte{0x01, 0x02, 0x03},
		DestinationAddress: common.HexToAddress(testEVMRecipient).Bytes(),
		Amount:             big.NewInt(1_000_000_000_000),
		Data:               nil,
	}
	bz, err := core.EncodeHubMessage("xrpl-evm-sidechain", transfer)
	require.NoError(t, err)

	// the outer word is the send-to-hub message type
	assert.Equal(t, big.NewInt(3), new(big.Int).SetBytes(bz[:32]))

	chain, got, err := core.DecodeHubMessage(bz)
	require.NoError(t, err)
	assert.Equal(t, "xrpl-evm-sidechain", chain)
	assert.Equal(t, transfer.TokenID, got.TokenID)
	assert.Equal(t, transfer.SourceAddress, got.SourceAddress)
	assert.Equal(t, transfer.DestinationAddress, got.DestinationAddress)
	assert.Equal(t, 0, transfer.Amount.Cmp(got.Amount))
	assert.Empty(t, got.Data)
}

func TestDecodeHubMessageRejectsGarbage(t *testing.T) {
	_, _, err := core.DecodeHubMessage([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestITSCommandID(t *testing.T) {
	want := crypto.Keccak256Hash([]byte("axelarnet_0xhub-1"))
	assert.Equal(t, [32]byte(want), core.ITSCommandID("axelarnet", "0xhub-1"))
	assert.NotEqual(t, core.ITSCommandID("axelarnet", "0xhub-1"), core.ITSCommandID("axelarnet", "0xhub-2"))
}
