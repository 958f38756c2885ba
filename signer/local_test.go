package signer

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// well-known hardhat account #0
const testKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestLocalSigner(t *testing.T) {
	s, err := NewLocalSigner(testKey)
	require.NoError(t, err)

	pub, err := s.GetPublicKey(context.TODO())
	require.NoError(t, err)
	pk, err := crypto.UnmarshalPubkey(pub)
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", crypto.PubkeyToAddress(*pk).Hex())

	digest := crypto.Keccak256([]byte("hello"))
	sig, err := s.Sign(context.TODO(), digest)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	recovered, err := crypto.SigToPub(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(*pk), crypto.PubkeyToAddress(*recovered))
}

func TestEnvKeyConfig(t *testing.T) {
	cfg := EnvKeyConfig{Env: "XRLY_TEST_SIGNER_KEY"}
	require.NoError(t, cfg.Validate())

	_, err := cfg.Build()
	assert.Error(t, err)

	t.Setenv("XRLY_TEST_SIGNER_KEY", testKey)
	s, err := cfg.Build()
	require.NoError(t, err)
	assert.NotNil(t, s)

	assert.Error(t, EnvKeyConfig{}.Validate())
}
