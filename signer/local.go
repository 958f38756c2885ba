package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/utils"
)

// DefaultPrivateKeyEnv holds the hex private key of the sidechain relaying wallet.
const DefaultPrivateKeyEnv = "EVM_SIDECHAIN_PRIVATE_KEY"

// EnvKeyConfig builds a LocalSigner from a private key read from the environment.
type EnvKeyConfig struct {
	Env string `json:"env" yaml:"env"`
}

var _ SignerConfig = EnvKeyConfig{}

func DefaultEnvKeyConfig() EnvKeyConfig {
	return EnvKeyConfig{Env: DefaultPrivateKeyEnv}
}

func (c EnvKeyConfig) Validate() error {
	if strings.TrimSpace(c.Env) == "" {
		return fmt.Errorf("config attribute \"env\" is empty")
	}
	return nil
}

func (c EnvKeyConfig) Build() (Signer, error) {
	key, ok := os.LookupEnv(c.Env)
	if !ok || key == "" {
		return nil, errors.Newf("environment variable %s is not set", c.Env)
	}
	return NewLocalSigner(key)
}

// LocalSigner signs digests with an in-memory secp256k1 key.
type LocalSigner struct {
	key *ecdsa.PrivateKey
}

var _ Signer = (*LocalSigner)(nil)

func NewLocalSigner(hexKey string) (*LocalSigner, error) {
	key, err := crypto.HexToECDSA(utils.Remove0x(strings.TrimSpace(hexKey)))
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	return &LocalSigner{key: key}, nil
}

// Sign returns a 65-byte [R || S || V] signature of digest.
func (s *LocalSigner) Sign(_ context.Context, digest []byte) ([]byte, error) {
	return crypto.Sign(digest, s.key)
}

// GetPublicKey returns the uncompressed public key.
func (s *LocalSigner) GetPublicKey(_ context.Context) ([]byte, error) {
	return crypto.FromECDSAPub(&s.key.PublicKey), nil
}
