package signer

import (
	"context"
)

// SignerConfig builds the signer used for transactions on the EVM sidechain.
type SignerConfig interface {
	Build() (Signer, error)
	Validate() error
}

// Signer produces secp256k1 signatures over 32-byte digests.
type Signer interface {
	// Sign returns a 65-byte [R || S || V] signature with V in {0, 1}.
	Sign(ctx context.Context, digest []byte) (signature []byte, err error)
	// GetPublicKey returns the uncompressed public key.
	GetPublicKey(ctx context.Context) ([]byte, error)
}
