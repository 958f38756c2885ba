package utils

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/crypto"
)

// HashPayload returns the keccak256 digest of payload as uppercase hex without a 0x prefix.
func HashPayload(payload []byte) string {
	return strings.ToUpper(hex.EncodeToString(crypto.Keccak256(payload)))
}

// NormalizeHash canonicalizes a payload hash for lookups.
func NormalizeHash(hashHex string) string {
	return strings.ToUpper(Remove0x(hashHex))
}

func Remove0x(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

func Prepend0x(s string) string {
	return "0x" + Remove0x(s)
}

// DecodeHex decodes s with or without a 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(Remove0x(s))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex string %q", s)
	}
	return b, nil
}

// ByteArray renders b as a list of numbers, the way the hub contracts expect raw bytes in JSON.
func ByteArray(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}
