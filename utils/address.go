package utils

import (
	"bytes"
	"crypto/sha256"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

const (
	xrplAccountIDVersion = 0x00
	xrplAccountIDLength  = 20
	xrplChecksumLength   = 4
)

// XRPLAlphabet is the base58 alphabet used by the XRP Ledger.
var XRPLAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

// DecodeXRPLAccountID returns the 20-byte account id of a classic XRPL address.
func DecodeXRPLAccountID(account string) ([]byte, error) {
	raw, err := base58.DecodeAlphabet(account, XRPLAlphabet)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid XRPL account %q", account)
	}
	if len(raw) != 1+xrplAccountIDLength+xrplChecksumLength {
		return nil, errors.Newf("invalid XRPL account %q: unexpected length %d", account, len(raw))
	}
	if raw[0] != xrplAccountIDVersion {
		return nil, errors.Newf("invalid XRPL account %q: unexpected version 0x%02x", account, raw[0])
	}
	body, sum := raw[:len(raw)-xrplChecksumLength], raw[len(raw)-xrplChecksumLength:]
	if !bytes.Equal(sum, xrplChecksum(body)) {
		return nil, errors.Newf("invalid XRPL account %q: checksum mismatch", account)
	}
	return body[1:], nil
}

// EncodeXRPLAccountID encodes a 20-byte account id as a classic XRPL address.
func EncodeXRPLAccountID(accountID []byte) (string, error) {
	if len(accountID) != xrplAccountIDLength {
		return "", errors.Newf("account id must be %d bytes, got %d", xrplAccountIDLength, len(accountID))
	}
	body := append([]byte{xrplAccountIDVersion}, accountID...)
	return base58.EncodeAlphabet(append(body, xrplChecksum(body)...), XRPLAlphabet), nil
}

// XRPLAccountToEVMAddress converts an XRPL account into the EVM address carrying the same account id.
func XRPLAccountToEVMAddress(account string) (string, error) {
	id, err := DecodeXRPLAccountID(account)
	if err != nil {
		return "", err
	}
	return common.BytesToAddress(id).Hex(), nil
}

// EVMAddressToXRPLAccount is the inverse of XRPLAccountToEVMAddress.
func EVMAddressToXRPLAccount(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", errors.Newf("invalid EVM address %q", address)
	}
	return EncodeXRPLAccountID(common.HexToAddress(address).Bytes())
}

func xrplChecksum(body []byte) []byte {
	first := sha256.Sum256(body)
	second := sha256.Sum256(first[:])
	return second[:xrplChecksumLength]
}
