package core

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/utils"
)

// MessageIDFormat selects how a message id is derived from an XRPL transaction hash.
type MessageIDFormat string

const (
	// MessageIDFormatSuffixed yields "0x{lowercase hash}-0".
	MessageIDFormatSuffixed MessageIDFormat = "suffixed"
	// MessageIDFormatPrefixed yields "0x{lowercase hash}".
	MessageIDFormatPrefixed MessageIDFormat = "prefixed"
	// MessageIDFormatRaw uses the hash as reported by the ledger.
	MessageIDFormatRaw MessageIDFormat = "raw"
)

// TxIDEncoding selects how an XRPL transaction id is carried in a user message.
type TxIDEncoding string

const (
	TxIDEncodingBytes TxIDEncoding = "bytes"
	TxIDEncodingHex   TxIDEncoding = "hex"
)

// XRPLIdentity derives hub-side identities of messages sourced on the XRP Ledger.
type XRPLIdentity struct {
	Format   MessageIDFormat
	Encoding TxIDEncoding
}

func DefaultXRPLIdentity() XRPLIdentity {
	return XRPLIdentity{Format: MessageIDFormatSuffixed, Encoding: TxIDEncodingBytes}
}

func (s XRPLIdentity) Validate() error {
	var errs []error
	switch s.Format {
	case MessageIDFormatSuffixed, MessageIDFormatPrefixed, MessageIDFormatRaw:
	default:
		errs = append(errs, fmt.Errorf("unknown message id format %q", s.Format))
	}
	switch s.Encoding {
	case TxIDEncodingBytes, TxIDEncodingHex:
	default:
		errs = append(errs, fmt.Errorf("unknown tx id encoding %q", s.Encoding))
	}
	return errors.Join(errs...)
}

func (s XRPLIdentity) MessageID(txHash string) string {
	switch s.Format {
	case MessageIDFormatRaw:
		return txHash
	case MessageIDFormatPrefixed:
		return utils.Prepend0x(strings.ToLower(txHash))
	default:
		return utils.Prepend0x(strings.ToLower(txHash)) + "-0"
	}
}

// TxID returns the transaction id in the shape the XRPL gateway expects.
func (s XRPLIdentity) TxID(txHash string) (any, error) {
	if s.Encoding == TxIDEncodingHex {
		return strings.ToLower(utils.Remove0x(txHash)), nil
	}
	b, err := utils.DecodeHex(txHash)
	if err != nil {
		return nil, err
	}
	return utils.ByteArray(b), nil
}

// EVMMessageID derives the message id of a log emitted on the EVM sidechain.
func EVMMessageID(txHash string, logIndex uint) string {
	return fmt.Sprintf("%s-%d", txHash, logIndex)
}
