package core

import (
	"encoding/json"
	"math/big"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/cockroachdb/errors"
)

// Origin is the ledger a message was detected on.
type Origin string

const (
	OriginEVM  Origin = "evm"
	OriginXRPL Origin = "xrpl"
)

// CrossChainMessage is a transfer intent detected on a source chain.
// It must not be modified after an ingestor hands it over.
type CrossChainMessage struct {
	Origin             Origin
	TxHash             string
	EventIndex         *uint
	SourceAddress      string
	SourceChainID      string
	DestinationChainID string
	DestinationAddress string
	PayloadHash        string
	Payload            []byte
	Amount             *Amount
}

// Amount is a value moved on the XRP Ledger, either native drops or an issued currency.
type Amount struct {
	Drops  *uint64
	Issued *IssuedAmount
}

type IssuedAmount struct {
	Currency string
	Issuer   string
	Value    string
}

func NewDropsAmount(drops uint64) *Amount {
	return &Amount{Drops: &drops}
}

func NewIssuedAmount(currency, issuer, value string) *Amount {
	return &Amount{Issued: &IssuedAmount{Currency: currency, Issuer: issuer, Value: value}}
}

// MarshalJSON encodes the amount the way the XRPL gateway contract on the hub reads it.
func (a Amount) MarshalJSON() ([]byte, error) {
	switch {
	case a.Drops != nil:
		return json.Marshal(map[string]uint64{"drops": *a.Drops})
	case a.Issued != nil:
		token := map[string]string{
			"issuer":   a.Issued.Issuer,
			"currency": a.Issued.Currency,
		}
		return json.Marshal(map[string][]any{"issued": {token, a.Issued.Value}})
	default:
		return nil, errors.New("empty amount")
	}
}

// TokenSymbol returns the lowercase symbol used to look up the ITS token id.
func (a Amount) TokenSymbol() string {
	if a.Issued != nil {
		return strings.ToLower(a.Issued.Currency)
	}
	return "xrp"
}

// Scaled returns the amount with 18 decimals, as interchain tokens on the EVM sidechain use.
func (a Amount) Scaled() (*big.Int, error) {
	switch {
	case a.Drops != nil:
		// 1 XRP = 10^6 drops
		return sdkmath.NewIntFromUint64(*a.Drops).Mul(sdkmath.NewIntWithDecimal(1, 12)).BigInt(), nil
	case a.Issued != nil:
		dec, err := sdkmath.LegacyNewDecFromStr(a.Issued.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid issued amount %q", a.Issued.Value)
		}
		if dec.IsNegative() {
			return nil, errors.Newf("negative issued amount %q", a.Issued.Value)
		}
		return dec.BigInt(), nil
	default:
		return nil, errors.New("empty amount")
	}
}
