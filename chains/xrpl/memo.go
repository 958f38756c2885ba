package xrpl

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/utils"
	"github.com/tidwall/gjson"
)

const (
	memoDestinationAddress = "destination_address"
	memoDestinationChain   = "destination_chain"
	memoPayloadHash        = "payload_hash"

	// SourceTag marks payments sent by this relayer's tooling.
	SourceTag = 89898989

	resultSuccess = "tesSUCCESS"
)

var (
	memoTypeDestinationAddress = encodeMemoType(memoDestinationAddress)
	memoTypeDestinationChain   = encodeMemoType(memoDestinationChain)
	memoTypePayloadHash        = encodeMemoType(memoPayloadHash)
)

func encodeMemoType(tag string) string {
	return strings.ToUpper(hex.EncodeToString([]byte(tag)))
}

// Payment is a payment to the XRPL gateway account that carries a cross-chain call.
type Payment struct {
	TxHash             string
	Account            string
	DestinationAddress string
	DestinationChain   string
	PayloadHash        string
	Amount             *core.Amount
}

// Message builds the message relayed for the payment once its payload is known.
func (p *Payment) Message(sourceChain string, payload []byte) *core.CrossChainMessage {
	return &core.CrossChainMessage{
		Origin:             core.OriginXRPL,
		TxHash:             p.TxHash,
		SourceAddress:      p.Account,
		SourceChainID:      sourceChain,
		DestinationChainID: p.DestinationChain,
		DestinationAddress: p.DestinationAddress,
		PayloadHash:        p.PayloadHash,
		Payload:            payload,
		Amount:             p.Amount,
	}
}

func malformed(format string, args ...any) error {
	return errors.Wrapf(core.ErrMalformedSourceTx, format, args...)
}

// ParsePayment extracts a Payment from a transaction stream message.
// Transactions that are not a validated, successful payment to gateway with
// the three routing memos fail with core.ErrMalformedSourceTx.
func ParsePayment(tx gjson.Result, gateway, evmChainID string) (*Payment, error) {
	txJSON := tx.Get("tx_json")
	if !txJSON.Exists() {
		txJSON = tx.Get("transaction")
	}
	if !txJSON.IsObject() {
		return nil, malformed("message carries no transaction")
	}
	if v := tx.Get("validated"); v.Exists() && !v.Bool() {
		return nil, malformed("transaction is not validated")
	}
	if r := tx.Get("engine_result"); r.Exists() && r.String() != resultSuccess {
		return nil, malformed("transaction failed with %s", r.String())
	}
	if t := txJSON.Get("TransactionType").String(); t != "Payment" {
		return nil, malformed("transaction type is %q", t)
	}
	memos := txJSON.Get("Memos").Array()
	if len(memos) == 0 {
		return nil, malformed("payment has no memos")
	}
	if dest := txJSON.Get("Destination").String(); dest != gateway {
		return nil, malformed("payment destination %s is not the gateway", dest)
	}

	p := &Payment{Account: txJSON.Get("Account").String()}
	var destinationChainHex string
	for _, m := range memos {
		memoType := m.Get("Memo.MemoType").String()
		memoData := m.Get("Memo.MemoData").String()
		if memoType == "" || memoData == "" {
			continue
		}
		switch strings.ToUpper(memoType) {
		case memoTypeDestinationAddress:
			p.DestinationAddress = memoData
		case memoTypeDestinationChain:
			destinationChainHex = memoData
		case memoTypePayloadHash:
			p.PayloadHash = memoData
		}
	}

	var missing []string
	if p.DestinationAddress == "" {
		missing = append(missing, memoDestinationAddress)
	}
	if destinationChainHex == "" {
		missing = append(missing, memoDestinationChain)
	}
	if p.PayloadHash == "" {
		missing = append(missing, memoPayloadHash)
	}
	if len(missing) > 0 {
		return nil, malformed("payment lacks memos %s", strings.Join(missing, ", "))
	}

	chain, err := utils.DecodeHex(destinationChainHex)
	if err != nil {
		return nil, malformed("destination_chain memo is not hex")
	}
	p.DestinationChain = string(chain)
	if p.DestinationChain != evmChainID {
		return nil, malformed("destination chain %q is not %q", p.DestinationChain, evmChainID)
	}

	p.TxHash = tx.Get("hash").String()
	if p.TxHash == "" {
		p.TxHash = txJSON.Get("hash").String()
	}
	if p.TxHash == "" {
		return nil, malformed("transaction has no hash")
	}

	amount := txJSON.Get("DeliverMax")
	if !amount.Exists() {
		amount = txJSON.Get("Amount")
	}
	if p.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	return p, nil
}

func parseAmount(v gjson.Result) (*core.Amount, error) {
	switch {
	case v.Type == gjson.String:
		drops, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return nil, malformed("invalid drops amount %q", v.String())
		}
		return core.NewDropsAmount(drops), nil
	case v.IsObject():
		if v.Get("mpt_issuance_id").Exists() {
			return nil, malformed("MPT amounts are not supported")
		}
		currency, issuer, value := v.Get("currency").String(), v.Get("issuer").String(), v.Get("value").String()
		if currency == "" || issuer == "" || value == "" {
			return nil, malformed("incomplete issued amount %s", v.Raw)
		}
		return core.NewIssuedAmount(currency, issuer, value), nil
	default:
		return nil, malformed("payment has no amount")
	}
}

// Memos returns the memo entries that route a payment to destinationAddress on destinationChain.
func Memos(destinationAddress, destinationChain, payloadHash string) []map[string]any {
	memo := func(memoType, data string) map[string]any {
		return map[string]any{"Memo": map[string]string{"MemoType": memoType, "MemoData": strings.ToUpper(data)}}
	}
	return []map[string]any{
		memo(memoTypeDestinationAddress, utils.Remove0x(destinationAddress)),
		memo(memoTypeDestinationChain, hex.EncodeToString([]byte(destinationChain))),
		memo(memoTypePayloadHash, utils.Remove0x(payloadHash)),
	}
}

// NewPayment builds the tx_json of a payment of drops to the gateway carrying memos.
func NewPayment(account, gateway string, drops uint64, memos []map[string]any) map[string]any {
	return map[string]any{
		"TransactionType": "Payment",
		"Account":         account,
		"Destination":     gateway,
		"Amount":          strconv.FormatUint(drops, 10),
		"SourceTag":       SourceTag,
		"Memos":           memos,
	}
}
