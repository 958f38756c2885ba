package core

import (
	"github.com/tidwall/gjson"
)

// Proof is a completed multisig proof. Its concrete type selects the submission path.
type Proof interface {
	isProof()
}

// XRPLProof is a signed XRPL transaction ready for submission.
type XRPLProof struct {
	UnsignedTxHash string
	TxBlob         string
}

// EVMProof is gateway calldata approving the message on the EVM sidechain.
type EVMProof struct {
	ExecuteData string
}

func (*XRPLProof) isProof() {}
func (*EVMProof) isProof()  {}

// DecodeProof discriminates a prover response by shape.
// `{data:{status:"completed", tx_blob}}` is an XRPL proof and
// `{data:{status:{completed:{execute_data}}}}` is an EVM proof.
func DecodeProof(o RawOutput) (Proof, bool) {
	if !gjson.ValidBytes(o) {
		return nil, false
	}
	status := gjson.GetBytes(o, "data.status")
	switch {
	case status.Type == gjson.String:
		blob := gjson.GetBytes(o, "data.tx_blob")
		if status.Str != "completed" || blob.Type != gjson.String || blob.Str == "" {
			return nil, false
		}
		return &XRPLProof{
			UnsignedTxHash: gjson.GetBytes(o, "data.unsigned_tx_hash").String(),
			TxBlob:         blob.Str,
		}, true
	case status.IsObject():
		data := status.Get("completed.execute_data")
		if data.Type != gjson.String || data.Str == "" {
			return nil, false
		}
		return &EVMProof{ExecuteData: data.Str}, true
	default:
		return nil, false
	}
}

func ClassifyProof(o RawOutput) Outcome[Proof] {
	if p, ok := DecodeProof(o); ok {
		return Success(p)
	}
	return Pending[Proof]("proof is not completed yet")
}
