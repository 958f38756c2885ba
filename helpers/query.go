package helpers

import (
	"context"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
)

// QueryProof is a helper function for querying the proof of a multisig session once.
// The returned proof is nil while the session has not completed.
func QueryProof(ctx context.Context, hub core.HubClient, prover, multisigSessionID string) (core.Proof, core.RawOutput, error) {
	query, err := core.ProofQuery(multisigSessionID)
	if err != nil {
		return nil, nil, err
	}
	out, err := hub.QueryState(ctx, prover, query)
	if err != nil {
		return nil, nil, err
	}
	proof, ok := core.DecodeProof(out)
	if !ok {
		return nil, out, nil
	}
	return proof, out, nil
}
