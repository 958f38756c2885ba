package coreutil

import (
	"fmt"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/core"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/otelcore"
)

// UnwrapHubClient finds the first hub client in the wrapper chain that matches the specified
// type argument.
//
// In the following example, UnwrapHubClient returns the *axelar.Chain behind a traced hub client:
//
//	chain, err := coreutil.UnwrapHubClient[*axelar.Chain](hub)
func UnwrapHubClient[H core.HubClient](h core.HubClient) (H, error) {
	hub := h
	for {
		switch unwrapped := hub.(type) {
		case *otelcore.HubClient:
			hub = unwrapped.HubClient
		case H:
			return unwrapped, nil
		default:
			var zero H
			return zero, fmt.Errorf("failed to unwrap hub client: expected=%T, actual=%T", zero, unwrapped)
		}
	}
}

// UnwrapEVMDestination finds the first EVM destination in the wrapper chain that matches the
// specified type argument.
func UnwrapEVMDestination[D core.EVMDestination](d core.EVMDestination) (D, error) {
	dst := d
	for {
		switch unwrapped := dst.(type) {
		case *otelcore.EVMDestination:
			dst = unwrapped.EVMDestination
		case D:
			return unwrapped, nil
		default:
			var zero D
			return zero, fmt.Errorf("failed to unwrap EVM destination: expected=%T, actual=%T", zero, unwrapped)
		}
	}
}
