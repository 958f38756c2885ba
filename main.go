package main

import (
	"os"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
