package axelar

import (
	"fmt"

	"github.com/cosmos/cosmos-sdk/crypto/hd"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/go-bip39"
)

// KeyExists returns true if there is a specified key in chain's keybase
func (c *Chain) KeyExists(name string) bool {
	k, err := c.Keybase.Key(name)
	if err != nil {
		return false
	}

	return k.Name == name
}

// AddKey creates a key from a new mnemonic and returns the mnemonic and the address.
func (c *Chain) AddKey(name string) (string, string, error) {
	mnemonic, err := CreateMnemonic()
	if err != nil {
		return "", "", err
	}
	addr, err := c.RestoreKey(name, mnemonic)
	if err != nil {
		return "", "", err
	}
	return mnemonic, addr, nil
}

// RestoreKey imports the key derived from mnemonic and returns its address.
func (c *Chain) RestoreKey(name, mnemonic string) (string, error) {
	if c.KeyExists(name) {
		return "", errKeyExists(name)
	}
	record, err := c.Keybase.NewAccount(name, mnemonic, "", hd.CreateHDPath(sdk.CoinType, 0, 0).String(), hd.Secp256k1)
	if err != nil {
		return "", err
	}
	addr, err := record.GetAddress()
	if err != nil {
		return "", err
	}
	return c.encoding.InterfaceRegistry.SigningContext().AddressCodec().BytesToString(addr)
}

// ShowAddress returns the bech32 address of the key.
func (c *Chain) ShowAddress(name string) (string, error) {
	if !c.KeyExists(name) {
		return "", errKeyDoesntExist(name)
	}
	record, err := c.Keybase.Key(name)
	if err != nil {
		return "", err
	}
	addr, err := record.GetAddress()
	if err != nil {
		return "", err
	}
	return c.encoding.InterfaceRegistry.SigningContext().AddressCodec().BytesToString(addr)
}

// CreateMnemonic creates a new mnemonic
func CreateMnemonic() (string, error) {
	entropySeed, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	mnemonic, err := bip39.NewMnemonic(entropySeed)
	if err != nil {
		return "", err
	}
	return mnemonic, nil
}

func errKeyExists(name string) error {
	return fmt.Errorf("a key with name %s already exists", name)
}

func errKeyDoesntExist(name string) error {
	return fmt.Errorf("a key with name %s doesn't exist", name)
}
