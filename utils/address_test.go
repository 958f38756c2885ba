package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/utils"
)

func TestXRPLAccountRoundTrip(t *testing.T) {
	accounts := []string{
		"rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		"rrrrrrrrrrrrrrrrrrrrrhoLvTp",
		"rrrrrrrrrrrrrrrrrrrrBZbvji",
	}
	for _, account := range accounts {
		t.Run(account, func(t *testing.T) {
			address, err := utils.XRPLAccountToEVMAddress(account)
			require.NoError(t, err)
			back, err := utils.EVMAddressToXRPLAccount(address)
			require.NoError(t, err)
			assert.Equal(t, account, back)
		})
	}
}

func TestXRPLAccountToEVMAddress(t *testing.T) {
	address, err := utils.XRPLAccountToEVMAddress("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh")
	require.NoError(t, err)
	assert.Equal(t, "0xb5f762798a53d543a014caf8b297cff8f2f937e8", strings.ToLower(address))

	address, err = utils.XRPLAccountToEVMAddress("rrrrrrrrrrrrrrrrrrrrBZbvji")
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000000001", address)
}

func TestInvalidAddresses(t *testing.T) {
	_, err := utils.DecodeXRPLAccountID("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTi")
	assert.Error(t, err, "checksum must be verified")

	_, err = utils.DecodeXRPLAccountID("0xb5f762798a53d543a014caf8b297cff8f2f937e8")
	assert.Error(t, err)

	_, err = utils.EVMAddressToXRPLAccount("not-an-address")
	assert.Error(t, err)

	_, err = utils.EncodeXRPLAccountID([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestHashPayload(t *testing.T) {
	assert.Equal(t,
		"C5D2460186F7233C927E7DB2DCC703C0E500B653CA82273B7BFAD8045D85A470",
		utils.HashPayload(nil),
	)
	assert.Equal(t, utils.HashPayload([]byte{0x12, 0x12}), utils.HashPayload([]byte{0x12, 0x12}))
	assert.NotEqual(t, utils.HashPayload([]byte{0x12, 0x12}), utils.HashPayload([]byte{0x12, 0x13}))
	assert.Equal(t, "ABCD", utils.NormalizeHash("0xabcd"))
}

func TestDecodeHex(t *testing.T) {
	b, err := utils.DecodeHex("0x1212")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x12}, b)

	_, err = utils.DecodeHex("zz")
	assert.Error(t, err)

	assert.Equal(t, []int{18, 255}, utils.ByteArray([]byte{0x12, 0xff}))
}
