package hash

import (
	"encoding/json"
	"testing"

	"delegatesigner/internal/eip712"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mailTypedData() eip712.TypedData {
	return eip712.TypedData{
		Types: eip712.Types{
			eip712.DomainTypeName: eip712.DomainFields(),
			"Person": {
				{Name: "name", Type: "string"},
				{Name: "wallet", Type: "address"},
			},
			"Mail": {
				{Name: "from", Type: "Person"},
				{Name: "to", Type: "Person"},
				{Name: "contents", Type: "string"},
			},
		},
		PrimaryType: "Mail",
		Domain: eip712.Domain{
			Name:              "Ether Mail",
			Version:           "1",
			ChainID:           uint256.NewInt(1),
			VerifyingContract: ethcommon.HexToAddress("0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC"),
		},
		Message: eip712.Message{
			"from": eip712.Struct(eip712.Message{
				"name":   eip712.String("Cow"),
				"wallet": eip712.Address(ethcommon.HexToAddress("0xCD2a3d9F938E13CD947Ec05AbC7FE734Df8DD826")),
			}),
			"to": eip712.Struct(eip712.Message{
				"name":   eip712.String("Bob"),
				"wallet": eip712.Address(ethcommon.HexToAddress("0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB")),
			}),
			"contents": eip712.String("Hello, Bob!"),
		},
	}
}

func delegateSignerTypedData() eip712.TypedData {
	return eip712.TypedData{
		Types: eip712.Types{
			eip712.DomainTypeName: eip712.DomainFields(),
			"DelegateSigner": {
				{Name: "delegateContract", Type: "address"},
				{Name: "brokerId", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "timestamp", Type: "uint64"},
				{Name: "registrationNonce", Type: "uint256"},
				{Name: "txHash", Type: "bytes32"},
			},
		},
		PrimaryType: "DelegateSigner",
		Domain: eip712.Domain{
			Name:              "Orderly",
			Version:           "1",
			ChainID:           uint256.NewInt(80094),
			VerifyingContract: ethcommon.HexToAddress("0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC"),
		},
		Message: eip712.Message{
			"delegateContract":  eip712.Address(ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")),
			"brokerId":          eip712.String("woofi_pro"),
			"chainId":           eip712.Uint64(80094),
			"timestamp":         eip712.Uint64(1700000000000),
			"registrationNonce": eip712.Uint64(42),
			"txHash":            eip712.Bytes32(ethcommon.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222")),
		},
	}
}

func TestReferenceDigestMatchesMailVector(t *testing.T) {
	digest, err := ReferenceDigest(mailTypedData())
	require.NoError(t, err)
	assert.Equal(t, ethcommon.HexToHash("0xbe609aee343fb3c4b28e1df9e632fca64fcfaede20f02e86244efddf30957bd2"), digest)
}

func TestCrossCheck(t *testing.T) {
	max := new(uint256.Int).SetAllOne()

	tests := map[string]eip712.TypedData{
		"mail":            mailTypedData(),
		"delegate signer": delegateSignerTypedData(),
		"every atomic kind": {
			Types: eip712.Types{
				eip712.DomainTypeName: eip712.DomainFields(),
				"Kinds": {
					{Name: "flag", Type: "bool"},
					{Name: "blob", Type: "bytes"},
					{Name: "selector", Type: "bytes4"},
					{Name: "small", Type: "uint8"},
					{Name: "large", Type: "uint256"},
					{Name: "owner", Type: "address"},
					{Name: "label", Type: "string"},
				},
			},
			PrimaryType: "Kinds",
			Domain: eip712.Domain{
				Name:              "Kinds",
				Version:           "2",
				ChainID:           uint256.NewInt(42161),
				VerifyingContract: ethcommon.HexToAddress("0x1111111111111111111111111111111111111111"),
			},
			Message: eip712.Message{
				"flag":     eip712.Bool(true),
				"blob":     eip712.Bytes([]byte{0xde, 0xad, 0xbe, 0xef, 0x01}),
				"selector": eip712.FixedBytes([]byte{0xa9, 0x05, 0x9c, 0xbb}),
				"small":    eip712.Uint64(255),
				"large":    eip712.Uint(max),
				"owner":    eip712.Address(ethcommon.HexToAddress("0x2222222222222222222222222222222222222222")),
				"label":    eip712.String("unicode ✓"),
			},
		},
	}

	for name, td := range tests {
		t.Run(name, func(t *testing.T) {
			expected, err := td.Digest()
			require.NoError(t, err)

			digest, err := CrossCheck(td)
			require.NoError(t, err)
			assert.Equal(t, expected, digest)
		})
	}
}

func TestCrossCheckPropagatesErrors(t *testing.T) {
	td := delegateSignerTypedData()
	delete(td.Message, "txHash")

	_, err := CrossCheck(td)
	var mismatch *eip712.FieldMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestBuildTypedDataJSON(t *testing.T) {
	typedData, err := BuildTypedData(delegateSignerTypedData())
	require.NoError(t, err)

	raw, err := json.Marshal(typedData)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "DelegateSigner", doc["primaryType"])

	types, ok := doc["types"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, types, "EIP712Domain")
	assert.Contains(t, types, "DelegateSigner")

	domain, ok := doc["domain"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Orderly", domain["name"])
	assert.Equal(t, "0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC", domain["verifyingContract"])

	message, ok := doc["message"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "woofi_pro", message["brokerId"])
	assert.Equal(t, "0x1111111111111111111111111111111111111111", message["delegateContract"])
}

func TestHexToBytes32Strict(t *testing.T) {
	t.Run("valid with prefix", func(t *testing.T) {
		out, err := HexToBytes32Strict("0x2222222222222222222222222222222222222222222222222222222222222222")
		require.NoError(t, err)
		assert.Equal(t, byte(0x22), out[31])
	})

	t.Run("valid without prefix", func(t *testing.T) {
		_, err := HexToBytes32Strict("2222222222222222222222222222222222222222222222222222222222222222")
		assert.NoError(t, err)
	})

	t.Run("valid with uppercase prefix", func(t *testing.T) {
		out, err := HexToBytes32Strict("0X2222222222222222222222222222222222222222222222222222222222222222")
		require.NoError(t, err)
		assert.Equal(t, byte(0x22), out[0])
	})

	t.Run("odd length", func(t *testing.T) {
		_, err := HexToBytes32Strict("0x123")
		assert.EqualError(t, err, "hex must have even length")
	})

	t.Run("short", func(t *testing.T) {
		_, err := HexToBytes32Strict("0x1234")
		assert.EqualError(t, err, "expected 32 bytes, got 2")
	})

	t.Run("not hex", func(t *testing.T) {
		_, err := HexToBytes32Strict("0xzz")
		assert.Error(t, err)
	})
}
