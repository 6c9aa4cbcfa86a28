package delegate

import (
	"encoding/json"
	"testing"

	"delegatesigner/internal/common"
	"delegatesigner/internal/eip712"
	"delegatesigner/internal/hash"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var testAddress = ethcommon.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func testParams() Params {
	return Params{
		ChainID:           uint256.NewInt(80094),
		BrokerID:          "woofi_pro",
		DelegateContract:  ethcommon.HexToAddress("0x1111111111111111111111111111111111111111"),
		Timestamp:         1700000000000,
		RegistrationNonce: uint256.NewInt(42),
		TxHash:            ethcommon.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222"),
	}
}

func TestSchema(t *testing.T) {
	encoded, err := eip712.EncodeType(Types(), PrimaryType)
	require.NoError(t, err)
	assert.Equal(t,
		"DelegateSigner(address delegateContract,string brokerId,uint256 chainId,uint64 timestamp,uint256 registrationNonce,bytes32 txHash)",
		encoded)

	typeHash, err := eip712.HashType(Types(), PrimaryType)
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256Hash([]byte(encoded)), typeHash)

	domainType, err := eip712.EncodeType(Types(), eip712.DomainTypeName)
	require.NoError(t, err)
	assert.Equal(t, "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)", domainType)
}

func TestTypesReturnsCopy(t *testing.T) {
	types := Types()
	types[PrimaryType][0].Name = "mutated"

	encoded, err := eip712.EncodeType(Types(), PrimaryType)
	require.NoError(t, err)
	assert.Contains(t, encoded, "address delegateContract")
}

func TestSignAndVerify(t *testing.T) {
	signer, err := eip712.NewSigner(testKey)
	require.NoError(t, err)

	p := testParams()
	attestation, err := Sign(p, signer)
	require.NoError(t, err)

	assert.Equal(t, testAddress, attestation.UserAddress)
	assert.Equal(t, testAddress, attestation.Recovered)
	assert.True(t, attestation.Valid)
	assert.Contains(t, []byte{27, 28}, attestation.Signature.V())

	reference, err := hash.CrossCheck(p.TypedData())
	require.NoError(t, err)
	assert.Equal(t, reference, attestation.Digest)

	again, err := Sign(p, signer)
	require.NoError(t, err)
	assert.Equal(t, attestation.Signature, again.Signature)

	verified, err := Verify(p, attestation.Signature, testAddress)
	require.NoError(t, err)
	assert.True(t, verified.Valid)
	assert.Equal(t, attestation.Digest, verified.Digest)
}

func TestVerifyRejectsOtherSigner(t *testing.T) {
	signer, err := eip712.NewSigner(testKey)
	require.NoError(t, err)

	p := testParams()
	attestation, err := Sign(p, signer)
	require.NoError(t, err)

	other := ethcommon.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	verified, err := Verify(p, attestation.Signature, other)
	require.NoError(t, err)
	assert.False(t, verified.Valid)
	assert.Equal(t, testAddress, verified.Recovered)
}

func TestDigestSensitivity(t *testing.T) {
	base, err := testParams().Digest()
	require.NoError(t, err)

	mutations := map[string]func(p *Params){
		"chain id":           func(p *Params) { p.ChainID = uint256.NewInt(42161) },
		"broker id":          func(p *Params) { p.BrokerID = "orderly" },
		"delegate contract":  func(p *Params) { p.DelegateContract = ethcommon.HexToAddress("0x3333333333333333333333333333333333333333") },
		"timestamp":          func(p *Params) { p.Timestamp++ },
		"registration nonce": func(p *Params) { p.RegistrationNonce = uint256.NewInt(43) },
		"tx hash":            func(p *Params) { p.TxHash[0] ^= 0xff },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			p := testParams()
			mutate(&p)
			digest, err := p.Digest()
			require.NoError(t, err)
			assert.NotEqual(t, base, digest)
		})
	}
}

func TestMissingChainID(t *testing.T) {
	p := testParams()
	p.ChainID = nil

	_, err := p.Digest()
	var mismatch *eip712.FieldMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "chainId", mismatch.Field)

	signer, err := eip712.NewSigner(testKey)
	require.NoError(t, err)
	_, err = Sign(p, signer)
	assert.ErrorAs(t, err, &mismatch)
}

func TestNilRegistrationNonceIsZero(t *testing.T) {
	p := testParams()
	p.RegistrationNonce = nil
	nilDigest, err := p.Digest()
	require.NoError(t, err)

	p.RegistrationNonce = uint256.NewInt(0)
	zeroDigest, err := p.Digest()
	require.NoError(t, err)

	assert.Equal(t, zeroDigest, nilDigest)
}

func TestPayload(t *testing.T) {
	signer, err := eip712.NewSigner(testKey)
	require.NoError(t, err)

	attestation, err := Sign(testParams(), signer)
	require.NoError(t, err)

	raw, err := json.Marshal(attestation.Payload())
	require.NoError(t, err)

	var doc struct {
		Message     map[string]json.RawMessage `json:"message"`
		Signature   string                     `json:"signature"`
		UserAddress string                     `json:"userAddress"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, attestation.Signature.Hex(), doc.Signature)
	assert.Len(t, doc.Signature, 132)
	assert.Equal(t, "80094", string(doc.Message["chainId"]))
	assert.Equal(t, "42", string(doc.Message["registrationNonce"]))
	assert.Equal(t, "1700000000000", string(doc.Message["timestamp"]))
	assert.Equal(t, `"woofi_pro"`, string(doc.Message["brokerId"]))
	assert.Equal(t, ethcommon.HexToAddress(doc.UserAddress), testAddress)

	// The payload round-trips into the same digest.
	var payload struct {
		Message json.RawMessage `json:"message"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	var back common.DelegateSignerMessage
	require.NoError(t, json.Unmarshal(payload.Message, &back))
	digest, err := ParamsFromMessage(back).Digest()
	require.NoError(t, err)
	assert.Equal(t, attestation.Digest, digest)
}
