// Package delegate builds, signs and verifies the Orderly DelegateSigner
// attestation that links a wallet to a delegate contract.
package delegate

import (
	"fmt"

	"delegatesigner/internal/common"
	"delegatesigner/internal/eip712"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	DomainName    = "Orderly"
	DomainVersion = "1"
	PrimaryType   = "DelegateSigner"
)

// VerifyingContract is the placeholder contract Orderly uses in its signing domain.
var VerifyingContract = ethcommon.HexToAddress("0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC")

var delegateSignerFields = []eip712.Field{
	{Name: "delegateContract", Type: "address"},
	{Name: "brokerId", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "timestamp", Type: "uint64"},
	{Name: "registrationNonce", Type: "uint256"},
	{Name: "txHash", Type: "bytes32"},
}

// Types returns a fresh copy of the DelegateSigner schema.
func Types() eip712.Types {
	return eip712.Types{
		eip712.DomainTypeName: eip712.DomainFields(),
		PrimaryType:           append([]eip712.Field(nil), delegateSignerFields...),
	}
}

func Domain(chainID *uint256.Int) eip712.Domain {
	return eip712.Domain{
		Name:              DomainName,
		Version:           DomainVersion,
		ChainID:           chainID,
		VerifyingContract: VerifyingContract,
	}
}

// Params are the inputs of one attestation. Timestamp is in milliseconds.
// The same ChainID feeds both the domain and the message.
type Params struct {
	ChainID           *uint256.Int
	BrokerID          string
	DelegateContract  ethcommon.Address
	Timestamp         uint64
	RegistrationNonce *uint256.Int
	TxHash            ethcommon.Hash
}

func (p Params) validate() error {
	if p.ChainID == nil || p.ChainID.IsZero() {
		return &eip712.FieldMismatchError{Type: PrimaryType, Field: "chainId", FieldType: "uint256", Reason: "chain id is required"}
	}
	return nil
}

func (p Params) Message() eip712.Message {
	return eip712.Message{
		"delegateContract":  eip712.Address(p.DelegateContract),
		"brokerId":          eip712.String(p.BrokerID),
		"chainId":           eip712.Uint(p.ChainID),
		"timestamp":         eip712.Uint64(p.Timestamp),
		"registrationNonce": eip712.Uint(p.RegistrationNonce),
		"txHash":            eip712.Bytes32(p.TxHash),
	}
}

func (p Params) TypedData() eip712.TypedData {
	return eip712.TypedData{
		Types:       Types(),
		PrimaryType: PrimaryType,
		Domain:      Domain(p.ChainID),
		Message:     p.Message(),
	}
}

// Digest validates p and returns its EIP-712 digest.
func (p Params) Digest() (ethcommon.Hash, error) {
	if err := p.validate(); err != nil {
		return ethcommon.Hash{}, err
	}
	return p.TypedData().Digest()
}

// WireMessage is the message as submitted to the Orderly API.
func (p Params) WireMessage() common.DelegateSignerMessage {
	return common.DelegateSignerMessage{
		DelegateContract:  p.DelegateContract,
		BrokerID:          p.BrokerID,
		ChainID:           common.UintFrom(p.ChainID),
		Timestamp:         p.Timestamp,
		RegistrationNonce: common.UintFrom(p.RegistrationNonce),
		TxHash:            p.TxHash,
	}
}

func ParamsFromMessage(m common.DelegateSignerMessage) Params {
	return Params{
		ChainID:           m.ChainID.Int(),
		BrokerID:          m.BrokerID,
		DelegateContract:  m.DelegateContract,
		Timestamp:         m.Timestamp,
		RegistrationNonce: m.RegistrationNonce.Int(),
		TxHash:            m.TxHash,
	}
}

// Attestation is a signed DelegateSigner message together with the result
// of recovering its signer.
type Attestation struct {
	Params      Params
	Digest      ethcommon.Hash
	Signature   eip712.Signature
	UserAddress ethcommon.Address
	Recovered   ethcommon.Address
	Valid       bool
}

func (a *Attestation) Payload() common.DelegateSignerPayload {
	return common.DelegateSignerPayload{
		Message:     a.Params.WireMessage(),
		Signature:   a.Signature.Hex(),
		UserAddress: a.UserAddress,
	}
}

// Sign signs the attestation and immediately recovers it. Valid is false only
// if the recovered address differs from the signer's.
func Sign(p Params, signer eip712.DigestSigner) (*Attestation, error) {
	digest, err := p.Digest()
	if err != nil {
		return nil, fmt.Errorf("failed to compute digest: %w", err)
	}

	sig, err := signer.Sign(digest)
	if err != nil {
		return nil, fmt.Errorf("failed to sign digest: %w", err)
	}

	recovered, err := eip712.Recover(digest, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to recover signer: %w", err)
	}

	return &Attestation{
		Params:      p,
		Digest:      digest,
		Signature:   sig,
		UserAddress: signer.Address(),
		Recovered:   recovered,
		Valid:       recovered == signer.Address(),
	}, nil
}

// Verify recovers the signer of sig over p and compares it with userAddress.
func Verify(p Params, sig eip712.Signature, userAddress ethcommon.Address) (*Attestation, error) {
	digest, err := p.Digest()
	if err != nil {
		return nil, fmt.Errorf("failed to compute digest: %w", err)
	}

	recovered, err := eip712.Recover(digest, sig)
	if err != nil {
		return nil, err
	}

	return &Attestation{
		Params:      p,
		Digest:      digest,
		Signature:   sig,
		UserAddress: userAddress,
		Recovered:   recovered,
		Valid:       recovered == userAddress,
	}, nil
}
