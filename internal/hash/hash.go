// Package hash produces the wallet-facing typed data document and an
// independent digest computed by go-ethereum's own EIP-712 implementation.
package hash

import (
	"encoding/hex"
	"fmt"
	"strings"

	"delegatesigner/internal/eip712"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// BuildTypedData constructs the eth_signTypedData_v4 document for td
func BuildTypedData(td eip712.TypedData) (apitypes.TypedData, error) {
	message, err := toAPIMessage(td.Message)
	if err != nil {
		return apitypes.TypedData{}, fmt.Errorf("failed to convert message: %w", err)
	}

	return apitypes.TypedData{
		Types:       toAPITypes(td.Types),
		PrimaryType: td.PrimaryType,
		Domain:      toAPIDomain(td.Domain),
		Message:     message,
	}, nil
}

// GetTypedDataHash computes the EIP712 hash for a given typed data
func GetTypedDataHash(typedData apitypes.TypedData) (ethcommon.Hash, error) {
	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return ethcommon.Hash{}, fmt.Errorf("failed to compute EIP712 hash: %w", err)
	}
	return ethcommon.BytesToHash(hash), nil
}

// ReferenceDigest is a convenience function that builds the wallet document and hashes it
func ReferenceDigest(td eip712.TypedData) (ethcommon.Hash, error) {
	typedData, err := BuildTypedData(td)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return GetTypedDataHash(typedData)
}

// CrossCheck computes the digest with both implementations and fails when they disagree
func CrossCheck(td eip712.TypedData) (ethcommon.Hash, error) {
	digest, err := td.Digest()
	if err != nil {
		return ethcommon.Hash{}, err
	}

	reference, err := ReferenceDigest(td)
	if err != nil {
		return ethcommon.Hash{}, fmt.Errorf("reference digest: %w", err)
	}

	if digest != reference {
		return ethcommon.Hash{}, fmt.Errorf("digest mismatch: computed %s, go-ethereum %s", digest.Hex(), reference.Hex())
	}
	return digest, nil
}

func HexToBytes32Strict(s string) ([32]byte, error) {
	var out [32]byte
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		return out, fmt.Errorf("hex must have even length")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b) // copy into fixed array
	return out, nil
}
