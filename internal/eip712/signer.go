package eip712

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the size of an r ‖ s ‖ v signature.
const SignatureLength = crypto.SignatureLength

// Signature is a secp256k1 signature laid out as r(32) ‖ s(32) ‖ v(1).
// Signatures produced by Signer carry v as 27 or 28.
type Signature [SignatureLength]byte

// SignatureFromBytes copies a 65 byte signature.
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureLength {
		return sig, &InvalidSignatureError{Reason: fmt.Sprintf("expected %d bytes, got %d", SignatureLength, len(b))}
	}
	copy(sig[:], b)
	return sig, nil
}

// ParseSignature decodes a hex signature with or without the 0x prefix.
func ParseSignature(hexSig string) (Signature, error) {
	hexSig = strings.TrimSpace(hexSig)
	if !strings.HasPrefix(hexSig, "0x") && !strings.HasPrefix(hexSig, "0X") {
		hexSig = "0x" + hexSig
	}
	raw, err := hexutil.Decode(hexSig)
	if err != nil {
		return Signature{}, &InvalidSignatureError{Reason: "malformed hex", Err: err}
	}
	return SignatureFromBytes(raw)
}

func (s Signature) R() ethcommon.Hash { return ethcommon.BytesToHash(s[:32]) }
func (s Signature) S() ethcommon.Hash { return ethcommon.BytesToHash(s[32:64]) }
func (s Signature) V() byte           { return s[64] }

func (s Signature) Bytes() []byte {
	out := make([]byte, SignatureLength)
	copy(out, s[:])
	return out
}

func (s Signature) Hex() string    { return hexutil.Encode(s[:]) }
func (s Signature) String() string { return s.Hex() }

// MarshalText encodes the signature as 0x-prefixed hex.
func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.Hex()), nil
}

func (s *Signature) UnmarshalText(input []byte) error {
	parsed, err := ParseSignature(string(input))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DigestSigner signs precomputed EIP-712 digests.
type DigestSigner interface {
	Address() ethcommon.Address
	Sign(digest ethcommon.Hash) (Signature, error)
}

var _ DigestSigner = (*Signer)(nil)

// Signer holds a secp256k1 private key. Signing uses RFC 6979 deterministic
// nonces, so the same key and digest always give the same signature.
type Signer struct {
	key     *ecdsa.PrivateKey
	address ethcommon.Address
}

// NewSigner parses a hex-encoded private key, with or without the 0x prefix.
func NewSigner(privateKeyHex string) (*Signer, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, &InvalidKeyError{Err: err}
	}
	return newSigner(key), nil
}

// NewSignerFromKey wraps an existing key after checking it is a valid scalar.
func NewSignerFromKey(key *ecdsa.PrivateKey) (*Signer, error) {
	if key == nil || key.D == nil || key.Curve == nil {
		return nil, &InvalidKeyError{Err: errors.New("key is nil")}
	}
	if key.D.BitLen() > 256 {
		return nil, &InvalidKeyError{Err: errors.New("scalar exceeds 256 bits")}
	}
	checked, err := crypto.ToECDSA(crypto.FromECDSA(key))
	if err != nil {
		return nil, &InvalidKeyError{Err: err}
	}
	return newSigner(checked), nil
}

func newSigner(key *ecdsa.PrivateKey) *Signer {
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// Address returns the address derived from the signer's public key.
func (s *Signer) Address() ethcommon.Address {
	return s.address
}

// Sign signs a 32 byte digest. V is adjusted from 0/1 to 27/28.
func (s *Signer) Sign(digest ethcommon.Hash) (Signature, error) {
	raw, err := crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		return Signature{}, fmt.Errorf("failed to sign digest: %w", err)
	}
	sig, err := SignatureFromBytes(raw)
	if err != nil {
		return Signature{}, err
	}
	sig[64] += 27
	return sig, nil
}

// SignTypedData computes the digest of td and signs it.
func (s *Signer) SignTypedData(td TypedData) (Signature, ethcommon.Hash, error) {
	digest, err := td.Digest()
	if err != nil {
		return Signature{}, ethcommon.Hash{}, err
	}
	sig, err := s.Sign(digest)
	if err != nil {
		return Signature{}, ethcommon.Hash{}, err
	}
	return sig, digest, nil
}

// Recover returns the address whose key produced sig over digest.
// Both the 27/28 and the raw 0/1 recovery id forms are accepted.
func Recover(digest ethcommon.Hash, sig Signature) (ethcommon.Address, error) {
	v := sig[64]
	switch v {
	case 27, 28:
		v -= 27
	case 0, 1:
	default:
		return ethcommon.Address{}, &InvalidSignatureError{Reason: fmt.Sprintf("recovery id %d is not one of 27, 28, 0, 1", v)}
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, false) {
		return ethcommon.Address{}, &InvalidSignatureError{Reason: "r or s out of range"}
	}

	raw := sig.Bytes()
	raw[64] = v

	pub, err := crypto.SigToPub(digest.Bytes(), raw)
	if err != nil {
		return ethcommon.Address{}, &InvalidSignatureError{Reason: "public key recovery failed", Err: err}
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify reports whether sig over digest was produced by expected.
func Verify(digest ethcommon.Hash, sig Signature, expected ethcommon.Address) (bool, error) {
	recovered, err := Recover(digest, sig)
	if err != nil {
		return false, err
	}
	return recovered == expected, nil
}
