package common

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// Uint is a 256-bit unsigned integer carried in JSON as a bare number, the
// way wallets and the Orderly API print chainId and registrationNonce. It
// also accepts quoted decimal or 0x-hex strings.
type Uint uint256.Int

func NewUint(n uint64) Uint {
	return Uint(*uint256.NewInt(n))
}

// UintFrom copies n, nil is zero.
func UintFrom(n *uint256.Int) Uint {
	if n == nil {
		return Uint{}
	}
	return Uint(*n)
}

// Int returns a copy of the value.
func (u Uint) Int() *uint256.Int {
	n := uint256.Int(u)
	return &n
}

func (u Uint) String() string {
	return u.Int().Dec()
}

func (u Uint) MarshalJSON() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *Uint) UnmarshalJSON(input []byte) error {
	s := strings.TrimSpace(string(input))
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("invalid integer string %s: %w", s, err)
		}
		s = unquoted
	}
	n, err := ParseUint(s)
	if err != nil {
		return err
	}
	*u = Uint(*n)
	return nil
}

// ParseUint parses a decimal or 0x-prefixed hex unsigned integer of at most 256 bits.
func ParseUint(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty integer")
	}

	if hexDigits, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		// big.Int accepts a sign after the prefix, uint fields never carry one.
		if hexDigits == "" || hexDigits[0] == '-' || hexDigits[0] == '+' {
			return nil, fmt.Errorf("invalid hex integer %q", s)
		}
		b, ok := new(big.Int).SetString(hexDigits, 16)
		if !ok || b.Sign() < 0 {
			return nil, fmt.Errorf("invalid hex integer %q", s)
		}
		n, overflow := uint256.FromBig(b)
		if overflow {
			return nil, fmt.Errorf("integer %q overflows 256 bits", s)
		}
		return n, nil
	}

	n, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal integer %q: %w", s, err)
	}
	return n, nil
}
