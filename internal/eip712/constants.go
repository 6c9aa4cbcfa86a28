package eip712

import (
	"strconv"
	"strings"
)

// DomainTypeName is the reserved name of the domain struct type.
const DomainTypeName = "EIP712Domain"

var domainFields = []Field{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
}

// DomainFields returns a fresh copy of the EIP712Domain declaration used by
// domains with name, version, chainId and verifyingContract.
func DomainFields() []Field {
	return append([]Field(nil), domainFields...)
}

// elementary describes a parsed atomic type.
type elementary struct {
	kind Kind
	// bit width for uintN, byte length for bytesN
	size int
}

// parseElementary reports whether typ is an atomic type this encoder supports.
func parseElementary(typ string) (elementary, bool) {
	switch typ {
	case "address":
		return elementary{kind: KindAddress}, true
	case "bool":
		return elementary{kind: KindBool}, true
	case "string":
		return elementary{kind: KindString}, true
	case "bytes":
		return elementary{kind: KindBytes}, true
	}

	if rest, ok := strings.CutPrefix(typ, "uint"); ok {
		bits, err := strconv.Atoi(rest)
		if err != nil || bits < 8 || bits > 256 || bits%8 != 0 || rest != strconv.Itoa(bits) {
			return elementary{}, false
		}
		return elementary{kind: KindUint, size: bits}, true
	}

	if rest, ok := strings.CutPrefix(typ, "bytes"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 || n > 32 || rest != strconv.Itoa(n) {
			return elementary{}, false
		}
		return elementary{kind: KindFixedBytes, size: n}, true
	}

	return elementary{}, false
}

// isReservedAtomic catches EIP-712 atomic types the encoder does not implement,
// so they are reported as unsupported instead of as missing struct types.
func isReservedAtomic(typ string) bool {
	return strings.HasPrefix(typ, "int") || strings.HasPrefix(typ, "uint") || strings.HasPrefix(typ, "bytes")
}
