package eip712

import (
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Kind identifies which member of the Value union is populated.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindAddress
	KindBool
	KindString
	KindBytes
	KindFixedBytes
	KindUint
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindAddress:
		return "address"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindFixedBytes:
		return "fixed bytes"
	case KindUint:
		return "uint"
	case KindStruct:
		return "struct"
	default:
		return "invalid"
	}
}

// Value is a typed message value. The zero Value is invalid and is rejected
// by the encoder.
type Value struct {
	kind    Kind
	address ethcommon.Address
	boolean bool
	text    string
	raw     []byte
	number  uint256.Int
	fields  Message
}

func Address(a ethcommon.Address) Value {
	return Value{kind: KindAddress, address: a}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Bytes is a dynamic `bytes` value.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, raw: append([]byte(nil), b...)}
}

// FixedBytes is a `bytesN` value; its length is checked against N at encoding time.
func FixedBytes(b []byte) Value {
	return Value{kind: KindFixedBytes, raw: append([]byte(nil), b...)}
}

func Bytes32(h ethcommon.Hash) Value {
	return FixedBytes(h.Bytes())
}

// Uint copies n, a nil n is treated as zero.
func Uint(n *uint256.Int) Value {
	v := Value{kind: KindUint}
	if n != nil {
		v.number.Set(n)
	}
	return v
}

func Uint64(n uint64) Value {
	return Value{kind: KindUint, number: *uint256.NewInt(n)}
}

func Struct(m Message) Value {
	return Value{kind: KindStruct, fields: m}
}

func (v Value) Kind() Kind { return v.kind }

// String renders the value the way it appears in wallet JSON.
func (v Value) String() string {
	switch v.kind {
	case KindAddress:
		return v.address.Hex()
	case KindBool:
		return fmt.Sprintf("%t", v.boolean)
	case KindString:
		return v.text
	case KindBytes, KindFixedBytes:
		return hexutil.Encode(v.raw)
	case KindUint:
		return v.number.Dec()
	case KindStruct:
		return fmt.Sprintf("%v", map[string]Value(v.fields))
	default:
		return "<invalid>"
	}
}

// AsAddress returns the address held by v, ok is false for other kinds.
func (v Value) AsAddress() (ethcommon.Address, bool) {
	return v.address, v.kind == KindAddress
}

func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

func (v Value) AsString() (string, bool) {
	return v.text, v.kind == KindString
}

// AsBytes returns a copy of the raw bytes of a bytes or bytesN value.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes && v.kind != KindFixedBytes {
		return nil, false
	}
	return append([]byte(nil), v.raw...), true
}

// AsUint returns a copy of the integer held by v.
func (v Value) AsUint() (*uint256.Int, bool) {
	if v.kind != KindUint {
		return nil, false
	}
	return new(uint256.Int).Set(&v.number), true
}

func (v Value) AsStruct() (Message, bool) {
	return v.fields, v.kind == KindStruct
}
