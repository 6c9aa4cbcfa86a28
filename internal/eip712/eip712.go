// Package eip712 implements EIP-712 structured data hashing, signing and
// signer recovery for a small set of atomic types (address, bool, string,
// bytes, bytes1..32, uint8..256) and nested structs. Arrays are not supported.
// See https://eips.ethereum.org/EIPS/eip-712.
package eip712

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EncodeType returns `Name(type1 name1,...)` for typeName followed by the
// encodings of every struct type it references, sorted by type name.
func EncodeType(types Types, typeName string) (string, error) {
	deps, err := dependencies(types, typeName)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	writeType(&b, typeName, types[typeName])
	for _, dep := range deps {
		writeType(&b, dep, types[dep])
	}
	return b.String(), nil
}

// HashType returns keccak256(EncodeType(types, typeName)).
func HashType(types Types, typeName string) (ethcommon.Hash, error) {
	encoded, err := EncodeType(types, typeName)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return crypto.Keccak256Hash([]byte(encoded)), nil
}

// EncodeData returns typeHash followed by the 32 byte encoding of every
// field of typeName in declaration order.
func EncodeData(types Types, typeName string, msg Message) ([]byte, error) {
	typeHash, err := HashType(types, typeName)
	if err != nil {
		return nil, err
	}

	fields := types[typeName]
	buf := make([]byte, 0, ethcommon.HashLength*(len(fields)+1))
	buf = append(buf, typeHash.Bytes()...)

	for _, field := range fields {
		value, ok := msg[field.Name]
		if !ok {
			return nil, &FieldMismatchError{Type: typeName, Field: field.Name, FieldType: field.Type, Reason: "missing value"}
		}
		word, err := encodeField(types, typeName, field, value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, word...)
	}

	if len(msg) > len(fields) {
		return nil, extraFieldError(typeName, fields, msg)
	}
	return buf, nil
}

// HashStruct returns keccak256(EncodeData(types, typeName, msg)).
func HashStruct(types Types, typeName string, msg Message) (ethcommon.Hash, error) {
	encoded, err := EncodeData(types, typeName, msg)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return crypto.Keccak256Hash(encoded), nil
}

// DomainSeparator returns the struct hash of domain under the schema's EIP712Domain declaration.
func DomainSeparator(types Types, domain Domain) (ethcommon.Hash, error) {
	fields, ok := types[DomainTypeName]
	if !ok {
		return ethcommon.Hash{}, &SchemaError{Type: DomainTypeName, Reason: "type is not declared"}
	}
	msg, err := domain.message(fields)
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return HashStruct(types, DomainTypeName, msg)
}

// Digest computes keccak256(0x19 0x01 ‖ domainSeparator ‖ hashStruct(message)),
// the value that is actually signed.
func Digest(domain Domain, types Types, primaryType string, msg Message) (ethcommon.Hash, error) {
	domainSeparator, err := DomainSeparator(types, domain)
	if err != nil {
		return ethcommon.Hash{}, fmt.Errorf("failed to hash domain: %w", err)
	}

	structHash, err := HashStruct(types, primaryType, msg)
	if err != nil {
		return ethcommon.Hash{}, fmt.Errorf("failed to hash message: %w", err)
	}

	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSeparator.Bytes(), structHash.Bytes()), nil
}

func writeType(b *strings.Builder, name string, fields []Field) {
	b.WriteString(name)
	b.WriteByte('(')
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(field.Type)
		b.WriteByte(' ')
		b.WriteString(field.Name)
	}
	b.WriteByte(')')
}

// dependencies returns the sorted struct types reachable from typeName,
// excluding typeName itself. A reference back into the current path is a cycle.
func dependencies(types Types, typeName string) ([]string, error) {
	if _, ok := types[typeName]; !ok {
		return nil, &SchemaError{Type: typeName, Reason: "type is not declared"}
	}

	found := make(map[string]bool)
	inPath := make(map[string]bool)

	var walk func(name string) error
	walk = func(name string) error {
		inPath[name] = true
		defer delete(inPath, name)

		seen := make(map[string]bool, len(types[name]))
		for _, field := range types[name] {
			if seen[field.Name] {
				return &SchemaError{Type: name, Field: field.Name, Reason: "duplicate field name"}
			}
			seen[field.Name] = true

			ref, err := referencedType(types, name, field)
			if err != nil {
				return err
			}
			if ref == "" {
				continue
			}
			if inPath[ref] {
				return &SchemaError{Type: name, Field: field.Name, Reason: fmt.Sprintf("cyclic reference to %q", ref)}
			}
			if found[ref] {
				continue
			}
			found[ref] = true
			if err := walk(ref); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(typeName); err != nil {
		return nil, err
	}

	deps := make([]string, 0, len(found))
	for dep := range found {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps, nil
}

// referencedType returns the struct type a field points at, or "" for atomic fields.
func referencedType(types Types, owner string, field Field) (string, error) {
	switch {
	case field.Name == "":
		return "", &SchemaError{Type: owner, Reason: "field with empty name"}
	case strings.HasSuffix(field.Type, "]"):
		return "", &SchemaError{Type: owner, Field: field.Name, Reason: fmt.Sprintf("array type %q is not supported", field.Type)}
	}

	if _, ok := parseElementary(field.Type); ok {
		return "", nil
	}
	if _, ok := types[field.Type]; ok {
		return field.Type, nil
	}
	if isReservedAtomic(field.Type) {
		return "", &SchemaError{Type: owner, Field: field.Name, Reason: fmt.Sprintf("unsupported atomic type %q", field.Type)}
	}
	return "", &SchemaError{Type: owner, Field: field.Name, Reason: fmt.Sprintf("references undeclared type %q", field.Type)}
}

func encodeField(types Types, owner string, field Field, value Value) ([]byte, error) {
	mismatch := func(format string, args ...any) error {
		return &FieldMismatchError{Type: owner, Field: field.Name, FieldType: field.Type, Reason: fmt.Sprintf(format, args...)}
	}

	el, atomic := parseElementary(field.Type)
	if !atomic {
		nested, ok := value.AsStruct()
		if !ok {
			return nil, mismatch("expected struct value, got %s", value.Kind())
		}
		hash, err := HashStruct(types, field.Type, nested)
		if err != nil {
			return nil, err
		}
		return hash.Bytes(), nil
	}

	if value.Kind() != el.kind {
		return nil, mismatch("expected %s value, got %s", el.kind, value.Kind())
	}

	switch el.kind {
	case KindAddress:
		return ethcommon.LeftPadBytes(value.address.Bytes(), 32), nil
	case KindBool:
		word := make([]byte, 32)
		if value.boolean {
			word[31] = 1
		}
		return word, nil
	case KindString:
		return crypto.Keccak256([]byte(value.text)), nil
	case KindBytes:
		return crypto.Keccak256(value.raw), nil
	case KindFixedBytes:
		if len(value.raw) != el.size {
			return nil, mismatch("expected %d bytes, got %d", el.size, len(value.raw))
		}
		return ethcommon.RightPadBytes(value.raw, 32), nil
	case KindUint:
		if value.number.BitLen() > el.size {
			return nil, mismatch("value %s overflows uint%d", value.number.Dec(), el.size)
		}
		word := value.number.Bytes32()
		return word[:], nil
	}
	return nil, mismatch("unsupported kind %s", el.kind)
}

func extraFieldError(typeName string, fields []Field, msg Message) error {
	declared := make([]string, 0, len(fields))
	for _, f := range fields {
		declared = append(declared, f.Name)
	}

	extra := make([]string, 0, len(msg)-len(fields))
	for name := range msg {
		if !slices.Contains(declared, name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	return &FieldMismatchError{Type: typeName, Field: extra[0], FieldType: "-", Reason: "value is not declared in the schema"}
}
