package eip712

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Field is a single member of a struct type declaration.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Types maps a struct type name to its ordered field list.
type Types map[string][]Field

// Message holds the values of a struct, keyed by field name.
type Message map[string]Value

// Domain is the EIP712Domain value binding a signature to an application,
// a chain and a verifying contract.
type Domain struct {
	Name              string
	Version           string
	ChainID           *uint256.Int
	VerifyingContract ethcommon.Address
}

// message returns the domain as a struct value restricted to the fields the
// schema declares for EIP712Domain.
func (d Domain) message(fields []Field) (Message, error) {
	msg := make(Message, len(fields))
	for _, f := range fields {
		switch f.Name {
		case "name":
			msg[f.Name] = String(d.Name)
		case "version":
			msg[f.Name] = String(d.Version)
		case "chainId":
			if d.ChainID == nil {
				return nil, &FieldMismatchError{Type: DomainTypeName, Field: f.Name, FieldType: f.Type, Reason: "domain chain id is not set"}
			}
			msg[f.Name] = Uint(d.ChainID)
		case "verifyingContract":
			msg[f.Name] = Address(d.VerifyingContract)
		default:
			return nil, &SchemaError{Type: DomainTypeName, Field: f.Name, Reason: "unsupported domain field"}
		}
	}
	return msg, nil
}

// TypedData bundles everything needed to produce a signable digest.
type TypedData struct {
	Types       Types
	PrimaryType string
	Domain      Domain
	Message     Message
}

// Digest computes the EIP712 digest of the typed data.
func (td TypedData) Digest() (ethcommon.Hash, error) {
	return Digest(td.Domain, td.Types, td.PrimaryType, td.Message)
}

// DomainSeparator returns the struct hash of the domain.
func (td TypedData) DomainSeparator() (ethcommon.Hash, error) {
	return DomainSeparator(td.Types, td.Domain)
}
