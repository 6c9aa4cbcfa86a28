package eip712

import "fmt"

// SchemaError reports a malformed or incomplete type schema.
type SchemaError struct {
	Type   string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("eip712 schema: type %q field %q: %s", e.Type, e.Field, e.Reason)
	}
	return fmt.Sprintf("eip712 schema: type %q: %s", e.Type, e.Reason)
}

// FieldMismatchError reports a message that does not conform to its schema.
type FieldMismatchError struct {
	Type      string
	Field     string
	FieldType string
	Reason    string
}

func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf("eip712 message: %s.%s (%s): %s", e.Type, e.Field, e.FieldType, e.Reason)
}

// InvalidKeyError reports a private key that is not a valid secp256k1 scalar.
type InvalidKeyError struct {
	Err error
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid private key: %v", e.Err)
}

func (e *InvalidKeyError) Unwrap() error { return e.Err }

// InvalidSignatureError reports a malformed signature or a failed recovery.
type InvalidSignatureError struct {
	Reason string
	Err    error
}

func (e *InvalidSignatureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid signature: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid signature: %s", e.Reason)
}

func (e *InvalidSignatureError) Unwrap() error { return e.Err }
