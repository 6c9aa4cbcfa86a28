package hash

import (
	"fmt"

	"delegatesigner/internal/eip712"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// toAPITypes converts a schema into go-ethereum's representation
func toAPITypes(types eip712.Types) apitypes.Types {
	out := make(apitypes.Types, len(types))
	for name, fields := range types {
		converted := make([]apitypes.Type, len(fields))
		for i, f := range fields {
			converted[i] = apitypes.Type{Name: f.Name, Type: f.Type}
		}
		out[name] = converted
	}
	return out
}

// toAPIDomain converts the domain, leaving unset members empty so Map() skips them
func toAPIDomain(d eip712.Domain) apitypes.TypedDataDomain {
	domain := apitypes.TypedDataDomain{
		Name:              d.Name,
		Version:           d.Version,
		VerifyingContract: d.VerifyingContract.Hex(),
	}
	if d.ChainID != nil {
		domain.ChainId = (*math.HexOrDecimal256)(d.ChainID.ToBig())
	}
	return domain
}

// toAPIMessage converts message values into the loosely typed form apitypes
// encodes: hex strings for addresses and bytes, HexOrDecimal256 for integers
// and plain maps for nested structs.
func toAPIMessage(msg eip712.Message) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(msg))
	for name, value := range msg {
		converted, err := toAPIValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		out[name] = converted
	}
	return out, nil
}

func toAPIValue(value eip712.Value) (interface{}, error) {
	switch value.Kind() {
	case eip712.KindAddress:
		addr, _ := value.AsAddress()
		return addr.Hex(), nil
	case eip712.KindBool:
		b, _ := value.AsBool()
		return b, nil
	case eip712.KindString:
		s, _ := value.AsString()
		return s, nil
	case eip712.KindBytes, eip712.KindFixedBytes:
		raw, _ := value.AsBytes()
		return hexutil.Encode(raw), nil
	case eip712.KindUint:
		n, _ := value.AsUint()
		return (*math.HexOrDecimal256)(n.ToBig()), nil
	case eip712.KindStruct:
		nested, _ := value.AsStruct()
		return toAPIMessage(nested)
	default:
		return nil, fmt.Errorf("unsupported value kind %s", value.Kind())
	}
}
