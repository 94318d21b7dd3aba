package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/pushdown/internal/ir"
)

// marshalProperties converts IRObject to canonical JSON TEXT for storage.
func marshalProperties(props ir.IRObject) (string, error) {
	if props == nil {
		return "{}", nil
	}
	data, err := ir.MarshalCanonical(props)
	if err != nil {
		return "", fmt.Errorf("marshal properties: %w", err)
	}
	return string(data), nil
}

// unmarshalProperties parses JSON TEXT to IRObject.
// Integers go through json.Number so values > 2^53 keep their precision.
func unmarshalProperties(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal properties: %w", err)
	}
	return obj, nil
}
