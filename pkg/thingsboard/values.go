package thingsboard

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DecodeBool coerces a JSON value to a boolean. Booleans are taken as is,
// numbers are true when non-zero and strings are parsed with strconv.ParseBool.
func DecodeBool(raw json.RawMessage) (bool, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	switch t := v.(type) {
	case bool:
		return t, nil
	case float64:
		return t != 0, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidPayload, t)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: %s is not a boolean", ErrInvalidPayload, string(raw))
	}
}

// DecodeInt coerces a JSON value to an integer. Numbers must be integral;
// strings are parsed as base-10 integers.
func DecodeInt(raw json.RawMessage) (int64, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || t >= math.MaxInt64 || t < math.MinInt64 {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidPayload, t)
		}
		return int64(t), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidPayload, t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s is not an integer", ErrInvalidPayload, string(raw))
	}
}
