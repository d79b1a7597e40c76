package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawCart is the untrusted productId -> quantity mapping kept in session
// state. Values are whatever the client or an older build stored.
type RawCart map[string]any

// DecodeRaw reads a stored cart. Objects are kept as-is; a legacy JSON array
// of product ids is folded into counts. Empty input yields an empty cart.
// Anything else fails with ErrCorruptCart.
func DecodeRaw(data []byte) (RawCart, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return RawCart{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if data[0] == '[' {
		var ids []json.Number
		if err := dec.Decode(&ids); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptCart, err)
		}
		out := make(RawCart, len(ids))
		counts := make(map[string]int, len(ids))
		for _, id := range ids {
			counts[id.String()]++
		}
		for k, n := range counts {
			out[k] = n
		}
		return out, nil
	}

	out := RawCart{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}
	return out, nil
}

// ParsePositiveInt interprets a raw cart value as a quantity. It accepts Go
// integers, integral JSON numbers and decimal strings. Anything else, and
// any value <= 0, reports false.
func ParsePositiveInt(v any) (int, bool) {
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case float64:
		if t != math.Trunc(t) || t > math.MaxInt32 || t < math.MinInt32 {
			return 0, false
		}
		n = int64(t)
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return 0, false
			}
			return ParsePositiveInt(f)
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}
	if n <= 0 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// Equal reports whether raw already holds exactly the corrected mapping.
// Comparison is type-strict: the string "2" is not the number 2.
func Equal(raw RawCart, corrected map[string]int) bool {
	if len(raw) != len(corrected) {
		return false
	}
	for k, want := range corrected {
		got, ok := raw[k]
		if !ok {
			return false
		}
		switch t := got.(type) {
		case int:
			if t != want {
				return false
			}
		case int64:
			if t != int64(want) {
				return false
			}
		case float64:
			if t != float64(want) {
				return false
			}
		case json.Number:
			if t.String() != strconv.Itoa(want) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Count sums the quantities of a normalized cart.
func Count(m map[string]int) int {
	total := 0
	for _, q := range m {
		total += q
	}
	return total
}

func toRaw(m map[string]int) RawCart {
	out := make(RawCart, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
