package labeling

import (
	"encoding/json"
	"math"
)

// NormalizeIDs dedupes ids keeping first-occurrence order.
// The result is never nil.
func NormalizeIDs(ids []LabelID) []LabelID {
	out := make([]LabelID, 0, len(ids))
	seen := make(map[LabelID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// NormalizeValues converts loosely typed values, typically decoded JSON, into
// normalized label IDs. Non-numeric, non-finite and fractional values are
// dropped without error.
func NormalizeValues(values []any) []LabelID {
	out := make([]LabelID, 0, len(values))
	seen := make(map[LabelID]struct{}, len(values))
	for _, v := range values {
		id, ok := toLabelID(v)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// maxExactFloat is the largest float64 that still converts to int64 exactly
const maxExactFloat = 1 << 63

func floatToLabelID(f float64) (LabelID, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f >= maxExactFloat || f < -maxExactFloat {
		return 0, false
	}
	return LabelID(f), true
}

func toLabelID(v any) (LabelID, bool) {
	switch n := v.(type) {
	case LabelID:
		return n, true
	case int:
		return LabelID(n), true
	case int8:
		return LabelID(n), true
	case int16:
		return LabelID(n), true
	case int32:
		return LabelID(n), true
	case int64:
		return LabelID(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return LabelID(n), true
	case uint8:
		return LabelID(n), true
	case uint16:
		return LabelID(n), true
	case uint32:
		return LabelID(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return LabelID(n), true
	case float32:
		return floatToLabelID(float64(n))
	case float64:
		return floatToLabelID(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return LabelID(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToLabelID(f)
	default:
		return 0, false
	}
}
