// Package null defines how missing values participate in equality,
// counting and fill operations.
//
// Two predicates are exported on purpose: Equal follows ordinary scalar
// comparison where NaN never equals NaN, while EqualNullAware treats any
// two missing values as equal so they collapse to one entry during
// deduplication, counting and grouping. Callers must not reuse one where
// the other is meant.
package null

import (
	"math"
	"time"

	"github.com/paveg/labelindex/internal/codec"
)

// IsNull reports whether a canonical scalar is missing.
func IsNull(v any) bool { return codec.IsNull(v) }

// CanHoldNull reports whether the dtype has a missing-value representation.
// NA-oriented operations on containers without one are "not applicable",
// never errors.
func CanHoldNull(d codec.Dtype) bool { return d.CanHoldNull() }

// Canonical returns the single missing-value representation for the dtype
// family: NaN for floating point, nil otherwise (object null and the
// temporal not-a-time sentinel both surface as nil scalars).
func Canonical(d codec.Dtype) any {
	if d == codec.Float64 {
		return math.NaN()
	}
	return nil
}

// Equal is general scalar equality: NaN does not equal NaN, numeric values
// compare across exact integer and floating families, and numeric never
// equals a textually identical string.
func Equal(a, b any) bool {
	a, b = codec.Normalize(a), codec.Normalize(b)
	if codec.IsNull(a) || codec.IsNull(b) {
		return false
	}
	return concreteEqual(a, b)
}

// EqualNullAware is the deduplication predicate: two missing values are
// equal regardless of their original representation.
func EqualNullAware(a, b any) bool {
	a, b = codec.Normalize(a), codec.Normalize(b)
	an, bn := codec.IsNull(a), codec.IsNull(b)
	if an || bn {
		return an && bn
	}
	return concreteEqual(a, b)
}

func concreteEqual(a, b any) bool {
	switch av := a.(type) {
	case int64, uint64, float64:
		switch b.(type) {
		case int64, uint64, float64:
			return codec.NumericEqual(a, b)
		}
		return false
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case time.Duration:
		bv, ok := b.(time.Duration)
		return ok && av == bv
	default:
		return a == b
	}
}
