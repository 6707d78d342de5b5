package codec

import (
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/constraints"
)

// Normalize reduces a raw scalar to its canonical in-memory form:
// int64 for signed integers, uint64 for unsigned, float64 for floats,
// and nil for missing. Strings, bools, time.Time and time.Duration pass
// through unchanged. Unrecognized types pass through for object handling.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	case float32:
		return float64(x)
	case float64:
		return x
	default:
		return v
	}
}

// IsNull reports whether the canonical scalar represents a missing value:
// nil, a floating NaN, or the reserved temporal sentinel.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	case time.Time:
		// the zero time is the scalar form of the not-a-time sentinel
		return x.IsZero()
	default:
		return false
	}
}

// AnySlice converts a typed slice into []any with scalars normalized.
func AnySlice[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = Normalize(v)
	}
	return out
}

// TicksOf converts a temporal scalar to nanosecond ticks. Missing values
// map to NullTick. The second result reports whether the scalar was
// temporal at all.
func TicksOf(v any) (int64, bool) {
	switch x := v.(type) {
	case nil:
		return NullTick, true
	case time.Time:
		if x.IsZero() {
			return NullTick, true
		}
		return x.UnixNano(), true
	case time.Duration:
		return int64(x), true
	default:
		return 0, false
	}
}

// Compare orders two canonical scalars of compatible types. Missing values
// sort after every concrete value. Numeric scalars compare across exact
// integer and floating families.
func Compare(a, b any) int {
	an, bn := IsNull(a), IsNull(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}

	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return compareOrdered(af, bf)
		}
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return compareOrdered(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return compareOrdered(boolToInt(av), boolToInt(bv))
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case time.Duration:
		if bv, ok := b.(time.Duration); ok {
			return compareOrdered(int64(av), int64(bv))
		}
	}
	// Incomparable types fall back to type-name ordering so sorts stay stable.
	return compareOrdered(typeRank(a), typeRank(b))
}

func compareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func typeRank(v any) string {
	switch v.(type) {
	case bool:
		return "0bool"
	case int64, uint64, float64:
		return "1number"
	case string:
		return "2string"
	default:
		return "3other"
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// NumericEqual reports exact cross-family numeric equality. Integers beyond
// float precision compare exactly within their own family.
func NumericEqual(a, b any) bool {
	ai, aIsInt := a.(int64)
	bi, bIsInt := b.(int64)
	if aIsInt && bIsInt {
		return ai == bi
	}
	au, aIsUint := a.(uint64)
	bu, bIsUint := b.(uint64)
	if aIsUint && bIsUint {
		return au == bu
	}
	if aIsInt && bIsUint {
		return ai >= 0 && uint64(ai) == bu
	}
	if aIsUint && bIsInt {
		return bi >= 0 && uint64(bi) == au
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return aok && bok && af == bf
}

// Hash sentinel keys. Concrete values never collide with these because
// every concrete value is hashed through xxhash with a type prefix.
const (
	nullKey uint64 = 0
)

// KeyOf returns a hash key for a canonical scalar, used by the label lookup
// structure and the uniqueness engine. All missing representations collapse
// to a single key; numeric values that are exactly representable as float64
// share a key across families.
func KeyOf(v any) uint64 {
	if IsNull(v) {
		return nullKey
	}
	var d xxhash.Digest
	var buf [9]byte
	switch x := v.(type) {
	case int64:
		buf[0] = 'n'
		putUint64(buf[1:], math.Float64bits(float64(x)))
		_, _ = d.Write(buf[:])
	case uint64:
		if x <= 1<<53 {
			buf[0] = 'n'
			putUint64(buf[1:], math.Float64bits(float64(x)))
		} else {
			buf[0] = 'u'
			putUint64(buf[1:], x)
		}
		_, _ = d.Write(buf[:])
	case float64:
		buf[0] = 'n'
		putUint64(buf[1:], math.Float64bits(x))
		_, _ = d.Write(buf[:])
	case string:
		return xxhash.Sum64String("s" + x)
	case bool:
		buf[0] = 'b'
		if x {
			buf[1] = 1
		}
		_, _ = d.Write(buf[:2])
	case time.Time:
		buf[0] = 't'
		putUint64(buf[1:], uint64(x.UnixNano()))
		_, _ = d.Write(buf[:])
	case time.Duration:
		buf[0] = 'd'
		putUint64(buf[1:], uint64(x))
		_, _ = d.Write(buf[:])
	default:
		return xxhash.Sum64String("o" + typeRank(v))
	}
	return d.Sum64()
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
