// Package codec converts heterogeneous scalar input into a canonical typed
// representation backed by Apache Arrow arrays, applying numeric widening
// rules and null-sentinel encoding for temporal data.
package codec

import "math"

// Dtype identifies the element type of an index or column.
type Dtype int

const (
	// Any requests automatic type inference from the input values.
	Any Dtype = iota
	// Int64 is the signed 64-bit integer type.
	Int64
	// Uint64 is the unsigned 64-bit integer type.
	Uint64
	// Float64 is the default floating-point type; no narrower float is produced.
	Float64
	// String is the UTF-8 string type.
	String
	// Bool is the boolean type.
	Bool
	// Timestamp is a point in time encoded as signed 64-bit nanosecond ticks.
	Timestamp
	// Duration is an elapsed time encoded as signed 64-bit nanosecond ticks.
	Duration
	// Object is the generic fallback type for mixed or unrepresentable input.
	Object
)

// NullTick is the reserved tick value representing a missing timestamp or
// duration ("not-a-time").
const NullTick int64 = math.MinInt64

// String returns the dtype name.
func (d Dtype) String() string {
	switch d {
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	case Float64:
		return "float64"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Timestamp:
		return "timestamp"
	case Duration:
		return "duration"
	case Object:
		return "object"
	default:
		return "any"
	}
}

// IsNumeric reports whether the dtype belongs to the numeric family.
func (d Dtype) IsNumeric() bool {
	return d == Int64 || d == Uint64 || d == Float64
}

// IsInteger reports whether the dtype is an exact integer type.
func (d Dtype) IsInteger() bool {
	return d == Int64 || d == Uint64
}

// IsTemporal reports whether the dtype encodes time-based ticks.
func (d Dtype) IsTemporal() bool {
	return d == Timestamp || d == Duration
}

// CanHoldNull reports whether the dtype has a representation for missing
// values. Exact integer and boolean containers cannot represent "missing";
// NA-oriented operations on them are not applicable rather than errors.
func (d Dtype) CanHoldNull() bool {
	switch d {
	case Float64, String, Timestamp, Duration, Object:
		return true
	default:
		return false
	}
}

// Family returns the dtype family name used in constructor validation
// messages.
func (d Dtype) Family() string {
	switch {
	case d.IsNumeric():
		return "numeric"
	case d.IsTemporal():
		return "temporal"
	case d == String:
		return "string"
	case d == Bool:
		return "bool"
	default:
		return "object"
	}
}
