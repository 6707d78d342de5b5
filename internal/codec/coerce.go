package codec

import (
	"fmt"
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/labelindex/internal/errors"
)

const coerceOp = "Coerce"

// Coerce converts raw scalar input into a homogeneous typed Column. When
// dtype is Any the element type is inferred using the numeric widening
// rules; otherwise every input must conform to the declared dtype.
func Coerce(raw []any, dtype Dtype, mem memory.Allocator) (*Column, error) {
	values := make([]any, len(raw))
	for i, v := range raw {
		values[i] = Normalize(v)
	}

	if dtype == Any {
		dtype = infer(values)
	}

	if err := validate(values, dtype); err != nil {
		return nil, err
	}
	return BuildColumn(values, dtype, mem), nil
}

// ValidateFamily rejects a declared dtype outside the family a typed
// constructor accepts.
func ValidateFamily(op string, expected string, declared Dtype) error {
	if declared == Any {
		return nil
	}
	var family string
	switch expected {
	case "numeric":
		if declared.IsNumeric() {
			return nil
		}
		family = declared.Family()
	case "temporal":
		if declared.IsTemporal() {
			return nil
		}
		family = declared.Family()
	default:
		if declared.Family() == expected {
			return nil
		}
		family = declared.Family()
	}
	return errors.NewTypeConversionError(op,
		fmt.Sprintf("Incorrect dtype passed: expected %s, received %s (%s)",
			expected, declared, family))
}

func infer(values []any) Dtype {
	if len(values) == 0 {
		return Object
	}
	var hasInt, hasUint, bigUint, hasNeg, hasFloat bool
	var hasStr, hasBool, hasTime, hasDur, hasNil, hasOther bool
	for _, v := range values {
		switch x := v.(type) {
		case nil:
			hasNil = true
		case int64:
			hasInt = true
			if x < 0 {
				hasNeg = true
			}
		case uint64:
			hasUint = true
			if x > math.MaxInt64 {
				bigUint = true
			}
		case float64:
			hasFloat = true
		case string:
			hasStr = true
		case bool:
			hasBool = true
		case time.Time:
			hasTime = true
		case time.Duration:
			hasDur = true
		default:
			hasOther = true
		}
	}

	numeric := hasInt || hasUint || hasFloat
	switch {
	case hasOther:
		return Object
	case numeric && !hasStr && !hasBool && !hasTime && !hasDur:
		if hasFloat {
			return Float64
		}
		if bigUint {
			if hasNeg {
				return Float64
			}
			return Uint64
		}
		if hasNil {
			return Float64
		}
		return Int64
	case hasStr && !numeric && !hasBool && !hasTime && !hasDur:
		return String
	case hasBool && !numeric && !hasStr && !hasTime && !hasDur:
		if hasNil {
			return Object
		}
		return Bool
	case hasTime && !numeric && !hasStr && !hasBool && !hasDur:
		return Timestamp
	case hasDur && !numeric && !hasStr && !hasBool && !hasTime:
		return Duration
	default:
		return Object
	}
}

func validate(values []any, dtype Dtype) error {
	switch dtype {
	case Int64, Uint64, Float64:
		return validateNumeric(values, dtype)
	case String:
		for _, v := range values {
			if v == nil {
				continue
			}
			if _, ok := v.(string); !ok {
				return errors.NewTypeConversionError(coerceOp,
					fmt.Sprintf("cannot cast %T to string type", v))
			}
		}
	case Bool:
		for _, v := range values {
			if v == nil {
				return errors.NewTypeConversionError(coerceOp,
					"bool index cannot hold missing values")
			}
			if _, ok := v.(bool); !ok {
				return errors.NewTypeConversionError(coerceOp,
					fmt.Sprintf("cannot cast %T to bool type", v))
			}
		}
	case Timestamp:
		for _, v := range values {
			if v == nil {
				continue
			}
			if _, ok := v.(time.Time); !ok {
				return errors.NewTypeConversionError(coerceOp,
					fmt.Sprintf("cannot cast %T to timestamp type", v))
			}
		}
	case Duration:
		for _, v := range values {
			if v == nil {
				continue
			}
			if _, ok := v.(time.Duration); !ok {
				return errors.NewTypeConversionError(coerceOp,
					fmt.Sprintf("cannot cast %T to duration type", v))
			}
		}
	}
	return nil
}

func validateNumeric(values []any, dtype Dtype) error {
	for _, v := range values {
		switch x := v.(type) {
		case nil:
			if dtype.IsInteger() {
				return errors.NewTypeConversionError(coerceOp,
					fmt.Sprintf("%s index cannot hold missing values", dtype))
			}
		case int64:
			if dtype == Uint64 && x < 0 {
				return errors.NewOverflowError(coerceOp,
					"Trying to coerce negative values to unsigned integers")
			}
		case uint64:
			if dtype == Int64 && x > math.MaxInt64 {
				return errors.NewOverflowError(coerceOp,
					fmt.Sprintf("value %d overflows int64", x))
			}
		case float64:
			if math.IsNaN(x) {
				if dtype.IsInteger() {
					return errors.NewTypeConversionError(coerceOp,
						fmt.Sprintf("%s index cannot hold missing values", dtype))
				}
				continue
			}
			if dtype.IsInteger() && x != math.Trunc(x) {
				return errors.NewTypeConversionError(coerceOp,
					"Trying to coerce float values to integers")
			}
			if dtype == Uint64 && x < 0 {
				return errors.NewOverflowError(coerceOp,
					"Trying to coerce negative values to unsigned integers")
			}
		case string:
			return errors.NewTypeConversionError(coerceOp,
				fmt.Sprintf("cannot cast string %q to numeric type", x))
		default:
			return errors.NewTypeConversionError(coerceOp,
				fmt.Sprintf("cannot convert %T to %s", v, dtype))
		}
	}
	return nil
}
