package codec

import (
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Column is the homogeneous typed backing produced by Coerce. Fixed-width
// and string data live in an Arrow array; the object fallback keeps a Go
// slice because Arrow has no mixed-type array.
type Column struct {
	dtype Dtype
	arr   arrow.Array
	objs  []any
}

// Dtype returns the resolved element type.
func (c *Column) Dtype() Dtype { return c.dtype }

// Len returns the number of elements.
func (c *Column) Len() int {
	if c.arr != nil {
		return c.arr.Len()
	}
	return len(c.objs)
}

// Value returns the canonical scalar at position i. Missing temporal slots
// come back as nil, missing floats as NaN, so callers see the family's
// canonical null.
func (c *Column) Value(i int) any {
	switch arr := c.arr.(type) {
	case *array.Int64:
		return arr.Value(i)
	case *array.Uint64:
		return arr.Value(i)
	case *array.Float64:
		return arr.Value(i)
	case *array.String:
		if arr.IsNull(i) {
			return nil
		}
		return arr.Value(i)
	case *array.Boolean:
		return arr.Value(i)
	case *array.Timestamp:
		if arr.IsNull(i) || int64(arr.Value(i)) == NullTick {
			return nil
		}
		return time.Unix(0, int64(arr.Value(i))).UTC()
	case *array.Duration:
		if arr.IsNull(i) || int64(arr.Value(i)) == NullTick {
			return nil
		}
		return time.Duration(arr.Value(i))
	}
	return c.objs[i]
}

// IsNull reports whether position i holds the canonical missing value of
// the column's dtype family.
func (c *Column) IsNull(i int) bool {
	switch arr := c.arr.(type) {
	case *array.Float64:
		return math.IsNaN(arr.Value(i))
	case *array.Timestamp:
		return arr.IsNull(i) || int64(arr.Value(i)) == NullTick
	case *array.Duration:
		return arr.IsNull(i) || int64(arr.Value(i)) == NullTick
	case *array.String:
		return arr.IsNull(i)
	case nil:
		return IsNull(c.objs[i])
	default:
		return arr.IsNull(i)
	}
}

// Array returns the underlying Arrow array, or nil for object columns.
// The caller does not receive an extra reference.
func (c *Column) Array() arrow.Array { return c.arr }

// Objects returns the object backing, or nil for Arrow-backed columns.
func (c *Column) Objects() []any { return c.objs }

// Values materializes every element as a canonical scalar slice.
func (c *Column) Values() []any {
	out := make([]any, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

// Release drops the Arrow array reference. Object columns are managed by
// the Go garbage collector.
func (c *Column) Release() {
	if c.arr != nil {
		c.arr.Release()
	}
}

// Retain adds a reference to the Arrow backing so the column can be shared.
func (c *Column) Retain() {
	if c.arr != nil {
		c.arr.Retain()
	}
}

// MemoryUsage reports the byte footprint of the backing storage. Shallow
// mode counts fixed-width storage only, estimating string and object
// elements at header size; deep mode walks variable-sized payloads.
func (c *Column) MemoryUsage(deep bool) int64 {
	n := c.Len()
	if n == 0 {
		return 0
	}
	const headerSize = 16 // string/interface header estimate
	switch c.dtype {
	case String:
		total := int64(n) * headerSize
		if deep {
			arr := c.arr.(*array.String)
			for i := 0; i < n; i++ {
				if !arr.IsNull(i) {
					total += int64(len(arr.Value(i)))
				}
			}
		}
		return total
	case Object:
		total := int64(n) * headerSize
		if deep {
			for _, v := range c.objs {
				if s, ok := v.(string); ok {
					total += int64(len(s))
				} else if v != nil {
					total += 8
				}
			}
		}
		return total
	case Bool:
		// Arrow packs booleans into a bitmap.
		return int64((n + 7) / 8)
	default:
		return int64(n) * 8
	}
}

// fromObjects wraps an already-normalized object slice.
func fromObjects(values []any) *Column {
	return &Column{dtype: Object, objs: values}
}

// BuildColumn constructs a Column of the given resolved dtype from
// canonical scalars. The dtype must be concrete (not Any) and every value
// must already conform; Coerce is the validating entry point.
func BuildColumn(values []any, dtype Dtype, mem memory.Allocator) *Column {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	switch dtype {
	case Int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for _, v := range values {
			b.Append(asInt64(v))
		}
		return &Column{dtype: dtype, arr: b.NewArray()}
	case Uint64:
		b := array.NewUint64Builder(mem)
		defer b.Release()
		for _, v := range values {
			b.Append(asUint64(v))
		}
		return &Column{dtype: dtype, arr: b.NewArray()}
	case Float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for _, v := range values {
			if IsNull(v) {
				b.Append(math.NaN())
				continue
			}
			f, _ := toFloat(v)
			b.Append(f)
		}
		return &Column{dtype: dtype, arr: b.NewArray()}
	case String:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for _, v := range values {
			if v == nil {
				b.AppendNull()
				continue
			}
			b.Append(v.(string))
		}
		return &Column{dtype: dtype, arr: b.NewArray()}
	case Bool:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		for _, v := range values {
			b.Append(v.(bool))
		}
		return &Column{dtype: dtype, arr: b.NewArray()}
	case Timestamp:
		b := array.NewTimestampBuilder(mem, &arrow.TimestampType{Unit: arrow.Nanosecond})
		defer b.Release()
		for _, v := range values {
			ticks, _ := TicksOf(v)
			if ticks == NullTick {
				b.AppendNull()
				continue
			}
			b.Append(arrow.Timestamp(ticks))
		}
		return &Column{dtype: dtype, arr: b.NewArray()}
	case Duration:
		b := array.NewDurationBuilder(mem, &arrow.DurationType{Unit: arrow.Nanosecond})
		defer b.Release()
		for _, v := range values {
			ticks, ok := TicksOf(v)
			if !ok || ticks == NullTick {
				b.AppendNull()
				continue
			}
			b.Append(arrow.Duration(ticks))
		}
		return &Column{dtype: dtype, arr: b.NewArray()}
	default:
		out := make([]any, len(values))
		copy(out, values)
		return fromObjects(out)
	}
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case uint64:
		return int64(x)
	case float64:
		return int64(x)
	default:
		return 0
	}
}

func asUint64(v any) uint64 {
	switch x := v.(type) {
	case int64:
		return uint64(x)
	case uint64:
		return x
	case float64:
		return uint64(x)
	default:
		return 0
	}
}
