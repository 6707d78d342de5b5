// Package index provides the ordered label container used to align and
// look up data in a columnar table: positionally and label-addressable,
// optionally deduplicated, with monotonicity tracking and Arrow-backed
// typed storage.
package index

import (
	"fmt"
	"sort"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/labelindex/internal/codec"
	"github.com/paveg/labelindex/internal/errors"
	"github.com/paveg/labelindex/internal/null"
)

// Index is an ordered sequence of typed labels. Operations never mutate the
// receiver; anything that changes content returns a new Index.
type Index struct {
	name string
	col  *codec.Column
	mem  memory.Allocator

	// caches, built lazily and never invalidated because the backing
	// storage is immutable after construction
	lookup map[uint64][]int
	mono   *monotonicity
}

type monotonicity struct {
	inc, dec             bool
	strictInc, strictDec bool
}

// New builds an Index from raw values, coercing them through the codec.
// A dtype of codec.Any infers the element type from the input.
func New(values []any, dtype codec.Dtype, name string, mem memory.Allocator) (*Index, error) {
	col, err := codec.Coerce(values, dtype, mem)
	if err != nil {
		return nil, err
	}
	return &Index{name: name, col: col, mem: mem}, nil
}

// NewNumeric builds an index restricted to the numeric dtype family.
// Declaring a dtype outside the family fails before any coercion happens.
func NewNumeric(values []any, dtype codec.Dtype, name string, mem memory.Allocator) (*Index, error) {
	if err := codec.ValidateFamily("NewNumeric", "numeric", dtype); err != nil {
		return nil, err
	}
	idx, err := New(values, dtype, name, mem)
	if err != nil {
		return nil, err
	}
	if !idx.Dtype().IsNumeric() {
		idx.Release()
		return nil, errors.NewTypeConversionError("NewNumeric",
			fmt.Sprintf("cannot cast %s values to numeric type", idx.Dtype()))
	}
	return idx, nil
}

// NewTemporal builds an index restricted to the temporal dtype family.
func NewTemporal(values []any, dtype codec.Dtype, name string, mem memory.Allocator) (*Index, error) {
	if err := codec.ValidateFamily("NewTemporal", "temporal", dtype); err != nil {
		return nil, err
	}
	idx, err := New(values, dtype, name, mem)
	if err != nil {
		return nil, err
	}
	if !idx.Dtype().IsTemporal() {
		idx.Release()
		return nil, errors.NewTypeConversionError("NewTemporal",
			fmt.Sprintf("cannot cast %s values to temporal type", idx.Dtype()))
	}
	return idx, nil
}

// NewObject builds an index with the generic object dtype, skipping inference.
func NewObject(values []any, name string, mem memory.Allocator) (*Index, error) {
	return New(values, codec.Object, name, mem)
}

// FromColumn wraps an existing column without copying. The index takes its
// own reference to the backing storage.
func FromColumn(col *codec.Column, name string, mem memory.Allocator) *Index {
	col.Retain()
	return &Index{name: name, col: col, mem: mem}
}

// Name returns the optional index name.
func (ix *Index) Name() string { return ix.name }

// Rename returns an index with the same labels under a new name.
func (ix *Index) Rename(name string) *Index {
	ix.col.Retain()
	return &Index{name: name, col: ix.col, mem: ix.mem}
}

// Dtype returns the resolved element type.
func (ix *Index) Dtype() codec.Dtype { return ix.col.Dtype() }

// Allocator returns the allocator used for derived indexes.
func (ix *Index) Allocator() memory.Allocator { return ix.mem }

// Len returns the number of labels.
func (ix *Index) Len() int { return ix.col.Len() }

// Column exposes the typed backing for engine-level consumers.
func (ix *Index) Column() *codec.Column { return ix.col }

// Values materializes the labels as canonical scalars.
func (ix *Index) Values() []any { return ix.col.Values() }

// IsNull reports whether the label at position i is missing.
func (ix *Index) IsNull(i int) bool { return ix.col.IsNull(i) }

// value is unchecked positional access for internal loops.
func (ix *Index) value(i int) any { return ix.col.Value(i) }

// At returns the label at the given position. Negative positions count
// from the end.
func (ix *Index) At(pos int) (any, error) {
	n := ix.Len()
	p := pos
	if p < 0 {
		p += n
	}
	if p < 0 || p >= n {
		return nil, errors.NewRangeError("At", pos, n)
	}
	return ix.col.Value(p), nil
}

// GetByLabel returns the first position holding the given label.
func (ix *Index) GetByLabel(label any) (int, error) {
	positions := ix.Positions(label)
	if len(positions) == 0 {
		return 0, errors.NewNotFoundError("GetByLabel", fmt.Sprint(label))
	}
	return positions[0], nil
}

// Positions returns every position holding the given label, in order.
// Missing-value labels locate missing slots.
func (ix *Index) Positions(label any) []int {
	ix.ensureLookup()
	label = codec.Normalize(label)
	var out []int
	for _, p := range ix.lookup[codec.KeyOf(label)] {
		if null.EqualNullAware(ix.value(p), label) {
			out = append(out, p)
		}
	}
	return out
}

// IsUnique reports whether no label occurs more than once. Missing values
// compare equal to each other here, so two nulls count as a duplicate.
func (ix *Index) IsUnique() bool {
	ix.ensureLookup()
	for _, bucket := range ix.lookup {
		// buckets with several positions hold either duplicates or hash
		// collisions; only verified equality counts
		for i := 1; i < len(bucket); i++ {
			for j := 0; j < i; j++ {
				if null.EqualNullAware(ix.value(bucket[i]), ix.value(bucket[j])) {
					return false
				}
			}
		}
	}
	return true
}

// Equals reports value-wise equality ignoring the name. A pair of missing
// values counts as equal; numeric labels compare across integer and float
// indexes, but never against string-typed labels.
func (ix *Index) Equals(other *Index) bool {
	if other == nil || ix.Len() != other.Len() {
		return false
	}
	for i, n := 0, ix.Len(); i < n; i++ {
		if !null.EqualNullAware(ix.value(i), other.value(i)) {
			return false
		}
	}
	return true
}

// Identical reports Equals plus matching dtype and name.
func (ix *Index) Identical(other *Index) bool {
	return other != nil &&
		ix.Dtype() == other.Dtype() &&
		ix.name == other.name &&
		ix.Equals(other)
}

// IsMonotonicIncreasing reports whether each label is >= its predecessor.
// Empty and single-element indexes are monotonic in both directions.
func (ix *Index) IsMonotonicIncreasing() bool { return ix.monotonic().inc }

// IsMonotonicDecreasing reports whether each label is <= its predecessor.
func (ix *Index) IsMonotonicDecreasing() bool { return ix.monotonic().dec }

// IsStrictlyMonotonicIncreasing is IsMonotonicIncreasing with strict
// inequality between neighbors.
func (ix *Index) IsStrictlyMonotonicIncreasing() bool { return ix.monotonic().strictInc }

// IsStrictlyMonotonicDecreasing is IsMonotonicDecreasing with strict
// inequality between neighbors.
func (ix *Index) IsStrictlyMonotonicDecreasing() bool { return ix.monotonic().strictDec }

func (ix *Index) monotonic() *monotonicity {
	if ix.mono != nil {
		return ix.mono
	}
	m := &monotonicity{inc: true, dec: true, strictInc: true, strictDec: true}
	n := ix.Len()
	if n > 1 {
		hasNull := false
		for i := 0; i < n && !hasNull; i++ {
			hasNull = ix.IsNull(i)
		}
		if hasNull {
			m.inc, m.dec, m.strictInc, m.strictDec = false, false, false, false
		} else {
			for i := 1; i < n; i++ {
				switch codec.Compare(ix.value(i-1), ix.value(i)) {
				case -1:
					m.dec, m.strictDec = false, false
				case 1:
					m.inc, m.strictInc = false, false
				default:
					m.strictInc, m.strictDec = false, false
				}
			}
		}
	}
	ix.mono = m
	return m
}

// Insert returns a new index with the value inserted at the given position.
// Inserting a missing value into an exact integer index upgrades the result
// to float64 (or object for a not-a-time sentinel) because the integer
// dtype cannot represent "missing".
func (ix *Index) Insert(pos int, value any) (*Index, error) {
	n := ix.Len()
	p := pos
	if p < 0 {
		p += n
	}
	if p < 0 || p > n {
		return nil, errors.NewRangeError("Insert", pos, n)
	}

	value = codec.Normalize(value)
	current := ix.Values()
	values := make([]any, 0, n+1)
	values = append(values, current[:p]...)
	values = append(values, value)
	values = append(values, current[p:]...)

	out, err := ix.rebuild("Insert", values, ix.insertDtype(value))
	if err != nil {
		return ix.rebuild("Insert", values, codec.Object)
	}
	return out, nil
}

func (ix *Index) insertDtype(value any) codec.Dtype {
	d := ix.Dtype()
	if codec.IsNull(value) {
		if t, isTime := value.(time.Time); isTime && t.IsZero() && !d.IsTemporal() {
			// a not-a-time sentinel only fits temporal storage
			return codec.Object
		}
		if d.CanHoldNull() {
			return d
		}
		if d.IsNumeric() {
			return codec.Float64
		}
		return codec.Object
	}
	if conforms(value, d) {
		return d
	}
	if d.IsNumeric() {
		if _, ok := toNumeric(value); ok {
			return codec.Float64
		}
	}
	return codec.Object
}

// Fillna returns a new index with every missing label replaced by value.
// The receiver is never mutated and the result is always a distinct object,
// even when the index holds no missing labels. The second result is false
// when the dtype cannot represent "missing" and the operation does not
// apply.
func (ix *Index) Fillna(value any) (*Index, bool) {
	if !null.CanHoldNull(ix.Dtype()) {
		return ix.Rename(ix.name), false
	}
	value = codec.Normalize(value)

	values := ix.Values()
	changed := false
	for i := range values {
		if ix.IsNull(i) {
			values[i] = value
			changed = true
		}
	}
	if !changed {
		return ix.Rename(ix.name), true
	}

	target := ix.Dtype()
	if !conforms(value, target) {
		if target.IsNumeric() {
			if _, ok := toNumeric(value); ok {
				target = codec.Float64
			} else {
				target = codec.Object
			}
		} else {
			target = codec.Object
		}
	}
	out, err := ix.rebuild("Fillna", values, target)
	if err != nil {
		out, _ = ix.rebuild("Fillna", values, codec.Object)
	}
	return out, true
}

// SearchSorted returns the insertion position in [0, Len] that would keep
// ascending order, as a plain binary-search probe. It does not require the
// index to actually be sorted.
func (ix *Index) SearchSorted(value any) int {
	value = codec.Normalize(value)
	return sort.Search(ix.Len(), func(i int) bool {
		return codec.Compare(ix.value(i), value) >= 0
	})
}

// MemoryUsage reports the byte footprint of the backing storage. Deep mode
// additionally walks variable-sized string and object elements. Both modes
// report 0 for an empty index and the same number for fixed-width dtypes.
func (ix *Index) MemoryUsage(deep bool) int64 {
	return ix.col.MemoryUsage(deep)
}

// AsType returns a converted copy of the index with the requested dtype.
func (ix *Index) AsType(dtype codec.Dtype) (*Index, error) {
	return ix.rebuild("AsType", ix.Values(), dtype)
}

// Isin reports, per label, membership in the given value set. Missing
// values match only an explicitly missing probe.
func (ix *Index) Isin(probes []any) []bool {
	byKey := make(map[uint64][]any, len(probes))
	for _, p := range probes {
		p = codec.Normalize(p)
		k := codec.KeyOf(p)
		byKey[k] = append(byKey[k], p)
	}
	out := make([]bool, ix.Len())
	for i := range out {
		v := ix.value(i)
		for _, p := range byKey[codec.KeyOf(v)] {
			if null.EqualNullAware(v, p) {
				out[i] = true
				break
			}
		}
	}
	return out
}

// String returns a short description for debugging output.
func (ix *Index) String() string {
	return fmt.Sprintf("Index[%s]: %s (len=%d)", ix.Dtype(), ix.name, ix.Len())
}

// Release drops the reference to the backing storage.
func (ix *Index) Release() {
	if ix.col != nil {
		ix.col.Release()
	}
}

func (ix *Index) rebuild(op string, values []any, dtype codec.Dtype) (*Index, error) {
	col, err := codec.Coerce(values, dtype, ix.mem)
	if err != nil {
		return nil, errors.NewInternalError(op, err)
	}
	return &Index{name: ix.name, col: col, mem: ix.mem}, nil
}

func (ix *Index) ensureLookup() {
	if ix.lookup != nil {
		return
	}
	n := ix.Len()
	lookup := make(map[uint64][]int, n)
	for i := 0; i < n; i++ {
		k := codec.KeyOf(ix.value(i))
		lookup[k] = append(lookup[k], i)
	}
	ix.lookup = lookup
}

func conforms(v any, d codec.Dtype) bool {
	if codec.IsNull(v) {
		return d.CanHoldNull()
	}
	switch v.(type) {
	case int64:
		return d == codec.Int64 || d == codec.Float64 || d == codec.Object
	case uint64:
		return d == codec.Uint64 || d == codec.Float64 || d == codec.Object
	case float64:
		return d == codec.Float64 || d == codec.Object
	case string:
		return d == codec.String || d == codec.Object
	case bool:
		return d == codec.Bool || d == codec.Object
	case time.Time:
		return d == codec.Timestamp || d == codec.Object
	case time.Duration:
		return d == codec.Duration || d == codec.Object
	default:
		return d == codec.Object
	}
}

func toNumeric(v any) (float64, bool) {
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
