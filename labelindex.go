// Package labelindex provides an ordered, typed, deduplicable label
// container for columnar data: positionally and label-addressable, with
// uniqueness and counting operations, null-aware semantics, and guarded
// copy-on-write mutation through derived views.
// This package is the sole public API for the library.
package labelindex

import (
	"fmt"
	"reflect"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/labelindex/internal/codec"
	"github.com/paveg/labelindex/internal/config"
	"github.com/paveg/labelindex/internal/cow"
	"github.com/paveg/labelindex/internal/errors"
	"github.com/paveg/labelindex/internal/index"
	"github.com/paveg/labelindex/internal/null"
	"github.com/paveg/labelindex/internal/uniq"
)

// Dtype identifies the element type of an index.
type Dtype = codec.Dtype

// Re-exported dtype values.
const (
	Any       = codec.Any
	Int64     = codec.Int64
	Uint64    = codec.Uint64
	Float64   = codec.Float64
	String    = codec.String
	Bool      = codec.Bool
	Timestamp = codec.Timestamp
	Duration  = codec.Duration
	Object    = codec.Object
)

// Index is the public label index type. It wraps the internal index to
// hide implementation details. All operations are read-only with respect
// to the receiver; content changes return new indexes.
type Index struct {
	ix *index.Index
}

// Option configures index construction.
type Option func(*buildOptions)

type buildOptions struct {
	dtype Dtype
	name  string
	mem   memory.Allocator
	copy  bool
}

// WithDtype declares the element type instead of inferring it.
func WithDtype(d Dtype) Option {
	return func(o *buildOptions) { o.dtype = d }
}

// WithName sets the optional index name.
func WithName(name string) Option {
	return func(o *buildOptions) { o.name = name }
}

// WithAllocator sets the Arrow allocator for the backing storage.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *buildOptions) { o.mem = mem }
}

// WithCopy guarantees the backing storage is not aliased to caller-owned
// storage. Construction through the codec always builds fresh storage, so
// this is a guarantee the option documents rather than changes.
func WithCopy(copyInput bool) Option {
	return func(o *buildOptions) { o.copy = copyInput }
}

// New constructs an index from a slice of values of any supported element
// type. A non-collection input is a type error identifying the offending
// value.
func New(values any, opts ...Option) (*Index, error) {
	o := gather(opts)
	raw, err := collection(values)
	if err != nil {
		return nil, err
	}
	ix, err := index.New(raw, o.dtype, o.name, o.mem)
	if err != nil {
		return nil, err
	}
	return &Index{ix: ix}, nil
}

// NewNumeric constructs an index restricted to the numeric dtype family.
// Declaring a non-numeric dtype fails with a message naming the expected
// and received dtype families.
func NewNumeric(values any, opts ...Option) (*Index, error) {
	o := gather(opts)
	raw, err := collection(values)
	if err != nil {
		return nil, err
	}
	ix, err := index.NewNumeric(raw, o.dtype, o.name, o.mem)
	if err != nil {
		return nil, err
	}
	return &Index{ix: ix}, nil
}

// NewTemporal constructs an index restricted to the temporal dtype family.
func NewTemporal(values any, opts ...Option) (*Index, error) {
	o := gather(opts)
	raw, err := collection(values)
	if err != nil {
		return nil, err
	}
	ix, err := index.NewTemporal(raw, o.dtype, o.name, o.mem)
	if err != nil {
		return nil, err
	}
	return &Index{ix: ix}, nil
}

func gather(opts []Option) *buildOptions {
	o := &buildOptions{dtype: codec.Any}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// collection converts any supported slice into []any. Scalars are rejected
// the way the container contract requires.
func collection(values any) ([]any, error) {
	switch v := values.(type) {
	case nil:
		return nil, errors.NewTypeConversionError("New",
			"Index(...) must be called with a collection of some kind, <nil> was passed")
	case []any:
		return v, nil
	case []int:
		return codec.AnySlice(v), nil
	case []int64:
		return codec.AnySlice(v), nil
	case []uint64:
		return codec.AnySlice(v), nil
	case []float64:
		return codec.AnySlice(v), nil
	case []string:
		return codec.AnySlice(v), nil
	case []bool:
		return codec.AnySlice(v), nil
	case []time.Time:
		return codec.AnySlice(v), nil
	case []time.Duration:
		return codec.AnySlice(v), nil
	}
	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.NewTypeConversionError("New",
			fmt.Sprintf("Index(...) must be called with a collection of some kind, %v was passed", values))
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = codec.Normalize(rv.Index(i).Interface())
	}
	return out, nil
}

// Name returns the optional index name.
func (ix *Index) Name() string { return ix.ix.Name() }

// Rename returns an index with the same labels under a new name.
func (ix *Index) Rename(name string) *Index { return &Index{ix: ix.ix.Rename(name)} }

// Dtype returns the resolved element type.
func (ix *Index) Dtype() Dtype { return ix.ix.Dtype() }

// Len returns the number of labels.
func (ix *Index) Len() int { return ix.ix.Len() }

// Values materializes the labels as canonical scalars.
func (ix *Index) Values() []any { return ix.ix.Values() }

// At returns the label at the given position; negative positions count
// from the end.
func (ix *Index) At(pos int) (any, error) { return ix.ix.At(pos) }

// GetByLabel returns the first position holding the given label.
func (ix *Index) GetByLabel(label any) (int, error) { return ix.ix.GetByLabel(label) }

// IsNull reports whether the label at position i is missing.
func (ix *Index) IsNull(i int) bool { return ix.ix.IsNull(i) }

// HasNulls reports whether any label is missing.
func (ix *Index) HasNulls() bool {
	for i, n := 0, ix.Len(); i < n; i++ {
		if ix.ix.IsNull(i) {
			return true
		}
	}
	return false
}

// CanHoldNulls reports whether the dtype can represent "missing"; callers
// should check this before NA-oriented operations on exact integer or
// boolean indexes.
func (ix *Index) CanHoldNulls() bool { return null.CanHoldNull(ix.Dtype()) }

// IsUnique reports whether no label occurs more than once.
func (ix *Index) IsUnique() bool { return ix.ix.IsUnique() }

// Equals reports value-wise equality ignoring the name.
func (ix *Index) Equals(other *Index) bool {
	return other != nil && ix.ix.Equals(other.ix)
}

// Identical reports Equals plus matching dtype and name.
func (ix *Index) Identical(other *Index) bool {
	return other != nil && ix.ix.Identical(other.ix)
}

// IsMonotonicIncreasing reports whether each label is >= its predecessor.
func (ix *Index) IsMonotonicIncreasing() bool { return ix.ix.IsMonotonicIncreasing() }

// IsMonotonicDecreasing reports whether each label is <= its predecessor.
func (ix *Index) IsMonotonicDecreasing() bool { return ix.ix.IsMonotonicDecreasing() }

// IsStrictlyMonotonicIncreasing applies strict inequality between neighbors.
func (ix *Index) IsStrictlyMonotonicIncreasing() bool { return ix.ix.IsStrictlyMonotonicIncreasing() }

// IsStrictlyMonotonicDecreasing applies strict inequality between neighbors.
func (ix *Index) IsStrictlyMonotonicDecreasing() bool { return ix.ix.IsStrictlyMonotonicDecreasing() }

// Insert returns a new index with value inserted at the given position.
func (ix *Index) Insert(pos int, value any) (*Index, error) {
	out, err := ix.ix.Insert(pos, value)
	if err != nil {
		return nil, err
	}
	return &Index{ix: out}, nil
}

// Fillna returns a new index with missing labels replaced by value. The
// second result is false when the dtype cannot represent "missing" and the
// operation does not apply.
func (ix *Index) Fillna(value any) (*Index, bool) {
	out, ok := ix.ix.Fillna(value)
	return &Index{ix: out}, ok
}

// SearchSorted returns the binary-search insertion position for value.
func (ix *Index) SearchSorted(value any) int { return ix.ix.SearchSorted(value) }

// MemoryUsage reports the byte footprint of the backing storage; deep mode
// walks variable-sized elements.
func (ix *Index) MemoryUsage(deep bool) int64 { return ix.ix.MemoryUsage(deep) }

// AsType returns a converted copy with the requested dtype.
func (ix *Index) AsType(dtype Dtype) (*Index, error) {
	out, err := ix.ix.AsType(dtype)
	if err != nil {
		return nil, err
	}
	return &Index{ix: out}, nil
}

// Isin reports per-label membership in the given values.
func (ix *Index) Isin(values []any) []bool { return ix.ix.Isin(values) }

// Unique returns the distinct labels in first-occurrence order with at
// most one canonical null entry.
func (ix *Index) Unique() (*Index, error) {
	out, err := uniq.Unique(ix.ix)
	if err != nil {
		return nil, err
	}
	return &Index{ix: out}, nil
}

// NUnique counts distinct labels, excluding the null entry when dropna is
// true.
func (ix *Index) NUnique(dropna bool) int { return uniq.NUnique(ix.ix, dropna) }

// Factorize encodes the labels as contiguous integer codes plus the
// corresponding unique labels, such that uniques.Values()[codes[i]]
// reconstructs the original sequence.
func (ix *Index) Factorize(sort bool) ([]int, *Index, error) {
	codes, uniques, err := uniq.Factorize(ix.ix, sort)
	if err != nil {
		return nil, nil, err
	}
	return codes, &Index{ix: uniques}, nil
}

// CountOptions controls ValueCounts behavior.
type CountOptions struct {
	Normalize bool
	Sort      bool
	Ascending bool
	DropNA    bool
	Bins      int
}

// DefaultCountOptions returns the standard configuration: sorted by
// descending count, missing values dropped, absolute counts.
func DefaultCountOptions() CountOptions {
	return CountOptions{Sort: true, DropNA: true}
}

// Interval is a right-closed numeric bin (Lo, Hi] reported by binned
// ValueCounts.
type Interval = uniq.Interval

// Counts is the ordered ValueCounts result.
type Counts = uniq.Counts

// ValueCounts tallies occurrences of each distinct label.
func (ix *Index) ValueCounts(opts CountOptions) (*Counts, error) {
	return uniq.ValueCounts(ix.ix, uniq.CountOptions{
		Normalize: opts.Normalize,
		Sort:      opts.Sort,
		Ascending: opts.Ascending,
		DropNA:    opts.DropNA,
		Bins:      opts.Bins,
	})
}

// String returns a short description for debugging output.
func (ix *Index) String() string { return ix.ix.String() }

// Release drops the reference to the Arrow backing storage.
func (ix *Index) Release() { ix.ix.Release() }

// Config is the process-wide configuration, re-exported for startup wiring.
type Config = config.Config

// LoadConfigFromFile loads configuration from a JSON or YAML file.
func LoadConfigFromFile(path string) (Config, error) { return config.LoadFromFile(path) }

// LoadConfigFromEnv loads configuration from LABELINDEX_* environment
// variables.
func LoadConfigFromEnv() Config { return config.LoadFromEnv() }

// SetGlobalConfig installs the process configuration. Call once at startup,
// before constructing frames; the copy-on-write mode is fixed from then on.
func SetGlobalConfig(cfg Config) { config.SetGlobalConfig(cfg) }

// GetGlobalConfig returns the current process configuration.
func GetGlobalConfig() Config { return config.GetGlobalConfig() }

// Diagnostic is the recoverable signal raised for hazardous view mutation.
type Diagnostic = cow.Diagnostic

// Diagnostic kinds.
const (
	ChainedAssignment = cow.ChainedAssignment
	InplaceOnView     = cow.InplaceOnView
)

// DiagnosticCollector records diagnostics for inspection.
type DiagnosticCollector = cow.Collector
