package index

import (
	"math"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/labelindex/internal/codec"
	"github.com/paveg/labelindex/internal/errors"
)

func mustIndex(t *testing.T, values []any, dtype codec.Dtype, name string) *Index {
	t.Helper()
	ix, err := New(values, dtype, name, memory.NewGoAllocator())
	require.NoError(t, err)
	t.Cleanup(ix.Release)
	return ix
}

func TestConstructorResolvesDtype(t *testing.T) {
	tests := []struct {
		name     string
		values   []any
		dtype    codec.Dtype
		expected codec.Dtype
	}{
		{name: "int inference", values: []any{1, 2, 3}, dtype: codec.Any, expected: codec.Int64},
		{name: "mixed widens to float", values: []any{1.5, 2, 3}, dtype: codec.Any, expected: codec.Float64},
		{name: "explicit float from ints", values: []any{1, 2, 3}, dtype: codec.Float64, expected: codec.Float64},
		{name: "strings", values: []any{"x", "y"}, dtype: codec.Any, expected: codec.String},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := mustIndex(t, tt.values, tt.dtype, "")
			assert.Equal(t, tt.expected, ix.Dtype())
		})
	}
}

func TestNewNumericRejectsWrongFamily(t *testing.T) {
	mem := memory.NewGoAllocator()

	_, err := NewNumeric([]any{1, 2, 3}, codec.Timestamp, "", mem)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect dtype passed: expected numeric")

	_, err = NewNumeric([]any{"a", "b"}, codec.Any, "", mem)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindTypeConversion))
}

func TestNewNumericUnsignedFromNegative(t *testing.T) {
	_, err := NewNumeric([]any{-1}, codec.Uint64, "", memory.NewGoAllocator())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindOverflow))
	assert.Contains(t, err.Error(), "Trying to coerce negative values to unsigned integers")
}

func TestAtPositionalAccess(t *testing.T) {
	ix := mustIndex(t, []any{10, 20, 30, 40}, codec.Any, "")

	v, err := ix.At(0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)

	v, err = ix.At(-1)
	require.NoError(t, err)
	assert.Equal(t, int64(40), v)

	last, err := ix.At(ix.Len() - 1)
	require.NoError(t, err)
	assert.Equal(t, last, v)

	_, err = ix.At(4)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindRange))
	assert.Contains(t, err.Error(), "index 4 is out of bounds for axis 0 with size 4")

	_, err = ix.At(-5)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindRange))
}

func TestGetByLabel(t *testing.T) {
	ix := mustIndex(t, []any{"a", "b", "b", "c"}, codec.Any, "")

	pos, err := ix.GetByLabel("b")
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	assert.Equal(t, []int{1, 2}, ix.Positions("b"))

	_, err = ix.GetByLabel("z")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestGetByLabelCrossNumeric(t *testing.T) {
	ix := mustIndex(t, []any{1, 2, 3}, codec.Any, "")

	pos, err := ix.GetByLabel(2.0)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
}

func TestIsUnique(t *testing.T) {
	assert.True(t, mustIndex(t, []any{1, 2, 3}, codec.Any, "").IsUnique())
	assert.False(t, mustIndex(t, []any{1, 2, 2}, codec.Any, "").IsUnique())
	// two missing values count as duplicates of each other
	assert.False(t, mustIndex(t, []any{1.0, math.NaN(), math.NaN()}, codec.Any, "").IsUnique())
	assert.True(t, mustIndex(t, nil, codec.Any, "").IsUnique())
}

func TestEquals(t *testing.T) {
	intIx := mustIndex(t, []any{1, 2}, codec.Any, "")
	floatIx := mustIndex(t, []any{1.0, 2.0}, codec.Float64, "")
	strIx := mustIndex(t, []any{"1", "2"}, codec.Any, "")
	objIx := mustIndex(t, []any{1, 2}, codec.Object, "")

	// cross-type numeric comparison with matching values is equal
	assert.True(t, intIx.Equals(floatIx))
	assert.True(t, floatIx.Equals(intIx))
	assert.True(t, intIx.Equals(objIx))

	// numeric vs string-typed with textually identical values is not
	assert.False(t, intIx.Equals(strIx))
	assert.False(t, strIx.Equals(floatIx))

	// both-null positions compare equal
	withNaN := mustIndex(t, []any{1.0, math.NaN()}, codec.Any, "")
	other := mustIndex(t, []any{1.0, math.NaN()}, codec.Any, "")
	assert.True(t, withNaN.Equals(withNaN))
	assert.True(t, withNaN.Equals(other))

	assert.False(t, intIx.Equals(mustIndex(t, []any{1, 2, 3}, codec.Any, "")))
	assert.False(t, intIx.Equals(nil))
}

func TestIdentical(t *testing.T) {
	a := mustIndex(t, []any{1, 2}, codec.Any, "x")
	b := mustIndex(t, []any{1, 2}, codec.Any, "x")
	sameValuesDifferentType := mustIndex(t, []any{1, 2}, codec.Object, "x")
	renamed := mustIndex(t, []any{1, 2}, codec.Any, "y")

	assert.True(t, a.Identical(b))
	assert.True(t, a.Equals(sameValuesDifferentType))
	assert.False(t, a.Identical(sameValuesDifferentType))
	assert.False(t, a.Identical(renamed))
}

func TestMonotonicity(t *testing.T) {
	tests := []struct {
		name                 string
		values               []any
		inc, dec             bool
		strictInc, strictDec bool
	}{
		{name: "strictly increasing", values: []any{1, 2, 3, 4}, inc: true, strictInc: true},
		{name: "strictly decreasing", values: []any{4, 3, 2, 1}, dec: true, strictDec: true},
		{name: "increasing with ties", values: []any{1, 1, 2, 3}, inc: true},
		{name: "decreasing with ties", values: []any{3, 2, 1, 1}, dec: true},
		{name: "all equal", values: []any{1, 1}, inc: true, dec: true},
		{name: "unsorted", values: []any{2, 1, 3}},
		{
			name: "empty is monotonic both ways", values: nil,
			inc: true, dec: true, strictInc: true, strictDec: true,
		},
		{
			name: "single element", values: []any{1},
			inc: true, dec: true, strictInc: true, strictDec: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := mustIndex(t, tt.values, codec.Any, "")
			assert.Equal(t, tt.inc, ix.IsMonotonicIncreasing())
			assert.Equal(t, tt.dec, ix.IsMonotonicDecreasing())
			assert.Equal(t, tt.strictInc, ix.IsStrictlyMonotonicIncreasing())
			assert.Equal(t, tt.strictDec, ix.IsStrictlyMonotonicDecreasing())
		})
	}
}

func TestInsert(t *testing.T) {
	ix := mustIndex(t, []any{1, 2, 3}, codec.Any, "nums")

	out, err := ix.Insert(1, 10)
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, []any{int64(1), int64(10), int64(2), int64(3)}, out.Values())
	assert.Equal(t, codec.Int64, out.Dtype())
	assert.Equal(t, "nums", out.Name())

	// receiver unchanged
	assert.Equal(t, 3, ix.Len())

	_, err = ix.Insert(7, 10)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindRange))
}

func TestInsertNullUpgradesDtype(t *testing.T) {
	intIx := mustIndex(t, []any{1, 2, 3}, codec.Any, "")

	// NaN cannot live in an int64 index, result widens to float
	out, err := intIx.Insert(1, math.NaN())
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, codec.Float64, out.Dtype())
	assert.True(t, out.IsNull(1))
	assert.False(t, out.IsNull(0))

	// a not-a-time sentinel only fits object storage
	out2, err := intIx.Insert(1, time.Time{})
	require.NoError(t, err)
	defer out2.Release()
	assert.Equal(t, codec.Object, out2.Dtype())
	assert.True(t, out2.IsNull(1))
}

func TestInsertNullIntoNullableKeepsDtype(t *testing.T) {
	floatIx := mustIndex(t, []any{1.0, 2.0}, codec.Any, "")

	out, err := floatIx.Insert(0, nil)
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, codec.Float64, out.Dtype())
	assert.True(t, out.IsNull(0))
}

func TestFillna(t *testing.T) {
	t.Run("replaces nulls", func(t *testing.T) {
		ix := mustIndex(t, []any{1.0, math.NaN(), 3.0}, codec.Any, "x")
		out, ok := ix.Fillna(0.1)
		require.True(t, ok)
		defer out.Release()
		assert.Equal(t, []any{1.0, 0.1, 3.0}, out.Values())
		assert.Equal(t, codec.Float64, out.Dtype())
		assert.Equal(t, "x", out.Name())
		// receiver untouched
		assert.True(t, ix.IsNull(1))
	})

	t.Run("integer fill keeps float dtype", func(t *testing.T) {
		ix := mustIndex(t, []any{1.0, math.NaN(), 3.0}, codec.Any, "x")
		out, ok := ix.Fillna(2)
		require.True(t, ok)
		defer out.Release()
		assert.Equal(t, []any{1.0, 2.0, 3.0}, out.Values())
		assert.Equal(t, codec.Float64, out.Dtype())
	})

	t.Run("non-conforming fill upgrades to object", func(t *testing.T) {
		ix := mustIndex(t, []any{1.0, math.NaN(), 3.0}, codec.Any, "x")
		out, ok := ix.Fillna("obj")
		require.True(t, ok)
		defer out.Release()
		assert.Equal(t, codec.Object, out.Dtype())
		assert.Equal(t, []any{1.0, "obj", 3.0}, out.Values())
	})

	t.Run("no nulls returns distinct equal index", func(t *testing.T) {
		ix := mustIndex(t, []any{1, 2, 3}, codec.Float64, "x")
		out, ok := ix.Fillna(9.0)
		require.True(t, ok)
		defer out.Release()
		assert.True(t, ix.Equals(out))
		assert.NotSame(t, ix, out)
	})

	t.Run("not applicable for non-nullable dtype", func(t *testing.T) {
		ix := mustIndex(t, []any{true, false}, codec.Any, "x")
		out, ok := ix.Fillna(true)
		defer out.Release()
		assert.False(t, ok)
		assert.True(t, ix.Equals(out))
	})
}

func TestSearchSorted(t *testing.T) {
	ix := mustIndex(t, []any{1, 2, 3, 4}, codec.Any, "")

	assert.Equal(t, 0, ix.SearchSorted(0))
	assert.Equal(t, 2, ix.SearchSorted(3))
	assert.Equal(t, 2, ix.SearchSorted(2.5))
	assert.Equal(t, 4, ix.SearchSorted(5))

	// probe on the maximum element stays within [0, len]
	p := ix.SearchSorted(4)
	assert.GreaterOrEqual(t, p, 0)
	assert.LessOrEqual(t, p, ix.Len())

	empty := mustIndex(t, nil, codec.Any, "")
	assert.Equal(t, 0, empty.SearchSorted(1))
}

func TestMemoryUsage(t *testing.T) {
	empty := mustIndex(t, nil, codec.Any, "")
	assert.Zero(t, empty.MemoryUsage(false))
	assert.Zero(t, empty.MemoryUsage(true))

	ints := mustIndex(t, []any{1, 2, 3}, codec.Any, "")
	assert.Equal(t, ints.MemoryUsage(false), ints.MemoryUsage(true))

	strs := mustIndex(t, []any{"alpha", "beta"}, codec.Any, "")
	assert.Greater(t, strs.MemoryUsage(true), strs.MemoryUsage(false))
}

func TestAsType(t *testing.T) {
	ix := mustIndex(t, []any{1, 2, 3}, codec.Any, "n")

	asFloat, err := ix.AsType(codec.Float64)
	require.NoError(t, err)
	defer asFloat.Release()
	assert.Equal(t, codec.Float64, asFloat.Dtype())
	assert.True(t, ix.Equals(asFloat))

	asObj, err := ix.AsType(codec.Object)
	require.NoError(t, err)
	defer asObj.Release()
	assert.Equal(t, codec.Object, asObj.Dtype())
	assert.True(t, ix.Equals(asObj))
	assert.False(t, ix.Identical(asObj))
}

func TestIsin(t *testing.T) {
	ix := mustIndex(t, []any{1.0, math.NaN()}, codec.Any, "")

	assert.Equal(t, []bool{true, false}, ix.Isin([]any{1.0}))
	assert.Equal(t, []bool{false, false}, ix.Isin([]any{2.0, math.Pi}))
	assert.Equal(t, []bool{false, true}, ix.Isin([]any{math.NaN()}))
	assert.Equal(t, []bool{true, true}, ix.Isin([]any{1.0, math.NaN()}))

	noNulls := mustIndex(t, []any{1.0, 2.0}, codec.Any, "")
	assert.Equal(t, []bool{false, false}, noNulls.Isin([]any{math.NaN()}))
}

func TestRename(t *testing.T) {
	ix := mustIndex(t, []any{1, 2}, codec.Any, "old")
	renamed := ix.Rename("new")
	defer renamed.Release()

	assert.Equal(t, "new", renamed.Name())
	assert.True(t, ix.Equals(renamed))
	assert.False(t, ix.Identical(renamed))
}
