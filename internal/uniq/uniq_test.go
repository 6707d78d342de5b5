package uniq

import (
	"math"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/labelindex/internal/codec"
	"github.com/paveg/labelindex/internal/errors"
	"github.com/paveg/labelindex/internal/index"
	"github.com/paveg/labelindex/internal/null"
)

func buildIndex(t *testing.T, values []any) *index.Index {
	t.Helper()
	ix, err := index.New(values, codec.Any, "", memory.NewGoAllocator())
	require.NoError(t, err)
	t.Cleanup(ix.Release)
	return ix
}

func lettersIndex(t *testing.T) *index.Index {
	return buildIndex(t, []any{"a", "b", "b", "b", "b", "c", "d", "d", "a", "a"})
}

func TestUniqueFirstOccurrenceOrder(t *testing.T) {
	ix := lettersIndex(t)

	u, err := Unique(ix)
	require.NoError(t, err)
	defer u.Release()

	assert.Equal(t, []any{"a", "b", "c", "d"}, u.Values())
	assert.Equal(t, ix.Dtype(), u.Dtype())
	assert.True(t, u.IsUnique())
}

func TestUniqueCollapsesNullForms(t *testing.T) {
	ix := buildIndex(t, []any{1.0, math.NaN(), 2.0, math.NaN()})

	u, err := Unique(ix)
	require.NoError(t, err)
	defer u.Release()

	require.Equal(t, 3, u.Len())
	assert.True(t, u.IsNull(1))
	assert.False(t, u.IsNull(0))
	assert.False(t, u.IsNull(2))
}

func TestNUnique(t *testing.T) {
	ix := buildIndex(t, []any{1.0, math.NaN(), 2.0, math.NaN(), 1.0})

	assert.Equal(t, 2, NUnique(ix, true))
	assert.Equal(t, 3, NUnique(ix, false))

	noNulls := lettersIndex(t)
	assert.Equal(t, 4, NUnique(noNulls, true))
	assert.Equal(t, 4, NUnique(noNulls, false))
}

func TestFactorizeFirstOccurrence(t *testing.T) {
	ix := buildIndex(t, []any{"b", "a", "b", "c"})

	codes, uniques, err := Factorize(ix, false)
	require.NoError(t, err)
	defer uniques.Release()

	assert.Equal(t, []int{0, 1, 0, 2}, codes)
	assert.Equal(t, []any{"b", "a", "c"}, uniques.Values())
}

func TestFactorizeSorted(t *testing.T) {
	ix := buildIndex(t, []any{"b", "a", "b", "c"})

	codes, uniques, err := Factorize(ix, true)
	require.NoError(t, err)
	defer uniques.Release()

	assert.Equal(t, []int{1, 0, 1, 2}, codes)
	assert.Equal(t, []any{"a", "b", "c"}, uniques.Values())
}

func TestFactorizeNullsGetRealCodes(t *testing.T) {
	ix := buildIndex(t, []any{math.NaN(), 1.0, math.NaN(), 2.0})

	codes, uniques, err := Factorize(ix, true)
	require.NoError(t, err)
	defer uniques.Release()

	// missing sorts after concrete values, so its code is the last one
	assert.Equal(t, []int{2, 0, 2, 1}, codes)
	require.Equal(t, 3, uniques.Len())
	assert.True(t, uniques.IsNull(2))
}

// Factorize totality: the uniques indexed by the codes reconstruct the
// original labels, missing values included.
func TestFactorizeRoundTrip(t *testing.T) {
	for _, sorted := range []bool{false, true} {
		ix := buildIndex(t, []any{2.0, math.NaN(), 1.0, 2.0, math.NaN()})

		codes, uniques, err := Factorize(ix, sorted)
		require.NoError(t, err)
		defer uniques.Release()

		original := ix.Values()
		rebuilt := uniques.Values()
		require.Len(t, codes, len(original))
		for i, c := range codes {
			assert.True(t, null.EqualNullAware(original[i], rebuilt[c]),
				"position %d: %v != %v (sorted=%v)", i, original[i], rebuilt[c], sorted)
		}
	}
}

func TestValueCountsDescendingWithStableTies(t *testing.T) {
	ix := lettersIndex(t)

	counts, err := ValueCounts(ix, DefaultCountOptions())
	require.NoError(t, err)

	assert.Equal(t, []any{"b", "a", "d", "c"}, counts.Labels)
	assert.Equal(t, []int64{4, 3, 2, 1}, counts.Counts)
	assert.Equal(t, int64(10), counts.Total())

	n, ok := counts.Get("d")
	require.True(t, ok)
	assert.Equal(t, int64(2), n)
	_, ok = counts.Get("z")
	assert.False(t, ok)
}

func TestValueCountsAscending(t *testing.T) {
	ix := lettersIndex(t)

	opts := DefaultCountOptions()
	opts.Ascending = true
	counts, err := ValueCounts(ix, opts)
	require.NoError(t, err)

	assert.Equal(t, []any{"c", "d", "a", "b"}, counts.Labels)
	assert.Equal(t, []int64{1, 2, 3, 4}, counts.Counts)
}

func TestValueCountsUnsortedKeepsFirstOccurrence(t *testing.T) {
	ix := lettersIndex(t)

	opts := DefaultCountOptions()
	opts.Sort = false
	counts, err := ValueCounts(ix, opts)
	require.NoError(t, err)

	assert.Equal(t, []any{"a", "b", "c", "d"}, counts.Labels)
	assert.Equal(t, []int64{3, 4, 1, 2}, counts.Counts)
}

func TestValueCountsNormalize(t *testing.T) {
	ix := lettersIndex(t)

	opts := DefaultCountOptions()
	opts.Normalize = true
	counts, err := ValueCounts(ix, opts)
	require.NoError(t, err)

	require.Len(t, counts.Fracs, 4)
	assert.InDelta(t, 0.4, counts.Fracs[0], 1e-12)
	var sum float64
	for _, f := range counts.Fracs {
		sum += f
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestValueCountsDropNA(t *testing.T) {
	ix := buildIndex(t, []any{1.0, math.NaN(), 1.0, math.NaN(), math.NaN()})

	counts, err := ValueCounts(ix, DefaultCountOptions())
	require.NoError(t, err)
	assert.Equal(t, []any{1.0}, counts.Labels)
	assert.Equal(t, []int64{2}, counts.Counts)

	opts := DefaultCountOptions()
	opts.DropNA = false
	counts, err = ValueCounts(ix, opts)
	require.NoError(t, err)
	require.Equal(t, 2, counts.Len())
	assert.Equal(t, []int64{3, 2}, counts.Counts)
	assert.True(t, null.IsNull(counts.Labels[0]))

	// normalization denominator includes the kept null entry
	opts.Normalize = true
	counts, err = ValueCounts(ix, opts)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, counts.Fracs[0], 1e-12)
	assert.InDelta(t, 0.4, counts.Fracs[1], 1e-12)
}

func TestValueCountsSingleBin(t *testing.T) {
	ix := buildIndex(t, []any{1, 1, 2, 3})

	opts := DefaultCountOptions()
	opts.Bins = 1
	counts, err := ValueCounts(ix, opts)
	require.NoError(t, err)

	require.Equal(t, 1, counts.Len())
	iv, ok := counts.Labels[0].(Interval)
	require.True(t, ok)
	assert.Less(t, iv.Lo, 1.0)
	assert.Equal(t, 3.0, iv.Hi)
	assert.Equal(t, []int64{4}, counts.Counts)
	assert.True(t, iv.Contains(1.0))
	assert.False(t, iv.Contains(iv.Lo))
}

func TestValueCountsFourBins(t *testing.T) {
	ix := buildIndex(t, []any{1, 1, 2, 3})

	opts := DefaultCountOptions()
	opts.Bins = 4
	counts, err := ValueCounts(ix, opts)
	require.NoError(t, err)

	// intervals reported in interval order, empty bins included
	require.Equal(t, 4, counts.Len())
	assert.Equal(t, []int64{2, 1, 0, 1}, counts.Counts)

	first, ok := counts.Labels[0].(Interval)
	require.True(t, ok)
	assert.True(t, first.Contains(1.0), "lowest bin must capture the minimum")
	last, ok := counts.Labels[3].(Interval)
	require.True(t, ok)
	assert.Equal(t, 3.0, last.Hi)
}

func TestValueCountsBinsSkipNulls(t *testing.T) {
	ix := buildIndex(t, []any{1.0, math.NaN(), 3.0})

	opts := DefaultCountOptions()
	opts.Bins = 2
	opts.Normalize = true
	counts, err := ValueCounts(ix, opts)
	require.NoError(t, err)

	require.Equal(t, 2, counts.Len())
	assert.Equal(t, []int64{1, 1}, counts.Counts)
	// fractions are relative to the non-null sample
	assert.InDelta(t, 0.5, counts.Fracs[0], 1e-12)
	assert.InDelta(t, 0.5, counts.Fracs[1], 1e-12)
}

func TestValueCountsBinsRequireNumericData(t *testing.T) {
	ix := lettersIndex(t)

	opts := DefaultCountOptions()
	opts.Bins = 3
	_, err := ValueCounts(ix, opts)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnsupported))
	assert.Contains(t, err.Error(), "bins argument only works with numeric data")
}

func TestValueCountsTemporal(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	nat := time.Time{}
	ix := buildIndex(t, []any{day1, day2, day1, nat, day1})

	counts, err := ValueCounts(ix, DefaultCountOptions())
	require.NoError(t, err)
	assert.Equal(t, []any{day1, day2}, counts.Labels)
	assert.Equal(t, []int64{3, 1}, counts.Counts)

	opts := DefaultCountOptions()
	opts.DropNA = false
	counts, err = ValueCounts(ix, opts)
	require.NoError(t, err)
	require.Equal(t, 3, counts.Len())
	assert.Equal(t, []int64{3, 1, 1}, counts.Counts)
	assert.True(t, null.IsNull(counts.Labels[2]))
}

func TestValueCountsEmptyIndex(t *testing.T) {
	ix := buildIndex(t, nil)

	counts, err := ValueCounts(ix, DefaultCountOptions())
	require.NoError(t, err)
	assert.Zero(t, counts.Len())
	assert.Zero(t, counts.Total())
}
