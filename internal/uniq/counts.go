package uniq

import (
	"fmt"
	"math"
	"sort"

	"github.com/paveg/labelindex/internal/codec"
	"github.com/paveg/labelindex/internal/errors"
	"github.com/paveg/labelindex/internal/index"
	"github.com/paveg/labelindex/internal/null"
)

// CountOptions controls ValueCounts behavior. DefaultCountOptions matches
// the conventional defaults: sorted by descending count, missing values
// dropped, absolute counts.
type CountOptions struct {
	Normalize bool // report relative frequencies instead of counts
	Sort      bool // order by count; false preserves first-occurrence order
	Ascending bool // reverse the count ordering
	DropNA    bool // exclude the canonical null entry
	Bins      int  // >0 partitions numeric data into equal-width intervals
}

// DefaultCountOptions returns the standard ValueCounts configuration.
func DefaultCountOptions() CountOptions {
	return CountOptions{Sort: true, DropNA: true}
}

// Interval is a right-closed numeric bin (Lo, Hi].
type Interval struct {
	Lo, Hi float64
}

// Contains reports whether f falls inside the interval.
func (iv Interval) Contains(f float64) bool {
	return f > iv.Lo && f <= iv.Hi
}

// String formats the interval in conventional notation.
func (iv Interval) String() string {
	return fmt.Sprintf("(%g, %g]", iv.Lo, iv.Hi)
}

// Counts is the ordered result of ValueCounts. Labels and Counts are
// parallel; Fracs is populated instead of meaningful Counts semantics when
// normalization was requested (Counts still carries the raw tallies).
type Counts struct {
	Labels []any
	Counts []int64
	Fracs  []float64
}

// Len returns the number of distinct entries.
func (c *Counts) Len() int { return len(c.Labels) }

// Total returns the sum of the raw tallies.
func (c *Counts) Total() int64 {
	var t int64
	for _, n := range c.Counts {
		t += n
	}
	return t
}

// Get returns the tally for a label, using null-aware equality.
func (c *Counts) Get(label any) (int64, bool) {
	label = codec.Normalize(label)
	for i, l := range c.Labels {
		if null.EqualNullAware(l, label) {
			return c.Counts[i], true
		}
	}
	return 0, false
}

// ValueCounts tallies occurrences of each distinct label. Ordering follows
// descending count with ties broken by first occurrence; Sort=false keeps
// first-occurrence order and Ascending reverses the count direction. With
// Bins > 0 the numeric value range is split into equal-width right-closed
// intervals reported in interval order.
func ValueCounts(ix *index.Index, opts CountOptions) (*Counts, error) {
	if opts.Bins > 0 {
		return binnedCounts(ix, opts)
	}

	values, codes := distinct(ix)
	tallies := make([]int64, len(values))
	for _, c := range codes {
		tallies[c]++
	}

	order := make([]int, 0, len(values))
	for c, v := range values {
		if opts.DropNA && null.IsNull(v) {
			continue
		}
		order = append(order, c)
	}
	if opts.Sort {
		// stable keeps first-occurrence order between equal counts
		sort.SliceStable(order, func(a, b int) bool {
			if opts.Ascending {
				return tallies[order[a]] < tallies[order[b]]
			}
			return tallies[order[a]] > tallies[order[b]]
		})
	}

	out := &Counts{
		Labels: make([]any, len(order)),
		Counts: make([]int64, len(order)),
	}
	// the normalization denominator excludes dropped nulls by construction
	var denom int64
	for _, c := range order {
		denom += tallies[c]
	}
	if opts.Normalize {
		out.Fracs = make([]float64, len(order))
	}
	for i, c := range order {
		out.Labels[i] = values[c]
		out.Counts[i] = tallies[c]
		if opts.Normalize && denom > 0 {
			out.Fracs[i] = float64(tallies[c]) / float64(denom)
		}
	}
	return out, nil
}

// binAdjustment is the conventional nudge applied below the true minimum so
// the lowest interval captures it. The magnitude is implementation-defined.
const binAdjustment = 0.001

func binnedCounts(ix *index.Index, opts CountOptions) (*Counts, error) {
	if !ix.Dtype().IsNumeric() {
		return nil, errors.NewUnsupportedError("ValueCounts",
			"bins argument only works with numeric data")
	}

	var sample []float64
	for i, n := 0, ix.Len(); i < n; i++ {
		if ix.IsNull(i) {
			continue
		}
		v, _ := ix.At(i)
		f, _ := numericValue(v)
		sample = append(sample, f)
	}
	if len(sample) == 0 {
		return &Counts{}, nil
	}

	mn, mx := sample[0], sample[0]
	for _, f := range sample[1:] {
		mn = math.Min(mn, f)
		mx = math.Max(mx, f)
	}
	adj := (mx - mn) * binAdjustment
	if adj == 0 {
		adj = binAdjustment
	}

	nbins := opts.Bins
	edges := make([]float64, nbins+1)
	width := (mx - mn) / float64(nbins)
	for i := range edges {
		edges[i] = mn + width*float64(i)
	}
	edges[0] = mn - adj
	edges[nbins] = mx

	tallies := make([]int64, nbins)
	for _, f := range sample {
		b := sort.SearchFloat64s(edges[1:], f)
		if b >= nbins {
			b = nbins - 1
		}
		tallies[b]++
	}

	out := &Counts{
		Labels: make([]any, nbins),
		Counts: tallies,
	}
	if opts.Normalize {
		out.Fracs = make([]float64, nbins)
	}
	for i := range tallies {
		out.Labels[i] = Interval{Lo: edges[i], Hi: edges[i+1]}
		if opts.Normalize {
			out.Fracs[i] = float64(tallies[i]) / float64(len(sample))
		}
	}
	return out, nil
}

func numericValue(v any) (float64, bool) {
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
