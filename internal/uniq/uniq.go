// Package uniq implements unique-value extraction, occurrence counting and
// factorization on top of the label index. All deduplication in this
// package uses the null-aware equality predicate, so every representation
// of "missing" collapses into one canonical entry.
package uniq

import (
	"sort"

	"github.com/paveg/labelindex/internal/codec"
	"github.com/paveg/labelindex/internal/index"
	"github.com/paveg/labelindex/internal/null"
)

// distinct walks the index once and returns the distinct values in
// first-occurrence order together with the code assigned to each position.
func distinct(ix *index.Index) (values []any, codes []int) {
	n := ix.Len()
	codes = make([]int, n)
	seen := make(map[uint64][]int, n) // hash -> codes already assigned
	all := ix.Values()
	for i := 0; i < n; i++ {
		v := all[i]
		if ix.IsNull(i) {
			v = null.Canonical(ix.Dtype())
		}
		k := codec.KeyOf(v)
		code := -1
		for _, c := range seen[k] {
			if null.EqualNullAware(values[c], v) {
				code = c
				break
			}
		}
		if code < 0 {
			code = len(values)
			values = append(values, v)
			seen[k] = append(seen[k], code)
		}
		codes[i] = code
	}
	return values, codes
}

// Unique returns the distinct labels in first-occurrence order. At most one
// missing value survives: not-a-number and explicit-missing inputs collapse
// to the dtype's canonical null.
func Unique(ix *index.Index) (*index.Index, error) {
	values, _ := distinct(ix)
	return index.New(values, ix.Dtype(), ix.Name(), ix.Allocator())
}

// NUnique counts the distinct labels, excluding the canonical null entry
// unless dropna is false.
func NUnique(ix *index.Index, dropna bool) int {
	values, _ := distinct(ix)
	n := len(values)
	if dropna {
		for _, v := range values {
			if null.IsNull(v) {
				n--
			}
		}
	}
	return n
}

// Factorize assigns contiguous integer codes starting at 0 to the labels.
// With sort=false codes follow first-occurrence order, with sort=true they
// follow sorted-unique order (missing values last). In both cases
// uniques[codes[i]] reconstructs the original label at position i.
func Factorize(ix *index.Index, sortUniques bool) ([]int, *index.Index, error) {
	values, codes := distinct(ix)
	if sortUniques && len(values) > 1 {
		perm := make([]int, len(values))
		for i := range perm {
			perm[i] = i
		}
		sort.SliceStable(perm, func(a, b int) bool {
			return codec.Compare(values[perm[a]], values[perm[b]]) < 0
		})
		sorted := make([]any, len(values))
		remap := make([]int, len(values))
		for newCode, oldCode := range perm {
			sorted[newCode] = values[oldCode]
			remap[oldCode] = newCode
		}
		values = sorted
		for i, c := range codes {
			codes[i] = remap[c]
		}
	}
	uniques, err := index.New(values, ix.Dtype(), ix.Name(), ix.Allocator())
	if err != nil {
		return nil, nil, err
	}
	return codes, uniques, nil
}
