// Package frame provides a minimal labeled column store. It exists as the
// row-store collaborator of the label index: columns of mutable scalar
// storage aligned to an index of row labels, with view derivation and
// guarded mutation. Column storage uses plain Go slices because Arrow
// arrays are immutable and the copy-on-write guard's whole domain is
// mutable shared storage; the row labels stay Arrow-backed in the index.
package frame

import (
	"github.com/paveg/labelindex/internal/codec"
	"github.com/paveg/labelindex/internal/cow"
	"github.com/paveg/labelindex/internal/errors"
	"github.com/paveg/labelindex/internal/index"
	"github.com/paveg/labelindex/internal/null"
)

// column is mutable storage shared between a frame and its views until a
// detach copies it.
type column struct {
	name string
	data []any
}

// Frame is an ordered set of named columns labeled by a row index. Views
// derived through Col, Slice and Select share column storage with their
// parent; the guard arbitrates every write.
type Frame struct {
	cols   []*column
	byName map[string]*column
	idx    *index.Index
	guard  *cow.Guard
	prov   cow.Provenance
	offset int // row offset into shared storage, used by slices
	length int
}

// New creates an empty base frame labeled by the given index.
func New(idx *index.Index, guard *cow.Guard) *Frame {
	if guard == nil {
		guard = cow.NewGuard(cow.Disabled, nil)
	}
	return &Frame{
		byName: make(map[string]*column),
		idx:    idx,
		guard:  guard,
		length: idx.Len(),
	}
}

// Index returns the row-label index.
func (f *Frame) Index() *index.Index { return f.idx }

// Guard returns the mutation guard shared by this frame and its views.
func (f *Frame) Guard() *cow.Guard { return f.guard }

// Len returns the number of rows.
func (f *Frame) Len() int { return f.length }

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.cols) }

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.name
	}
	return names
}

// AddColumn appends a column of raw values, which must match the row count.
func (f *Frame) AddColumn(name string, values []any) error {
	if len(values) != f.length {
		return errors.ErrMismatchedLength
	}
	if _, ok := f.byName[name]; ok {
		return errors.NewUnsupportedError("AddColumn", "column already exists: "+name)
	}
	data := make([]any, len(values))
	for i, v := range values {
		data[i] = codec.Normalize(v)
	}
	c := &column{name: name, data: data}
	f.cols = append(f.cols, c)
	f.byName[name] = c
	return nil
}

// Value returns the scalar at (column, row).
func (f *Frame) Value(name string, row int) (any, error) {
	c, ok := f.byName[name]
	if !ok {
		return nil, errors.NewNotFoundError("Value", name)
	}
	if row < 0 || row >= f.length {
		return nil, errors.NewRangeError("Value", row, f.length)
	}
	return c.data[f.offset+row], nil
}

// ColumnValues returns a copy of a column's scalars.
func (f *Frame) ColumnValues(name string) ([]any, error) {
	c, ok := f.byName[name]
	if !ok {
		return nil, errors.NewNotFoundError("ColumnValues", name)
	}
	out := make([]any, f.length)
	copy(out, c.data[f.offset:f.offset+f.length])
	return out, nil
}

// Col derives a single-column view sharing storage with the receiver.
func (f *Frame) Col(name string) (*Frame, error) {
	c, ok := f.byName[name]
	if !ok {
		return nil, errors.NewNotFoundError("Col", name)
	}
	v := &Frame{
		cols:   []*column{c},
		byName: map[string]*column{name: c},
		idx:    f.idx,
		guard:  f.guard,
		prov:   cow.Derive(f.prov),
		offset: f.offset,
		length: f.length,
	}
	return v, nil
}

// Select derives a multi-column view sharing storage with the receiver.
func (f *Frame) Select(names ...string) (*Frame, error) {
	v := &Frame{
		byName: make(map[string]*column, len(names)),
		idx:    f.idx,
		guard:  f.guard,
		prov:   cow.Derive(f.prov),
		offset: f.offset,
		length: f.length,
	}
	for _, name := range names {
		c, ok := f.byName[name]
		if !ok {
			return nil, errors.NewNotFoundError("Select", name)
		}
		v.cols = append(v.cols, c)
		v.byName[name] = c
	}
	return v, nil
}

// Slice derives a row-range view sharing storage with the receiver.
func (f *Frame) Slice(start, end int) (*Frame, error) {
	if start < 0 || end > f.length || start > end {
		return nil, errors.NewRangeError("Slice", start, f.length)
	}
	// views keep their own maps so a later detach never rewires the parent
	cols := append([]*column(nil), f.cols...)
	byName := make(map[string]*column, len(cols))
	for _, c := range cols {
		byName[c.name] = c
	}
	return &Frame{
		cols:   cols,
		byName: byName,
		idx:    f.idx,
		guard:  f.guard,
		prov:   cow.Derive(f.prov),
		offset: f.offset + start,
		length: end - start,
	}, nil
}

// IsView reports whether the frame shares storage with a parent.
func (f *Frame) IsView() bool { return f.prov.Depth > 0 }

// Detach copies all shared column storage so the frame becomes an
// independent base container.
func (f *Frame) Detach() {
	for i, c := range f.cols {
		data := make([]any, f.length)
		copy(data, c.data[f.offset:f.offset+f.length])
		nc := &column{name: c.name, data: data}
		f.cols[i] = nc
		f.byName[c.name] = nc
	}
	f.offset = 0
	f.prov = cow.Provenance{}
}

// Set writes a scalar at (column, row) through the guard. Under
// copy-on-write a view detaches before the first write, leaving the parent
// untouched; in legacy mode a write through a temporary view emits one
// chained-assignment diagnostic and then mutates the shared storage.
func (f *Frame) Set(name string, row int, value any) error {
	if _, ok := f.byName[name]; !ok {
		return errors.NewNotFoundError("Set", name)
	}
	if row < 0 || row >= f.length {
		return errors.NewRangeError("Set", row, f.length)
	}
	if detach := f.guard.BeforeWrite("Set", f.prov); detach {
		f.Detach()
	}
	f.byName[name].data[f.offset+row] = codec.Normalize(value)
	return nil
}

// SetRange writes a scalar into every row of [start, end) of a column.
func (f *Frame) SetRange(name string, start, end int, value any) error {
	if start < 0 || end > f.length || start > end {
		return errors.NewRangeError("SetRange", start, f.length)
	}
	if detach := f.guard.BeforeWrite("SetRange", f.prov); detach {
		f.Detach()
	}
	c, ok := f.byName[name]
	if !ok {
		return errors.NewNotFoundError("SetRange", name)
	}
	value = codec.Normalize(value)
	for row := start; row < end; row++ {
		c.data[f.offset+row] = value
	}
	return nil
}

// FillNAInPlace replaces missing values of a column in place. Invoked on a
// view it emits a forward-compatibility diagnostic regardless of mode.
func (f *Frame) FillNAInPlace(name string, value any) error {
	if detach := f.guard.InplaceCall("FillNAInPlace", f.prov); detach {
		f.Detach()
	}
	c, ok := f.byName[name]
	if !ok {
		return errors.NewNotFoundError("FillNAInPlace", name)
	}
	value = codec.Normalize(value)
	for row := 0; row < f.length; row++ {
		if null.IsNull(c.data[f.offset+row]) {
			c.data[f.offset+row] = value
		}
	}
	return nil
}

// ReplaceInPlace swaps every occurrence of old for new in a column, in
// place, with the same view diagnostics as FillNAInPlace.
func (f *Frame) ReplaceInPlace(name string, oldValue, newValue any) error {
	if detach := f.guard.InplaceCall("ReplaceInPlace", f.prov); detach {
		f.Detach()
	}
	c, ok := f.byName[name]
	if !ok {
		return errors.NewNotFoundError("ReplaceInPlace", name)
	}
	oldValue = codec.Normalize(oldValue)
	newValue = codec.Normalize(newValue)
	for row := 0; row < f.length; row++ {
		if null.EqualNullAware(c.data[f.offset+row], oldValue) {
			c.data[f.offset+row] = newValue
		}
	}
	return nil
}

// MemoryUsage reports column storage plus index storage, so frame usage is
// always the sum of its components.
func (f *Frame) MemoryUsage(deep bool) int64 {
	const headerSize = 16
	var total int64
	for _, c := range f.cols {
		total += int64(f.length) * headerSize
		if deep {
			for row := 0; row < f.length; row++ {
				if s, ok := c.data[f.offset+row].(string); ok {
					total += int64(len(s))
				}
			}
		}
	}
	return total + f.idx.MemoryUsage(deep)
}
