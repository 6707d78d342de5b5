package labelindex

import (
	"github.com/paveg/labelindex/internal/config"
	"github.com/paveg/labelindex/internal/cow"
	"github.com/paveg/labelindex/internal/frame"
)

// Frame is the public labeled column store: named columns of mutable
// scalar storage aligned to a label index. Views derived from a frame share
// storage with it; all writes go through the copy-on-write guard.
type Frame struct {
	f *frame.Frame
}

// FrameOption configures frame construction.
type FrameOption func(*frameOptions)

type frameOptions struct {
	copyOnWrite *bool
	reporter    cow.Reporter
}

// WithCopyOnWrite overrides the global copy-on-write mode for this frame's
// guard. Intended for tests; production code sets the mode once via
// SetGlobalConfig at startup.
func WithCopyOnWrite(enabled bool) FrameOption {
	return func(o *frameOptions) { o.copyOnWrite = &enabled }
}

// WithDiagnosticReporter routes guard diagnostics to the given reporter.
func WithDiagnosticReporter(r interface{ Report(Diagnostic) }) FrameOption {
	return func(o *frameOptions) { o.reporter = r }
}

// NewFrame creates an empty frame labeled by the given index. The guard
// mode is resolved from the process configuration at construction.
func NewFrame(idx *Index, opts ...FrameOption) *Frame {
	o := &frameOptions{}
	for _, opt := range opts {
		opt(o)
	}
	enabled := config.GetGlobalConfig().CopyOnWrite
	if o.copyOnWrite != nil {
		enabled = *o.copyOnWrite
	}
	mode := cow.Disabled
	if enabled {
		mode = cow.Enabled
	}
	return &Frame{f: frame.New(idx.ix, cow.NewGuard(mode, o.reporter))}
}

// Index returns the row-label index.
func (fr *Frame) Index() *Index { return &Index{ix: fr.f.Index()} }

// Len returns the number of rows.
func (fr *Frame) Len() int { return fr.f.Len() }

// Width returns the number of columns.
func (fr *Frame) Width() int { return fr.f.Width() }

// Columns returns the column names in order.
func (fr *Frame) Columns() []string { return fr.f.Columns() }

// AddColumn appends a column of raw values matching the row count.
func (fr *Frame) AddColumn(name string, values []any) error {
	return fr.f.AddColumn(name, values)
}

// Value returns the scalar at (column, row).
func (fr *Frame) Value(name string, row int) (any, error) {
	return fr.f.Value(name, row)
}

// ColumnValues returns a copy of a column's scalars.
func (fr *Frame) ColumnValues(name string) ([]any, error) {
	return fr.f.ColumnValues(name)
}

// Col derives a single-column view sharing storage with the frame.
func (fr *Frame) Col(name string) (*Frame, error) {
	v, err := fr.f.Col(name)
	if err != nil {
		return nil, err
	}
	return &Frame{f: v}, nil
}

// Select derives a multi-column view sharing storage with the frame.
func (fr *Frame) Select(names ...string) (*Frame, error) {
	v, err := fr.f.Select(names...)
	if err != nil {
		return nil, err
	}
	return &Frame{f: v}, nil
}

// Slice derives a row-range view sharing storage with the frame.
func (fr *Frame) Slice(start, end int) (*Frame, error) {
	v, err := fr.f.Slice(start, end)
	if err != nil {
		return nil, err
	}
	return &Frame{f: v}, nil
}

// IsView reports whether the frame shares storage with a parent.
func (fr *Frame) IsView() bool { return fr.f.IsView() }

// Detach copies shared storage so the frame becomes independent.
func (fr *Frame) Detach() { fr.f.Detach() }

// Set writes a scalar at (column, row) through the guard.
func (fr *Frame) Set(name string, row int, value any) error {
	return fr.f.Set(name, row, value)
}

// SetRange writes a scalar into rows [start, end) of a column.
func (fr *Frame) SetRange(name string, start, end int, value any) error {
	return fr.f.SetRange(name, start, end, value)
}

// FillNAInPlace replaces missing values of a column in place.
func (fr *Frame) FillNAInPlace(name string, value any) error {
	return fr.f.FillNAInPlace(name, value)
}

// ReplaceInPlace swaps old for new in a column, in place.
func (fr *Frame) ReplaceInPlace(name string, oldValue, newValue any) error {
	return fr.f.ReplaceInPlace(name, oldValue, newValue)
}

// MemoryUsage reports column storage plus index storage.
func (fr *Frame) MemoryUsage(deep bool) int64 { return fr.f.MemoryUsage(deep) }
