// Package cow mediates writes through derived views of shared storage.
//
// With copy-on-write enabled a view detaches (copies its storage) before
// the first write, so the parent container is provably unaffected and no
// hazard exists. With copy-on-write disabled, a write through a temporary
// derived view mutates shared storage with order-dependent visibility; the
// guard detects that pattern from explicit view provenance metadata and
// emits a recoverable diagnostic before the mutation is applied. Execution
// always continues.
package cow

import (
	"fmt"
	"sync/atomic"
)

// Mode selects the copy-on-write behavior. It is resolved once at process
// start from configuration and injected into every guard; it never changes
// mid-run.
type Mode int

const (
	// Disabled is the legacy/compatibility mode: shared storage is mutated
	// in place and chained writes are diagnosed.
	Disabled Mode = iota
	// Enabled makes every derived view logically independent via
	// copy-on-first-write.
	Enabled
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Enabled {
		return "copy-on-write"
	}
	return "legacy"
}

// Kind classifies a diagnostic event.
type Kind int

const (
	// ChainedAssignment flags a write through a chain of view derivations
	// whose effect on the base container is ambiguous.
	ChainedAssignment Kind = iota
	// InplaceOnView flags an in-place method call issued directly on a
	// view; behavior will change once copy-on-write becomes the default.
	InplaceOnView
)

// String returns the kind name.
func (k Kind) String() string {
	if k == InplaceOnView {
		return "inplace on view"
	}
	return "chained assignment"
}

// Diagnostic is the recoverable signal raised by the guard. It implements
// error so callers can observe it through errors.As-style handling, but it
// never aborts the operation that raised it.
type Diagnostic struct {
	Kind    Kind
	Op      string
	Message string
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Reporter receives diagnostics. Implementations must not panic.
type Reporter interface {
	Report(Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Diagnostic)

// Report calls the function.
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops all diagnostics.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// Collector records diagnostics for inspection, used by callers that want
// to surface or assert on the events.
type Collector struct {
	Events []Diagnostic
}

// Report appends the diagnostic.
func (c *Collector) Report(d Diagnostic) {
	c.Events = append(c.Events, d)
}

// Count returns the number of events of the given kind.
func (c *Collector) Count(kind Kind) int {
	n := 0
	for _, e := range c.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

var generation atomic.Uint64

// NextGeneration issues a unique tag for a newly derived view.
func NextGeneration() uint64 {
	return generation.Add(1)
}

// Provenance records how a container was derived. Base containers carry the
// zero value. The guard inspects this metadata only; it never inspects call
// stacks.
type Provenance struct {
	Depth      int    // number of derivations from the base container
	Temporary  bool   // view was produced mid-expression, not persisted
	Generation uint64 // unique tag for the derivation
}

// Derive produces provenance for a view derived from a container with the
// given provenance.
func Derive(parent Provenance) Provenance {
	return Provenance{
		Depth:      parent.Depth + 1,
		Temporary:  true,
		Generation: NextGeneration(),
	}
}

// Guard arbitrates when aliased storage requires a defensive copy and when
// a write warrants a diagnostic.
type Guard struct {
	mode     Mode
	reporter Reporter

	lastGen uint64
	lastOp  string
}

// NewGuard creates a guard for the given mode. A nil reporter discards
// diagnostics.
func NewGuard(mode Mode, reporter Reporter) *Guard {
	if reporter == nil {
		reporter = Discard
	}
	return &Guard{mode: mode, reporter: reporter}
}

// Mode returns the configured mode.
func (g *Guard) Mode() Mode { return g.mode }

// BeforeWrite mediates a write through a container with the given
// provenance. The return value reports whether the container must detach
// (copy its shared storage) before applying the write. In legacy mode a
// write through a temporary derived view emits exactly one
// ChainedAssignment diagnostic per statement.
func (g *Guard) BeforeWrite(op string, p Provenance) bool {
	if p.Depth == 0 {
		return false
	}
	if g.mode == Enabled {
		return true
	}
	if p.Temporary {
		g.report(op, p, Diagnostic{
			Kind:    ChainedAssignment,
			Op:      op,
			Message: "a value is trying to be set on a copy of a slice from a frame",
		})
	}
	return false
}

// InplaceCall reports the forward-compatibility warning for an in-place
// method invoked directly on a view, regardless of mode. The mutation
// itself still goes through BeforeWrite semantics on the caller's side.
func (g *Guard) InplaceCall(op string, p Provenance) bool {
	if p.Depth == 0 {
		return false
	}
	g.reporter.Report(Diagnostic{
		Kind:    InplaceOnView,
		Op:      op,
		Message: "a value is trying to be set on a copy of a view; behavior will change under copy-on-write",
	})
	return g.mode == Enabled
}

// report deduplicates: one derived-view write yields one event, never more,
// even if the write path consults the guard repeatedly.
func (g *Guard) report(op string, p Provenance, d Diagnostic) {
	if g.lastGen == p.Generation && g.lastOp == op {
		return
	}
	g.lastGen = p.Generation
	g.lastOp = op
	g.reporter.Report(d)
}
