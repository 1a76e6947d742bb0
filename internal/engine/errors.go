package engine

import (
	"errors"
	"fmt"

	"github.com/reactome/doi-suggester/internal/ir"
)

// ErrSnapshotUnavailable marks a fatal configuration or connectivity fault.
// A pass that returns it produces no report.
var ErrSnapshotUnavailable = errors.New("snapshot unavailable")

// FaultKind categorizes entity-local faults.
type FaultKind string

const (
	// FaultFetchFailed indicates a collaborator call failed. The entity's
	// contribution is limited to what was resolved before the failure.
	FaultFetchFailed FaultKind = "FETCH_FAILED"

	// FaultDataQuality indicates malformed data, such as an edit without
	// authors. The offending item is skipped.
	FaultDataQuality FaultKind = "DATA_QUALITY"

	// FaultCycleDetected indicates the parent relation loops back onto the
	// current walk. The looping branch is treated as a dead end.
	FaultCycleDetected FaultKind = "CYCLE_DETECTED"

	// FaultDepthExceeded indicates an ancestor chain longer than the
	// configured maximum depth.
	FaultDepthExceeded FaultKind = "DEPTH_EXCEEDED"
)

// Fault is an entity-local problem recorded during a pass. Faults never stop
// the pass; they are collected into the report and logged.
type Fault struct {
	// Kind identifies the fault category.
	Kind FaultKind

	// EntityID is the entity being evaluated (or the ancestor whose
	// modification marker could not be read).
	EntityID ir.ID

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s (entity=%d): %v", f.Kind, f.Message, f.EntityID, f.Err)
	}
	return fmt.Sprintf("%s: %s (entity=%d)", f.Kind, f.Message, f.EntityID)
}

// Unwrap returns the underlying cause.
func (f *Fault) Unwrap() error {
	return f.Err
}

// IsFatal reports whether err must abort the pass.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSnapshotUnavailable)
}

// Faults flattens err into the faults it carries, walking joined errors.
// Other errors become FETCH_FAILED faults with no entity.
func Faults(err error) []*Fault {
	if err == nil {
		return nil
	}
	var f *Fault
	if errors.As(err, &f) && !isJoined(err) {
		return []*Fault{f}
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*Fault
		for _, e := range joined.Unwrap() {
			out = append(out, Faults(e)...)
		}
		return out
	}
	return []*Fault{{Kind: FaultFetchFailed, Message: "unclassified error", Err: err}}
}

func isJoined(err error) bool {
	_, ok := err.(interface{ Unwrap() []error })
	return ok
}

func newFetchFault(id ir.ID, op string, err error) *Fault {
	return &Fault{
		Kind:     FaultFetchFailed,
		EntityID: id,
		Message:  op,
		Err:      err,
	}
}

func newCycleFault(leaf, from, to ir.ID) *Fault {
	return &Fault{
		Kind:     FaultCycleDetected,
		EntityID: leaf,
		Message:  fmt.Sprintf("parent %d of %d is already on the walk", to, from),
	}
}

func newDepthFault(leaf ir.ID, at ir.ID, maxDepth int) *Fault {
	return &Fault{
		Kind:     FaultDepthExceeded,
		EntityID: leaf,
		Message:  fmt.Sprintf("ancestor chain exceeds max depth %d at %d", maxDepth, at),
	}
}

func newUnattributedFault(entity ir.ID, edit ir.EditRecord) *Fault {
	return &Fault{
		Kind:     FaultDataQuality,
		EntityID: entity,
		Message:  fmt.Sprintf("edit %s has no authors", edit.Ref()),
	}
}
