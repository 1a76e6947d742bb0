package engine

import "github.com/reactome/doi-suggester/internal/ir"

// NewEdits returns the edits of current that previous does not carry.
//
// Each kind is compared on its own: an edit is new for a kind when no edit
// with the same id appears in previous's sequence of that kind. The three
// per-kind results are unioned in kind order and deduplicated by id. Order
// within a sequence is never significant.
//
// A nil previous means the entity did not exist, so every edit is new.
func NewEdits(current ir.EditSequences, previous *ir.EditSequences) []ir.EditRecord {
	if previous == nil {
		return current.All()
	}

	seen := make(ir.IDSet)
	var out []ir.EditRecord
	for _, kind := range ir.AllEditKinds {
		before := make(ir.IDSet)
		for _, rec := range previous.Kind(kind) {
			before.Add(rec.ID)
		}
		for _, rec := range current.Kind(kind) {
			if before.Has(rec.ID) {
				continue
			}
			if seen.Add(rec.ID) {
				out = append(out, rec)
			}
		}
	}
	return out
}
