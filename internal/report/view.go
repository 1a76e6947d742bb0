package report

import (
	"strconv"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/ir"
)

// View is the JSON form of a report.
type View struct {
	RunID           string         `json:"run_id"`
	ReportVersion   string         `json:"report_version"`
	Fingerprint     string         `json:"fingerprint"`
	Checked         int            `json:"checked"`
	SkippedInferred int            `json:"skipped_inferred"`
	Entries         []EntryView    `json:"entries"`
	Faults          []FaultView    `json:"faults"`
	FaultCounts     map[string]int `json:"fault_counts"`
}

// EntryView is one ancestor in a View.
type EntryView struct {
	Ancestor     ir.Entity          `json:"ancestor"`
	Count        int                `json:"count"`
	Entities     []ir.Entity        `json:"entities"`
	Edits        []ir.EditRecord    `json:"edits"`
	EntityEdits  map[string][]ir.ID `json:"entity_edits"`
	LastModified string             `json:"last_modified"`
}

// FaultView is one fault in a View.
type FaultView struct {
	Kind     string `json:"kind"`
	EntityID ir.ID  `json:"entity_id"`
	Message  string `json:"message"`
	Cause    string `json:"cause,omitempty"`
}

// ToView converts r. Entries are ordered by ancestor id.
func ToView(r *engine.Report) (View, error) {
	fp, err := r.Fingerprint()
	if err != nil {
		return View{}, err
	}

	v := View{
		RunID:           r.RunID,
		ReportVersion:   ir.ReportVersion,
		Fingerprint:     fp,
		Checked:         r.Checked,
		SkippedInferred: r.SkippedInferred,
		Entries:         []EntryView{},
		Faults:          []FaultView{},
		FaultCounts:     map[string]int{},
	}

	for _, entry := range r.Sorted() {
		entityEdits := make(map[string][]ir.ID, len(entry.EntityEdits))
		for id, edits := range entry.EntityEdits {
			entityEdits[strconv.FormatInt(int64(id), 10)] = ir.EditIDs(edits)
		}
		v.Entries = append(v.Entries, EntryView{
			Ancestor:     entry.Ancestor,
			Count:        entry.Count,
			Entities:     entry.Entities,
			Edits:        entry.Edits,
			EntityEdits:  entityEdits,
			LastModified: entry.LastModified,
		})
	}

	for _, f := range r.Faults {
		fv := FaultView{Kind: string(f.Kind), EntityID: f.EntityID, Message: f.Message}
		if f.Err != nil {
			fv.Cause = f.Err.Error()
		}
		v.Faults = append(v.Faults, fv)
	}
	for kind, n := range r.FaultCounts() {
		v.FaultCounts[string(kind)] = n
	}
	return v, nil
}
