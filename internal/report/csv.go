package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/ir"
)

// CSVHeader is the header row of WriteCSV.
var CSVHeader = []string{"Pathway", "RLE", "InstanceEdits"}

// EditSeparator joins edit references inside a single cell.
const EditSeparator = " | "

// WriteCSV writes one row per (ancestor, entity) pair.
func WriteCSV(w io.Writer, r *engine.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Rows(r) {
		if err := cw.Write([]string{row.Pathway, row.Entity, strings.Join(row.Edits, EditSeparator)}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Row is one (ancestor, entity) pair with the entity's edit references.
type Row struct {
	Pathway string
	Entity  string
	Edits   []string
}

// Rows flattens r into rows ordered by ancestor id, then entity id.
func Rows(r *engine.Report) []Row {
	var rows []Row
	for _, entry := range r.Sorted() {
		for _, e := range entry.Entities {
			rows = append(rows, Row{
				Pathway: entry.Ancestor.Ref(),
				Entity:  e.Ref(),
				Edits:   editRefs(entry.EntityEdits[e.ID]),
			})
		}
	}
	return rows
}

func editRefs(edits []ir.EditRecord) []string {
	refs := make([]string, len(edits))
	for i, e := range edits {
		refs[i] = e.Ref()
	}
	return refs
}

func entityRefs(entities []ir.Entity) []string {
	refs := make([]string, len(entities))
	for i, e := range entities {
		refs[i] = e.Ref()
	}
	return refs
}
