package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/reactome/doi-suggester/internal/engine"
)

// SummaryHeader is the header row of WriteSummary and WriteTable.
var SummaryHeader = []string{
	"PathwayToBeUpdated",
	"UpdatedReactionsCount",
	"UpdatedReactions",
	"NewInstanceEdits",
	"MostRecentModified",
}

// summaryRows returns one row per ancestor. Lists are joined with "|".
func summaryRows(r *engine.Report) [][]string {
	var rows [][]string
	for _, entry := range r.Sorted() {
		rows = append(rows, []string{
			entry.Ancestor.Ref(),
			strconv.Itoa(entry.Count),
			strings.Join(entityRefs(entry.Entities), "|"),
			strings.Join(editRefs(entry.Edits), "|"),
			entry.LastModified,
		})
	}
	return rows
}

// WriteSummary writes a tab-separated summary, one line per ancestor,
// preceded by a count line and a header.
func WriteSummary(w io.Writer, r *engine.Report) error {
	if _, err := fmt.Fprintf(w, "%d DOI suggestions\n", len(r.Entries)); err != nil {
		return err
	}
	lines := append([][]string{SummaryHeader}, summaryRows(r)...)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, strings.Join(line, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable renders the summary as a terminal table.
func WriteTable(w io.Writer, r *engine.Report) error {
	table := tablewriter.NewWriter(w)
	table.Header("Pathway", "Count", "Reactions", "Edits", "Last Modified")
	for _, row := range summaryRows(r) {
		if err := table.Append(row[0], row[1], row[2], row[3], row[4]); err != nil {
			return fmt.Errorf("append table row: %w", err)
		}
	}
	return table.Render()
}

// WriteCounts prints how many entities each ancestor collected and the
// total, the way the pass is summarized on stdout.
func WriteCounts(w io.Writer, r *engine.Report) error {
	total := 0
	for _, entry := range r.Sorted() {
		if _, err := fmt.Fprintf(w, "%d RLEs for %s\n", entry.Count, entry.Ancestor.Ref()); err != nil {
			return err
		}
		total += entry.Count
	}
	_, err := fmt.Fprintf(w, "%d total RLEs have DOI suggestion.\n", total)
	return err
}
