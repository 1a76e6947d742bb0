package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/ir"
)

// ExpectationError describes one mismatch between a scenario's expectations
// and a report.
type ExpectationError struct {
	What     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.What, e.Expected, e.Actual)
}

// CheckExpectations compares report against the scenario's expect and
// expect_faults lists and returns one message per mismatch.
func CheckExpectations(scenario *Scenario, report *engine.Report) []string {
	var errs []string
	for _, err := range checkEntries(scenario.Expect, report) {
		errs = append(errs, err.Error())
	}
	if err := checkFaults(scenario.ExpectFaults, report); err != nil {
		errs = append(errs, err.Error())
	}
	return errs
}

func checkEntries(expect []ExpectEntry, report *engine.Report) []*ExpectationError {
	var errs []*ExpectationError
	expected := make(ir.IDSet, len(expect))

	for _, want := range expect {
		expected.Add(want.Ancestor)
		got, ok := report.Entries[want.Ancestor]
		if !ok {
			errs = append(errs, &ExpectationError{
				What:     fmt.Sprintf("ancestor %d", want.Ancestor),
				Expected: "an entry",
				Actual:   "none",
			})
			continue
		}
		if !sameIDs(want.Entities, ir.EntityIDs(got.Entities)) {
			errs = append(errs, &ExpectationError{
				What:     fmt.Sprintf("ancestor %d entities", want.Ancestor),
				Expected: formatIDs(want.Entities),
				Actual:   formatIDs(ir.EntityIDs(got.Entities)),
			})
		}
		if !sameIDs(want.Edits, ir.EditIDs(got.Edits)) {
			errs = append(errs, &ExpectationError{
				What:     fmt.Sprintf("ancestor %d edits", want.Ancestor),
				Expected: formatIDs(want.Edits),
				Actual:   formatIDs(ir.EditIDs(got.Edits)),
			})
		}
	}

	for _, entry := range report.Sorted() {
		if !expected.Has(entry.Ancestor.ID) {
			errs = append(errs, &ExpectationError{
				What:     fmt.Sprintf("ancestor %d", entry.Ancestor.ID),
				Expected: "no entry",
				Actual:   fmt.Sprintf("entities %s", formatIDs(ir.EntityIDs(entry.Entities))),
			})
		}
	}
	return errs
}

// checkFaults compares fault kinds as multisets.
func checkFaults(expect []string, report *engine.Report) *ExpectationError {
	want := append([]string(nil), expect...)
	got := make([]string, 0, len(report.Faults))
	for _, f := range report.Faults {
		got = append(got, string(f.Kind))
	}
	sort.Strings(want)
	sort.Strings(got)
	if strings.Join(want, ",") == strings.Join(got, ",") {
		return nil
	}
	return &ExpectationError{
		What:     "faults",
		Expected: "[" + strings.Join(want, " ") + "]",
		Actual:   "[" + strings.Join(got, " ") + "]",
	}
}

// sameIDs compares two id lists as sets.
func sameIDs(a, b []ir.ID) bool {
	sa, sb := ir.NewIDSet(a...), ir.NewIDSet(b...)
	if len(sa) != len(sb) {
		return false
	}
	for id := range sa {
		if !sb.Has(id) {
			return false
		}
	}
	return true
}

func formatIDs(ids []ir.ID) string {
	sorted := ir.NewIDSet(ids...).Sorted()
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
