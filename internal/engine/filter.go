package engine

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/reactome/doi-suggester/internal/ir"
)

// InternalAffiliation is the project tag of in-house curators.
const InternalAffiliation = "Reactome"

var internalFolded = cases.Fold().String(InternalAffiliation)

// IsInternalAffiliation reports whether affiliation names the in-house
// project. Surrounding whitespace and case are ignored. Blank is external.
func IsInternalAffiliation(affiliation string) bool {
	trimmed := strings.TrimSpace(affiliation)
	if trimmed == "" {
		return false
	}
	// cases.Caser keeps state; a fresh one per call is safe for concurrent use.
	return cases.Fold().String(norm.NFC.String(trimmed)) == internalFolded
}

// ExternalOnly keeps the edits with at least one external author.
//
// Edits with no authors cannot be attributed. They are returned separately
// so the caller can surface them as data-quality faults.
func ExternalOnly(edits []ir.EditRecord) (external, unattributed []ir.EditRecord) {
	for _, edit := range edits {
		if len(edit.Authors) == 0 {
			unattributed = append(unattributed, edit)
			continue
		}
		for _, author := range edit.Authors {
			if !IsInternalAffiliation(author.Affiliation) {
				external = append(external, edit)
				break
			}
		}
	}
	return external, unattributed
}
