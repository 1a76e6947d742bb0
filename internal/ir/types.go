package ir

import "fmt"

// ID is a Reactome database identifier (DB_ID). It is stable across releases
// and is the only identity used for comparisons between snapshots.
type ID int64

// EditKind names one of the three edit sequences carried by an event.
type EditKind string

const (
	Authored EditKind = "authored"
	Reviewed EditKind = "reviewed"
	Revised  EditKind = "revised"
)

// AllEditKinds lists the edit kinds in the order they are unioned.
var AllEditKinds = []EditKind{Authored, Reviewed, Revised}

// Valid reports whether k is one of the known edit kinds.
func (k EditKind) Valid() bool {
	switch k {
	case Authored, Reviewed, Revised:
		return true
	}
	return false
}

// Author is a person credited on an edit record.
type Author struct {
	ID          ID     `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	// Affiliation is the person's project tag. Empty means absent.
	Affiliation string `json:"affiliation,omitempty"`
}

// EditRecord is an InstanceEdit: one authorship, review or revision event.
type EditRecord struct {
	ID          ID       `json:"id"`
	DisplayName string   `json:"display_name,omitempty"`
	DateTime    string   `json:"date_time,omitempty"`
	Authors     []Author `json:"authors,omitempty"`
}

// Ref renders the record as "[DB_ID] displayName" for reports.
func (e EditRecord) Ref() string {
	return ref(e.ID, e.DisplayName)
}

// Schema classes of hierarchy nodes.
const (
	ClassReactionlikeEvent = "ReactionlikeEvent"
	ClassPathway           = "Pathway"
)

// Entity is a node of the event hierarchy: a reaction-like event or a
// pathway containing other events.
type Entity struct {
	ID          ID     `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Class       string `json:"class,omitempty"`
}

// Ref renders the entity as "[DB_ID] displayName" for reports.
func (e Entity) Ref() string {
	return ref(e.ID, e.DisplayName)
}

func ref(id ID, name string) string {
	if name == "" {
		return fmt.Sprintf("[%d]", id)
	}
	return fmt.Sprintf("[%d] %s", id, name)
}

// EditSequences holds an entity's three ordered edit sequences as read from
// one snapshot. Duplicates across sequences are allowed.
type EditSequences struct {
	Authored []EditRecord `json:"authored,omitempty"`
	Reviewed []EditRecord `json:"reviewed,omitempty"`
	Revised  []EditRecord `json:"revised,omitempty"`
}

// Kind returns the sequence for k. Unknown kinds return nil.
func (s EditSequences) Kind(k EditKind) []EditRecord {
	switch k {
	case Authored:
		return s.Authored
	case Reviewed:
		return s.Reviewed
	case Revised:
		return s.Revised
	}
	return nil
}

// Set replaces the sequence for k.
func (s *EditSequences) Set(k EditKind, records []EditRecord) {
	switch k {
	case Authored:
		s.Authored = records
	case Reviewed:
		s.Reviewed = records
	case Revised:
		s.Revised = records
	}
}

// All returns the union of the three sequences in kind order, keeping the
// first occurrence of each ID.
func (s EditSequences) All() []EditRecord {
	seen := make(IDSet)
	var out []EditRecord
	for _, k := range AllEditKinds {
		for _, rec := range s.Kind(k) {
			if seen.Add(rec.ID) {
				out = append(out, rec)
			}
		}
	}
	return out
}

// Pool returns the IDs of every edit in any of the three sequences.
func (s EditSequences) Pool() IDSet {
	pool := make(IDSet)
	for _, k := range AllEditKinds {
		for _, rec := range s.Kind(k) {
			pool.Add(rec.ID)
		}
	}
	return pool
}

// Contains reports whether an edit with the given ID appears in any sequence.
func (s EditSequences) Contains(id ID) bool {
	return s.Pool().Has(id)
}

// Len returns the total number of records across the three sequences,
// duplicates included.
func (s EditSequences) Len() int {
	return len(s.Authored) + len(s.Reviewed) + len(s.Revised)
}
