package ir

import "sort"

// IDSet is a set of database identifiers.
type IDSet map[ID]struct{}

// NewIDSet returns a set containing ids.
func NewIDSet(ids ...ID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id and reports whether it was not already present.
func (s IDSet) Add(id ID) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Has reports whether id is in the set.
func (s IDSet) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []ID {
	out := make([]ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	SortIDs(out)
	return out
}

// SortIDs sorts ids ascending in place.
func SortIDs(ids []ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// SortEntities sorts entities by ID in place.
func SortEntities(entities []Entity) {
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })
}

// SortEdits sorts edit records by ID in place.
func SortEdits(edits []EditRecord) {
	sort.Slice(edits, func(i, j int) bool { return edits[i].ID < edits[j].ID })
}

// EditIDs returns the IDs of records in order.
func EditIDs(records []EditRecord) []ID {
	out := make([]ID, len(records))
	for i, rec := range records {
		out[i] = rec.ID
	}
	return out
}

// EntityIDs returns the IDs of entities in order.
func EntityIDs(entities []Entity) []ID {
	out := make([]ID, len(entities))
	for i, e := range entities {
		out[i] = e.ID
	}
	return out
}
