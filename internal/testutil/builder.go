package testutil

import (
	"fmt"

	"github.com/reactome/doi-suggester/internal/ir"
	"github.com/reactome/doi-suggester/internal/snapshot"
)

// Reaction returns a reaction-like event entity.
func Reaction(id ir.ID, name string) ir.Entity {
	return ir.Entity{ID: id, DisplayName: name, Class: ir.ClassReactionlikeEvent}
}

// Pathway returns a pathway entity.
func Pathway(id ir.ID, name string) ir.Entity {
	return ir.Entity{ID: id, DisplayName: name, Class: ir.ClassPathway}
}

// Edit returns an edit record with one author per affiliation. Author ids
// are derived from the edit id so that they are stable across snapshots.
func Edit(id ir.ID, affiliations ...string) ir.EditRecord {
	rec := ir.EditRecord{
		ID:          id,
		DisplayName: fmt.Sprintf("Curator, E, 2024-01-%02d", int(id)%28+1),
		DateTime:    fmt.Sprintf("2024-01-%02d 00:00:00", int(id)%28+1),
	}
	for i, aff := range affiliations {
		rec.Authors = append(rec.Authors, ir.Author{
			ID:          ir.ID(int(id)*100 + i),
			DisplayName: fmt.Sprintf("Author %d.%d", id, i),
			Affiliation: aff,
		})
	}
	return rec
}

// External returns an edit by a single external author.
func External(id ir.ID) ir.EditRecord {
	return Edit(id, "OICR")
}

// Internal returns an edit by a single in-house curator.
func Internal(id ir.ID) ir.EditRecord {
	return Edit(id, "Reactome")
}

// Builder assembles a snapshot.Memory fluently.
type Builder struct {
	m *snapshot.Memory
}

// NewBuilder returns a builder over an empty snapshot.
func NewBuilder() *Builder {
	return &Builder{m: snapshot.NewMemory()}
}

// Pathway adds a pathway containing children.
func (b *Builder) Pathway(id ir.ID, name string, children ...ir.ID) *Builder {
	b.m.AddEntity(Pathway(id, name))
	for _, c := range children {
		b.m.AddChild(id, c)
	}
	return b
}

// Reaction adds a leaf entity.
func (b *Builder) Reaction(id ir.ID, name string) *Builder {
	b.m.AddEntity(Reaction(id, name))
	return b
}

// Child links parent to child without adding either entity.
func (b *Builder) Child(parent, child ir.ID) *Builder {
	b.m.AddChild(parent, child)
	return b
}

// Edits adds records and sets them as id's sequence of kind.
func (b *Builder) Edits(id ir.ID, kind ir.EditKind, records ...ir.EditRecord) *Builder {
	ids := make([]ir.ID, len(records))
	for i, rec := range records {
		b.m.AddEdit(rec)
		ids[i] = rec.ID
	}
	b.m.SetSequence(id, kind, ids...)
	return b
}

// Authored is shorthand for Edits(id, ir.Authored, records...).
func (b *Builder) Authored(id ir.ID, records ...ir.EditRecord) *Builder {
	return b.Edits(id, ir.Authored, records...)
}

// Inferred marks id as derived.
func (b *Builder) Inferred(id ir.ID) *Builder {
	b.m.MarkInferred(id)
	return b
}

// Modified adds records and sets them as id's modification list.
func (b *Builder) Modified(id ir.ID, records ...ir.EditRecord) *Builder {
	ids := make([]ir.ID, len(records))
	for i, rec := range records {
		b.m.AddEdit(rec)
		ids[i] = rec.ID
	}
	b.m.SetModified(id, ids...)
	return b
}

// Build returns the snapshot.
func (b *Builder) Build() *snapshot.Memory {
	return b.m
}
