package engine

import (
	"context"
	"fmt"

	"github.com/reactome/doi-suggester/internal/ir"
)

// Source is the read interface the engine needs from one snapshot.
//
// Calls are synchronous and may fail. Implementations must be safe for
// concurrent use: a pass calls them from several workers at once.
type Source interface {
	// Entity returns the entity with the given id, or nil if absent.
	Entity(ctx context.Context, id ir.ID) (*ir.Entity, error)

	// Parents returns the entities that directly contain id.
	Parents(ctx context.Context, id ir.ID) ([]ir.Entity, error)

	// EditSequence returns one of the entity's edit sequences in rank order.
	EditSequence(ctx context.Context, id ir.ID, kind ir.EditKind) ([]ir.EditRecord, error)

	// IsInferred reports whether the entity is derived from another one and
	// must be skipped.
	IsInferred(ctx context.Context, id ir.ID) (bool, error)
}

// Snapshot is a Source that can also enumerate leaf entities and report
// modification markers.
type Snapshot interface {
	Source

	// LeafEntities returns every reaction-like event ordered by id.
	LeafEntities(ctx context.Context) ([]ir.Entity, error)

	// LastModified returns the most recent modification edit of id, or nil
	// if there is none.
	LastModified(ctx context.Context, id ir.ID) (*ir.EditRecord, error)
}

// ReadEditSequences fetches all three edit sequences of id.
func ReadEditSequences(ctx context.Context, src Source, id ir.ID) (ir.EditSequences, error) {
	var seqs ir.EditSequences
	for _, kind := range ir.AllEditKinds {
		records, err := src.EditSequence(ctx, id, kind)
		if err != nil {
			return ir.EditSequences{}, fmt.Errorf("read %s edits of %d: %w", kind, id, err)
		}
		seqs.Set(kind, records)
	}
	return seqs, nil
}
