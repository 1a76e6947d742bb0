package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/ir"
)

// ErrInjected is returned by Faulty for every injected failure.
var ErrInjected = errors.New("injected fetch failure")

// Faulty wraps a snapshot and fails selected calls with ErrInjected.
type Faulty struct {
	engine.Snapshot

	// FailEntity fails Entity for these ids.
	FailEntity ir.IDSet
	// FailParents fails Parents for these ids.
	FailParents ir.IDSet
	// FailEdits fails EditSequence for these ids.
	FailEdits ir.IDSet
	// FailInferred fails IsInferred for these ids.
	FailInferred ir.IDSet
	// FailModified fails LastModified for these ids.
	FailModified ir.IDSet
	// FailLeaves fails LeafEntities.
	FailLeaves bool
}

// NewFaulty wraps inner with no failures configured.
func NewFaulty(inner engine.Snapshot) *Faulty {
	return &Faulty{
		Snapshot:     inner,
		FailEntity:   make(ir.IDSet),
		FailParents:  make(ir.IDSet),
		FailEdits:    make(ir.IDSet),
		FailInferred: make(ir.IDSet),
		FailModified: make(ir.IDSet),
	}
}

func injected(op string, id ir.ID) error {
	return fmt.Errorf("%s %d: %w", op, id, ErrInjected)
}

// Entity implements engine.Source.
func (f *Faulty) Entity(ctx context.Context, id ir.ID) (*ir.Entity, error) {
	if f.FailEntity.Has(id) {
		return nil, injected("entity", id)
	}
	return f.Snapshot.Entity(ctx, id)
}

// Parents implements engine.Source.
func (f *Faulty) Parents(ctx context.Context, id ir.ID) ([]ir.Entity, error) {
	if f.FailParents.Has(id) {
		return nil, injected("parents", id)
	}
	return f.Snapshot.Parents(ctx, id)
}

// EditSequence implements engine.Source.
func (f *Faulty) EditSequence(ctx context.Context, id ir.ID, kind ir.EditKind) ([]ir.EditRecord, error) {
	if f.FailEdits.Has(id) {
		return nil, injected(string(kind), id)
	}
	return f.Snapshot.EditSequence(ctx, id, kind)
}

// IsInferred implements engine.Source.
func (f *Faulty) IsInferred(ctx context.Context, id ir.ID) (bool, error) {
	if f.FailInferred.Has(id) {
		return false, injected("inferred", id)
	}
	return f.Snapshot.IsInferred(ctx, id)
}

// LeafEntities implements engine.Snapshot.
func (f *Faulty) LeafEntities(ctx context.Context) ([]ir.Entity, error) {
	if f.FailLeaves {
		return nil, fmt.Errorf("leaf entities: %w", ErrInjected)
	}
	return f.Snapshot.LeafEntities(ctx)
}

// LastModified implements engine.Snapshot.
func (f *Faulty) LastModified(ctx context.Context, id ir.ID) (*ir.EditRecord, error) {
	if f.FailModified.Has(id) {
		return nil, injected("modified", id)
	}
	return f.Snapshot.LastModified(ctx, id)
}
