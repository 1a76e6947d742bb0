package snapshot

import (
	"context"
	"fmt"
	"sync"

	"github.com/reactome/doi-suggester/internal/ir"
)

// Memory is an in-memory snapshot. Populate it with the Add methods, then
// read it concurrently.
type Memory struct {
	mu sync.RWMutex

	entities  map[ir.ID]ir.Entity
	parents   map[ir.ID][]ir.ID
	edits     map[ir.ID]ir.EditRecord
	sequences map[ir.ID]map[ir.EditKind][]ir.ID
	inferred  ir.IDSet
	modified  map[ir.ID][]ir.ID
}

// NewMemory returns an empty snapshot.
func NewMemory() *Memory {
	return &Memory{
		entities:  make(map[ir.ID]ir.Entity),
		parents:   make(map[ir.ID][]ir.ID),
		edits:     make(map[ir.ID]ir.EditRecord),
		sequences: make(map[ir.ID]map[ir.EditKind][]ir.ID),
		inferred:  make(ir.IDSet),
		modified:  make(map[ir.ID][]ir.ID),
	}
}

// AddEntity inserts or replaces an entity.
func (m *Memory) AddEntity(e ir.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[e.ID] = e
}

// AddEdit inserts or replaces an edit record, authors included.
func (m *Memory) AddEdit(rec ir.EditRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits[rec.ID] = rec
}

// AddChild records that parent directly contains child. Adding the same
// link twice has no effect.
func (m *Memory) AddChild(parent, child ir.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.parents[child] {
		if p == parent {
			return
		}
	}
	m.parents[child] = append(m.parents[child], parent)
}

// SetSequence sets one edit sequence of an entity, in rank order.
func (m *Memory) SetSequence(id ir.ID, kind ir.EditKind, editIDs ...ir.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sequences[id] == nil {
		m.sequences[id] = make(map[ir.EditKind][]ir.ID)
	}
	m.sequences[id][kind] = append([]ir.ID(nil), editIDs...)
}

// MarkInferred flags id as derived from another entity.
func (m *Memory) MarkInferred(id ir.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inferred.Add(id)
}

// SetModified sets the modification edits of id, oldest first.
func (m *Memory) SetModified(id ir.ID, editIDs ...ir.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modified[id] = append([]ir.ID(nil), editIDs...)
}

// Entity implements engine.Source.
func (m *Memory) Entity(_ context.Context, id ir.ID) (*ir.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// Parents implements engine.Source. Parents are returned in link order.
func (m *Memory) Parents(_ context.Context, id ir.ID) ([]ir.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.parents[id]
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]ir.Entity, 0, len(ids))
	for _, pid := range ids {
		p, ok := m.entities[pid]
		if !ok {
			return nil, fmt.Errorf("parent %d of %d: unknown entity", pid, id)
		}
		out = append(out, p)
	}
	return out, nil
}

// EditSequence implements engine.Source.
func (m *Memory) EditSequence(_ context.Context, id ir.ID, kind ir.EditKind) ([]ir.EditRecord, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown edit kind %q", kind)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolveEdits(id, m.sequences[id][kind])
}

// IsInferred implements engine.Source.
func (m *Memory) IsInferred(_ context.Context, id ir.ID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inferred.Has(id), nil
}

// LeafEntities implements engine.Snapshot.
func (m *Memory) LeafEntities(_ context.Context) ([]ir.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ir.Entity
	for _, e := range m.entities {
		if e.Class == ir.ClassReactionlikeEvent {
			out = append(out, e)
		}
	}
	ir.SortEntities(out)
	return out, nil
}

// LastModified implements engine.Snapshot.
func (m *Memory) LastModified(_ context.Context, id ir.ID) (*ir.EditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.modified[id]
	if len(ids) == 0 {
		return nil, nil
	}
	recs, err := m.resolveEdits(id, ids[len(ids)-1:])
	if err != nil {
		return nil, err
	}
	return &recs[0], nil
}

func (m *Memory) resolveEdits(owner ir.ID, ids []ir.ID) ([]ir.EditRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]ir.EditRecord, 0, len(ids))
	for _, eid := range ids {
		rec, ok := m.edits[eid]
		if !ok {
			return nil, fmt.Errorf("edit %d of %d: unknown edit", eid, owner)
		}
		out = append(out, rec)
	}
	return out, nil
}
