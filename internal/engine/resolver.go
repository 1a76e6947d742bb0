package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/reactome/doi-suggester/internal/ir"
)

// DefaultMaxDepth bounds ancestor walks when no limit is configured.
const DefaultMaxDepth = 64

// Resolver finds the furthest ancestors of an entity that lack a given edit.
//
// For a parent p and edit e, the walk returns, per upward path, the highest
// entity lacking e:
//
//	furthest(p) = {p} if p has no parents and lacks e
//	furthest(p) = union over parents g of p of
//	                furthest(g) when non-empty, else {p} when p lacks e
//
// A parent that is already on the current path is a dead end. Chains longer
// than the maximum depth stop with a DEPTH_EXCEEDED fault.
//
// Results are memoized by (entity, edit) and shared across leaves, together
// with the height of the chain walked above the entity. A memoized result is
// reused only when that chain fits under the maximum depth from where it is
// reached again. Results computed under a cycle cut or a fault depend on the
// path that reached them and are not stored. A Resolver is safe for
// concurrent use.
type Resolver struct {
	src      Source
	maxDepth int
	metrics  *Metrics

	mu   sync.Mutex
	memo map[memoKey]memoEntry
}

type memoKey struct {
	entity ir.ID
	edit   ir.ID
}

// memoEntry is a clean result. height counts the entity itself, so a root
// has height 1.
type memoEntry struct {
	ancestors []ir.Entity
	height    int
}

// NewResolver creates a resolver reading from src. A maxDepth of zero or
// less uses DefaultMaxDepth. metrics may be nil.
func NewResolver(src Source, maxDepth int, metrics *Metrics) *Resolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Resolver{
		src:      src,
		maxDepth: maxDepth,
		metrics:  metrics,
		memo:     make(map[memoKey]memoEntry),
	}
}

// FurthestAncestorsWithout returns the union, over the direct parents of
// leaf, of the furthest ancestors lacking edit, sorted by id.
//
// On failure the ancestors resolved so far are returned together with an
// error carrying one Fault per problem (see Faults).
func (r *Resolver) FurthestAncestorsWithout(ctx context.Context, leaf ir.Entity, edit ir.EditRecord) ([]ir.Entity, error) {
	w := &walk{
		r:     r,
		leaf:  leaf.ID,
		edit:  edit.ID,
		guard: newPathGuard(),
	}

	parents, err := r.src.Parents(ctx, leaf.ID)
	if err != nil {
		return nil, newFetchFault(leaf.ID, "read parents", err)
	}

	acc := make(map[ir.ID]ir.Entity)
	w.guard.Enter(leaf.ID)
	for _, p := range parents {
		if w.guard.WouldCycle(p.ID) {
			w.fail(newCycleFault(leaf.ID, leaf.ID, p.ID))
			continue
		}
		branch, _, _ := w.furthest(ctx, p, 1)
		for _, a := range branch {
			acc[a.ID] = a
		}
	}
	w.guard.Leave(leaf.ID)

	return sortedEntities(acc), errors.Join(w.errs...)
}

// MemoSize returns the number of memoized (entity, edit) results.
func (r *Resolver) MemoSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.memo)
}

// lookup returns the memoized entry for key when its chain, entered at depth,
// stays within the maximum depth.
func (r *Resolver) lookup(key memoKey, depth int) (memoEntry, bool) {
	r.mu.Lock()
	cached, ok := r.memo[key]
	r.mu.Unlock()
	ok = ok && depth+cached.height-1 <= r.maxDepth
	r.metrics.observeMemo(ok)
	return cached, ok
}

func (r *Resolver) store(key memoKey, entry memoEntry) {
	r.mu.Lock()
	r.memo[key] = entry
	r.mu.Unlock()
}

// walk is the state of one FurthestAncestorsWithout call.
type walk struct {
	r     *Resolver
	leaf  ir.ID
	edit  ir.ID
	guard *pathGuard
	errs  []error
}

func (w *walk) fail(err error) {
	w.errs = append(w.errs, err)
}

// branchStatus describes how a branch result was obtained.
type branchStatus int

const (
	// branchClean results do not depend on the path and may be memoized.
	branchClean branchStatus = iota
	// branchCut results are valid but a cycle was cut somewhere below.
	branchCut
	// branchFailed results are partial because a fault stopped the walk.
	branchFailed
)

func worse(a, b branchStatus) branchStatus {
	if b > a {
		return b
	}
	return a
}

// furthest resolves one parent entered at depth. It also returns the height
// of the chain walked above p, p included, which is meaningful only for
// clean results.
func (w *walk) furthest(ctx context.Context, p ir.Entity, depth int) ([]ir.Entity, int, branchStatus) {
	key := memoKey{entity: p.ID, edit: w.edit}
	if cached, ok := w.r.lookup(key, depth); ok {
		return cached.ancestors, cached.height, branchClean
	}
	if depth > w.r.maxDepth {
		w.fail(newDepthFault(w.leaf, p.ID, w.r.maxDepth))
		return nil, 0, branchFailed
	}
	if err := ctx.Err(); err != nil {
		w.fail(newFetchFault(w.leaf, "walk cancelled", err))
		return nil, 0, branchFailed
	}

	seqs, err := ReadEditSequences(ctx, w.r.src, p.ID)
	if err != nil {
		w.fail(newFetchFault(w.leaf, "read ancestor edits", err))
		return nil, 0, branchFailed
	}
	lacks := !seqs.Contains(w.edit)

	grandparents, err := w.r.src.Parents(ctx, p.ID)
	if err != nil {
		w.fail(newFetchFault(w.leaf, "read ancestor parents", err))
		return nil, 0, branchFailed
	}

	if len(grandparents) == 0 {
		var result []ir.Entity
		if lacks {
			result = []ir.Entity{p}
		}
		w.r.store(key, memoEntry{ancestors: result, height: 1})
		return result, 1, branchClean
	}

	status := branchClean
	height := 1
	acc := make(map[ir.ID]ir.Entity)
	w.guard.Enter(p.ID)
	for _, g := range grandparents {
		var branch []ir.Entity
		branchSt := branchCut
		if w.guard.WouldCycle(g.ID) {
			w.fail(newCycleFault(w.leaf, p.ID, g.ID))
		} else {
			var h int
			branch, h, branchSt = w.furthest(ctx, g, depth+1)
			height = max(height, h+1)
		}
		status = worse(status, branchSt)

		switch {
		case len(branch) > 0:
			for _, a := range branch {
				acc[a.ID] = a
			}
		case lacks && branchSt != branchFailed:
			// Nothing above lacks the edit, so p is the highest on this path.
			acc[p.ID] = p
		}
	}
	w.guard.Leave(p.ID)

	result := sortedEntities(acc)
	if status == branchClean {
		w.r.store(key, memoEntry{ancestors: result, height: height})
	}
	return result, height, status
}

func sortedEntities(m map[ir.ID]ir.Entity) []ir.Entity {
	if len(m) == 0 {
		return nil
	}
	out := make([]ir.Entity, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	ir.SortEntities(out)
	return out
}
