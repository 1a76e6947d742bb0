package engine

import "github.com/reactome/doi-suggester/internal/ir"

// pathGuard tracks the entities on the current recursion path of one
// ancestor walk.
//
// A parent already on the path closes a cycle in the parent relation. The
// resolver treats such a parent as a dead end instead of recursing.
//
// Unlike the resolver memo, a guard is never shared: each call to
// FurthestAncestorsWithout owns one, so no locking is needed.
type pathGuard struct {
	onPath map[ir.ID]bool
}

func newPathGuard() *pathGuard {
	return &pathGuard{onPath: make(map[ir.ID]bool)}
}

// WouldCycle reports whether visiting id would revisit the current path.
func (g *pathGuard) WouldCycle(id ir.ID) bool {
	return g.onPath[id]
}

// Enter pushes id onto the path.
func (g *pathGuard) Enter(id ir.ID) {
	g.onPath[id] = true
}

// Leave pops id from the path. Siblings may visit id again.
func (g *pathGuard) Leave(id ir.ID) {
	delete(g.onPath, id)
}
