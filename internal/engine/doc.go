// Package engine implements change attribution between two releases of the
// event hierarchy.
//
// A pass reads the leaf entities of the current snapshot and, for each one,
// works out which externally-authored edits are new since the previous
// snapshot and which ancestors should be credited with them.
//
// ARCHITECTURE:
//
// Per-entity evaluation:
//  1. NewEdits compares edit sequences per kind by id (Branch A), or takes
//     every edit when the entity did not exist before (Branch B).
//  2. ExternalOnly drops edits authored solely by internal curators and
//     surfaces edits with no authors as data-quality faults.
//  3. The Resolver walks up from the entity and finds, per upward path, the
//     highest ancestor that does not yet carry the edit.
//  4. The Suggester emits one Suggestion per distinct ancestor carrying the
//     entity's full external edit set.
//
// Pass:
// Entities are evaluated by a bounded pool of workers. Each worker fills its
// own EntityResult; nothing is shared except the resolver memo and read-only
// snapshots. A single-threaded reduce merges results into a Report with
// set-union semantics, so the outcome does not depend on scheduling.
//
// Faults:
// Fetch failures, data-quality issues, cycles and over-deep chains are
// entity-local: they are recorded as Faults and the pass continues. Only a
// snapshot that cannot be opened or listed is fatal (ErrSnapshotUnavailable).
//
// Identity:
// Entities and edits are compared by database id only. Display names are for
// reports.
package engine
