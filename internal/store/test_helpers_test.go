package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/reactome/doi-suggester/internal/ir"
)

// createTestStore creates a new SQLite store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testEdit(id ir.ID, affiliations ...string) ir.EditRecord {
	rec := ir.EditRecord{ID: id, DisplayName: "Doe, J, 2024-03-01", DateTime: "2024-03-01 12:00:00"}
	for i, aff := range affiliations {
		rec.Authors = append(rec.Authors, ir.Author{
			ID:          ir.ID(int(id)*10 + i),
			DisplayName: "Doe, J",
			Affiliation: aff,
		})
	}
	return rec
}

// seedChain writes root(1) -> mid(2) -> leaf(10) with two authored edits on
// the leaf, one on the root, and two modification edits on the root.
func seedChain(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	must(s.WriteEntity(ctx, ir.Entity{ID: 1, DisplayName: "Root", Class: ir.ClassPathway}))
	must(s.WriteEntity(ctx, ir.Entity{ID: 2, DisplayName: "Mid", Class: ir.ClassPathway}))
	must(s.WriteEntity(ctx, ir.Entity{ID: 10, DisplayName: "Leaf", Class: ir.ClassReactionlikeEvent}))
	must(s.WriteHasEvent(ctx, 1, 2, 0))
	must(s.WriteHasEvent(ctx, 2, 10, 0))

	for _, rec := range []ir.EditRecord{
		testEdit(100, "Reactome", "OICR"),
		testEdit(101),
		testEdit(102, "Reactome"),
		testEdit(200, "Reactome"),
		testEdit(201, "Reactome"),
	} {
		must(s.WriteEdit(ctx, rec))
	}
	must(s.WriteSequence(ctx, 10, ir.Authored, []ir.ID{101, 100}))
	must(s.WriteSequence(ctx, 1, ir.Reviewed, []ir.ID{102}))
	must(s.WriteModified(ctx, 1, []ir.ID{200, 201}))
}
