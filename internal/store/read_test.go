package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/ir"
)

var _ engine.Snapshot = (*Store)(nil)

func TestEntity(t *testing.T) {
	s := createTestStore(t)
	seedChain(t, s)
	ctx := context.Background()

	e, err := s.Entity(ctx, 2)
	if err != nil {
		t.Fatalf("Entity() failed: %v", err)
	}
	want := ir.Entity{ID: 2, DisplayName: "Mid", Class: ir.ClassPathway}
	if e == nil || *e != want {
		t.Errorf("Entity(2) = %+v, want %+v", e, want)
	}

	missing, err := s.Entity(ctx, 999)
	if err != nil {
		t.Fatalf("Entity(999) failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Entity(999) = %+v, want nil", missing)
	}
}

func TestParentsAndLeaves(t *testing.T) {
	s := createTestStore(t)
	seedChain(t, s)
	ctx := context.Background()

	parents, err := s.Parents(ctx, 10)
	if err != nil {
		t.Fatalf("Parents() failed: %v", err)
	}
	if got := ir.EntityIDs(parents); !reflect.DeepEqual(got, []ir.ID{2}) {
		t.Errorf("Parents(10) = %v, want [2]", got)
	}

	roots, err := s.Parents(ctx, 1)
	if err != nil {
		t.Fatalf("Parents(1) failed: %v", err)
	}
	if len(roots) != 0 {
		t.Errorf("Parents(1) = %v, want none", roots)
	}

	leaves, err := s.LeafEntities(ctx)
	if err != nil {
		t.Fatalf("LeafEntities() failed: %v", err)
	}
	if got := ir.EntityIDs(leaves); !reflect.DeepEqual(got, []ir.ID{10}) {
		t.Errorf("LeafEntities() = %v, want [10]", got)
	}
}

func TestEditSequence_RankOrderAndAuthors(t *testing.T) {
	s := createTestStore(t)
	seedChain(t, s)

	edits, err := s.EditSequence(context.Background(), 10, ir.Authored)
	if err != nil {
		t.Fatalf("EditSequence() failed: %v", err)
	}

	if got := ir.EditIDs(edits); !reflect.DeepEqual(got, []ir.ID{101, 100}) {
		t.Fatalf("EditSequence ids = %v, want [101 100]", got)
	}
	if len(edits[0].Authors) != 0 {
		t.Errorf("edit 101 authors = %v, want none", edits[0].Authors)
	}
	if len(edits[1].Authors) != 2 {
		t.Fatalf("edit 100 authors = %v, want 2", edits[1].Authors)
	}
	if edits[1].Authors[0].Affiliation != "Reactome" || edits[1].Authors[1].Affiliation != "OICR" {
		t.Errorf("edit 100 affiliations = %+v", edits[1].Authors)
	}
	if edits[1].DateTime != "2024-03-01 12:00:00" {
		t.Errorf("edit 100 dateTime = %q", edits[1].DateTime)
	}
}

func TestEditSequence_EmptyAndInvalidKind(t *testing.T) {
	s := createTestStore(t)
	seedChain(t, s)
	ctx := context.Background()

	revised, err := s.EditSequence(ctx, 10, ir.Revised)
	if err != nil {
		t.Fatalf("EditSequence(revised) failed: %v", err)
	}
	if len(revised) != 0 {
		t.Errorf("EditSequence(revised) = %v, want empty", revised)
	}

	if _, err := s.EditSequence(ctx, 10, ir.EditKind("created; DROP TABLE Person")); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestIsInferred(t *testing.T) {
	s := createTestStore(t)
	seedChain(t, s)
	ctx := context.Background()

	if err := s.WriteInferredFrom(ctx, 50, 10); err != nil {
		t.Fatalf("WriteInferredFrom() failed: %v", err)
	}

	inferred, err := s.IsInferred(ctx, 10)
	if err != nil {
		t.Fatalf("IsInferred() failed: %v", err)
	}
	if !inferred {
		t.Error("IsInferred(10) = false, want true")
	}

	inferred, err = s.IsInferred(ctx, 2)
	if err != nil {
		t.Fatalf("IsInferred(2) failed: %v", err)
	}
	if inferred {
		t.Error("IsInferred(2) = true, want false")
	}
}

func TestLastModified(t *testing.T) {
	s := createTestStore(t)
	seedChain(t, s)
	ctx := context.Background()

	rec, err := s.LastModified(ctx, 1)
	if err != nil {
		t.Fatalf("LastModified() failed: %v", err)
	}
	if rec == nil || rec.ID != 201 {
		t.Errorf("LastModified(1) = %+v, want edit 201", rec)
	}

	none, err := s.LastModified(ctx, 10)
	if err != nil {
		t.Fatalf("LastModified(10) failed: %v", err)
	}
	if none != nil {
		t.Errorf("LastModified(10) = %+v, want nil", none)
	}
}

func TestStore_RunsSuggestionPass(t *testing.T) {
	s := createTestStore(t)
	seedChain(t, s)

	report, err := engine.RunSuggestionPass(context.Background(), s, nil, engine.Options{RunID: "store-test"})
	if err != nil {
		t.Fatalf("RunSuggestionPass() failed: %v", err)
	}

	// Edit 100 has an external author; 101 has none and is flagged.
	// Neither mid nor root carries 100, so the root is credited.
	entry, ok := report.Entries[1]
	if !ok || len(report.Entries) != 1 {
		t.Fatalf("entries = %v, want only ancestor 1", report.Entries)
	}
	if got := ir.EditIDs(entry.Edits); !reflect.DeepEqual(got, []ir.ID{100}) {
		t.Errorf("edits = %v, want [100]", got)
	}
	if entry.LastModified != "[201] Doe, J, 2024-03-01" {
		t.Errorf("LastModified = %q", entry.LastModified)
	}
	if counts := report.FaultCounts(); counts[engine.FaultDataQuality] != 1 {
		t.Errorf("fault counts = %v, want one DATA_QUALITY", counts)
	}
}
