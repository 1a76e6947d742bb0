package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/ir"
	"github.com/reactome/doi-suggester/internal/snapshot"
	"github.com/reactome/doi-suggester/internal/store"
	"github.com/reactome/doi-suggester/internal/testutil"
)

// Options configures scenario execution.
type Options struct {
	// Workers bounds concurrent entity evaluations. Zero uses the engine
	// default.
	Workers int

	// Logger receives pass logs. Nil discards them.
	Logger *slog.Logger
}

// Build materialises spec as an in-memory snapshot.
func Build(spec SnapshotSpec) *snapshot.Memory {
	m := snapshot.NewMemory()
	for _, rec := range editRecords(spec) {
		m.AddEdit(rec)
	}
	for _, e := range spec.Entities {
		m.AddEntity(ir.Entity{ID: e.ID, DisplayName: e.Name, Class: e.Class})
		for _, c := range e.Children {
			m.AddChild(e.ID, c)
		}
		for _, k := range ir.AllEditKinds {
			if seq := e.sequence(k); len(seq) > 0 {
				m.SetSequence(e.ID, k, seq...)
			}
		}
		if len(e.Modified) > 0 {
			m.SetModified(e.ID, e.Modified...)
		}
		if e.InferredBy != 0 {
			m.MarkInferred(e.ID)
		}
	}
	return m
}

// Seed writes spec into a writable store.
func Seed(ctx context.Context, st *store.Store, spec SnapshotSpec) error {
	for _, p := range spec.People {
		if err := st.WritePerson(ctx, person(p)); err != nil {
			return fmt.Errorf("seed person %d: %w", p.ID, err)
		}
	}
	for _, rec := range editRecords(spec) {
		if err := st.WriteEdit(ctx, rec); err != nil {
			return fmt.Errorf("seed edit %d: %w", rec.ID, err)
		}
	}
	for _, e := range spec.Entities {
		if err := st.WriteEntity(ctx, ir.Entity{ID: e.ID, DisplayName: e.Name, Class: e.Class}); err != nil {
			return fmt.Errorf("seed entity %d: %w", e.ID, err)
		}
	}
	for _, e := range spec.Entities {
		for rank, c := range e.Children {
			if err := st.WriteHasEvent(ctx, e.ID, c, rank); err != nil {
				return fmt.Errorf("seed hasEvent %d->%d: %w", e.ID, c, err)
			}
		}
		for _, k := range ir.AllEditKinds {
			if seq := e.sequence(k); len(seq) > 0 {
				if err := st.WriteSequence(ctx, e.ID, k, seq); err != nil {
					return fmt.Errorf("seed %s of %d: %w", k, e.ID, err)
				}
			}
		}
		if len(e.Modified) > 0 {
			if err := st.WriteModified(ctx, e.ID, e.Modified); err != nil {
				return fmt.Errorf("seed modified of %d: %w", e.ID, err)
			}
		}
		if e.InferredBy != 0 {
			if err := st.WriteInferredFrom(ctx, e.InferredBy, e.ID); err != nil {
				return fmt.Errorf("seed inferredFrom referer of %d: %w", e.ID, err)
			}
		}
	}
	return nil
}

// Run executes a scenario over in-memory snapshots and checks its
// expectations.
func Run(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	current := Build(scenario.Current)
	var previous engine.Snapshot
	if scenario.Previous != nil {
		previous = Build(*scenario.Previous)
	}
	return execute(ctx, scenario, current, previous, opts)
}

// RunStore executes a scenario over SQLite snapshots seeded under dir. The
// files are left in place.
func RunStore(ctx context.Context, scenario *Scenario, dir string, opts Options) (*Result, error) {
	current, err := seedFile(ctx, filepath.Join(dir, "current.db"), scenario.Current)
	if err != nil {
		return nil, err
	}
	defer current.Close()

	var previous engine.Snapshot
	if scenario.Previous != nil {
		prev, err := seedFile(ctx, filepath.Join(dir, "previous.db"), *scenario.Previous)
		if err != nil {
			return nil, err
		}
		defer prev.Close()
		previous = prev
	}
	return execute(ctx, scenario, current, previous, opts)
}

// SeedFiles writes the scenario's snapshots into SQLite files. previousPath
// is skipped when the scenario has no previous snapshot.
func SeedFiles(ctx context.Context, scenario *Scenario, currentPath, previousPath string) error {
	st, err := seedFile(ctx, currentPath, scenario.Current)
	if err != nil {
		return err
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("close %s: %w", currentPath, err)
	}
	if scenario.Previous == nil || previousPath == "" {
		return nil
	}
	st, err = seedFile(ctx, previousPath, *scenario.Previous)
	if err != nil {
		return err
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("close %s: %w", previousPath, err)
	}
	return nil
}

func seedFile(ctx context.Context, path string, spec SnapshotSpec) (*store.Store, error) {
	st, err := store.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := Seed(ctx, st, spec); err != nil {
		st.Close()
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	return st, nil
}

func execute(ctx context.Context, scenario *Scenario, current, previous engine.Snapshot, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	report, err := engine.RunSuggestionPass(ctx, current, previous, engine.Options{
		Workers:  opts.Workers,
		MaxDepth: scenario.MaxDepth,
		RunID:    testutil.FixedRunID,
		Logger:   logger.With("scenario", scenario.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult(report)
	for _, msg := range CheckExpectations(scenario, report) {
		result.AddError(msg)
	}
	return result, nil
}

func person(p PersonSpec) ir.Author {
	return ir.Author{ID: p.ID, DisplayName: p.Name, Affiliation: p.Project}
}

// editRecords resolves each edit's author ids against the snapshot's people.
func editRecords(spec SnapshotSpec) []ir.EditRecord {
	people := make(map[ir.ID]ir.Author, len(spec.People))
	for _, p := range spec.People {
		people[p.ID] = person(p)
	}
	out := make([]ir.EditRecord, 0, len(spec.Edits))
	for _, e := range spec.Edits {
		rec := ir.EditRecord{ID: e.ID, DisplayName: e.Name, DateTime: e.Date}
		for _, a := range e.Authors {
			rec.Authors = append(rec.Authors, people[a])
		}
		out = append(out, rec)
	}
	return out
}
