package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/reactome/doi-suggester/internal/ir"
)

// DefaultWorkers is the pool size used when Options.Workers is unset.
const DefaultWorkers = 8

// NoModificationMarker is reported for ancestors without modification edits.
const NoModificationMarker = "No modification instances"

// Options configures a pass.
type Options struct {
	// Workers bounds concurrent entity evaluations. Zero uses DefaultWorkers.
	Workers int

	// MaxDepth bounds ancestor walks. Zero uses DefaultMaxDepth.
	MaxDepth int

	// RunID labels the report and log lines. Empty generates a UUIDv7.
	RunID string

	// Logger receives pass and fault logs. Nil uses slog.Default().
	Logger *slog.Logger

	// Metrics receives counters. Nil disables metrics.
	Metrics *Metrics
}

// Pass runs suggestion passes over a pair of snapshots.
type Pass struct {
	current  Snapshot
	previous Snapshot
	opts     Options
	logger   *slog.Logger
}

// NewPass creates a pass. previous may be nil, in which case every leaf is
// treated as new.
func NewPass(current, previous Snapshot, opts Options) *Pass {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pass{current: current, previous: previous, opts: opts, logger: logger}
}

// RunSuggestionPass is shorthand for NewPass(current, previous, opts).Run(ctx).
func RunSuggestionPass(ctx context.Context, current, previous Snapshot, opts Options) (*Report, error) {
	return NewPass(current, previous, opts).Run(ctx)
}

// Run evaluates every non-inferred leaf of the current snapshot and groups
// the suggestions by ancestor.
//
// Entity-local faults are collected in the report. An error is returned only
// when the leaves cannot be listed (wrapping ErrSnapshotUnavailable) or ctx
// is cancelled; no report is produced in either case.
func (p *Pass) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	defer p.opts.Metrics.observePass(start)

	runID := p.opts.RunID
	if runID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate run id: %w", err)
		}
		runID = id.String()
	}
	logger := p.logger.With("run_id", runID)

	if p.current == nil {
		return nil, fmt.Errorf("%w: no current snapshot", ErrSnapshotUnavailable)
	}
	leaves, err := p.current.LeafEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list leaf entities: %v", ErrSnapshotUnavailable, err)
	}
	logger.Info("pass started", "leaves", len(leaves), "workers", p.opts.Workers)

	var previous Source
	if p.previous != nil {
		previous = p.previous
	}
	resolver := NewResolver(p.current, p.opts.MaxDepth, p.opts.Metrics)
	suggester := NewSuggester(p.current, previous, resolver, logger)

	// Each worker writes only its own slot.
	results := make([]EntityResult, len(leaves))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, leaf := range leaves {
		i, leaf := i, leaf
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.evaluate(gctx, suggester, leaf)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pass cancelled: %w", err)
	}
	// Workers that were already running turn cancellation into walk faults.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pass cancelled: %w", err)
	}

	report := NewReport(runID)
	for _, res := range results {
		report.Merge(res.Report())
	}
	p.markModified(ctx, report)
	report.sortFaults()

	for _, f := range report.Faults {
		logger.Warn("entity fault",
			"entity_id", f.EntityID,
			"kind", f.Kind,
			"message", f.Message,
			"err", f.Err,
		)
	}
	logger.Info("pass finished",
		"checked", report.Checked,
		"skipped_inferred", report.SkippedInferred,
		"ancestors", len(report.Entries),
		"faults", len(report.Faults),
		"elapsed", time.Since(start),
	)
	return report, nil
}

func (p *Pass) evaluate(ctx context.Context, s *Suggester, leaf ir.Entity) EntityResult {
	inferred, err := p.current.IsInferred(ctx, leaf.ID)
	if err != nil {
		res := EntityResult{
			Entity: leaf,
			Faults: []*Fault{newFetchFault(leaf.ID, "read inferred flag", err)},
		}
		p.opts.Metrics.observeFaults(res.Faults)
		return res
	}
	if inferred {
		p.opts.Metrics.observeEntity(BranchInferred)
		return EntityResult{Entity: leaf, Branch: BranchInferred}
	}

	res := s.Suggest(ctx, leaf)
	if res.Branch != "" {
		p.opts.Metrics.observeEntity(res.Branch)
	}
	p.opts.Metrics.observeFaults(res.Faults)
	p.opts.Metrics.observeSuggestions(len(res.Suggestions))
	return res
}

// markModified fills each entry's modification marker from the current
// snapshot.
func (p *Pass) markModified(ctx context.Context, report *Report) {
	for _, entry := range report.Sorted() {
		rec, err := p.current.LastModified(ctx, entry.Ancestor.ID)
		switch {
		case err != nil:
			f := newFetchFault(entry.Ancestor.ID, "read last modified", err)
			report.Faults = append(report.Faults, f)
			p.opts.Metrics.observeFaults([]*Fault{f})
		case rec == nil:
			entry.LastModified = NoModificationMarker
		default:
			entry.LastModified = rec.Ref()
		}
	}
}

// Report is the result of a pass: suggestions grouped by ancestor.
type Report struct {
	RunID string

	// Entries maps ancestor id to its grouped suggestions.
	Entries map[ir.ID]*Entry

	// Checked counts evaluated (non-inferred) leaves.
	Checked int

	// SkippedInferred counts inferred leaves.
	SkippedInferred int

	Faults []*Fault
}

// Entry groups every suggestion for one ancestor.
type Entry struct {
	Ancestor ir.Entity

	// Entities are the leaves that contributed, sorted by id.
	Entities []ir.Entity

	// Edits is the union of the contributing edits, sorted by id.
	Edits []ir.EditRecord

	// EntityEdits maps each contributing leaf to its edits.
	EntityEdits map[ir.ID][]ir.EditRecord

	// Count is the number of distinct contributing leaves.
	Count int

	// LastModified is the ancestor's most recent modification marker.
	LastModified string
}

// NewReport returns an empty report.
func NewReport(runID string) *Report {
	return &Report{RunID: runID, Entries: make(map[ir.ID]*Entry)}
}

// Report converts a single entity result into a one-entity report so that
// results can be combined with Merge.
func (res EntityResult) Report() *Report {
	r := NewReport("")
	switch res.Branch {
	case BranchInferred:
		r.SkippedInferred = 1
	case BranchExisting, BranchNew:
		r.Checked = 1
	}
	r.Faults = append(r.Faults, res.Faults...)
	for _, s := range res.Suggestions {
		r.Merge(&Report{Entries: map[ir.ID]*Entry{
			s.Ancestor.ID: {
				Ancestor:    s.Ancestor,
				Entities:    []ir.Entity{s.Entity},
				Edits:       s.Edits,
				EntityEdits: map[ir.ID][]ir.EditRecord{s.Entity.ID: s.Edits},
			},
		}})
	}
	return r
}

// Merge folds other into r. Merging is set union on entities and edits plus
// counter addition, so the order in which reports are merged does not change
// the result.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	if r.Entries == nil {
		r.Entries = make(map[ir.ID]*Entry)
	}
	r.Checked += other.Checked
	r.SkippedInferred += other.SkippedInferred
	r.Faults = append(r.Faults, other.Faults...)

	for id, in := range other.Entries {
		entry, ok := r.Entries[id]
		if !ok {
			entry = &Entry{Ancestor: in.Ancestor, EntityEdits: make(map[ir.ID][]ir.EditRecord)}
			r.Entries[id] = entry
		}
		entry.Entities = unionEntities(entry.Entities, in.Entities)
		entry.Edits = unionEdits(entry.Edits, in.Edits)
		for eid, edits := range in.EntityEdits {
			entry.EntityEdits[eid] = unionEdits(entry.EntityEdits[eid], edits)
		}
		entry.Count = len(entry.Entities)
		if entry.LastModified == "" {
			entry.LastModified = in.LastModified
		}
	}
}

// Sorted returns the entries ordered by ancestor id.
func (r *Report) Sorted() []*Entry {
	out := make([]*Entry, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ancestor.ID < out[j].Ancestor.ID })
	return out
}

// FaultCounts returns the number of faults per kind.
func (r *Report) FaultCounts() map[FaultKind]int {
	counts := make(map[FaultKind]int)
	for _, f := range r.Faults {
		counts[f.Kind]++
	}
	return counts
}

func (r *Report) sortFaults() {
	sort.SliceStable(r.Faults, func(i, j int) bool {
		a, b := r.Faults[i], r.Faults[j]
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Message < b.Message
	})
}

// Canonical returns the report as a canonical JSON value. The run id is
// excluded so that two passes over the same snapshots compare equal.
func (r *Report) Canonical() map[string]any {
	entries := make([]any, 0, len(r.Entries))
	for _, e := range r.Sorted() {
		entityEdits := make(map[string]any, len(e.EntityEdits))
		for eid, edits := range e.EntityEdits {
			entityEdits[fmt.Sprintf("%d", eid)] = ir.EditIDs(edits)
		}
		entries = append(entries, map[string]any{
			"ancestor":      e.Ancestor.ID,
			"entities":      ir.EntityIDs(e.Entities),
			"edits":         ir.EditIDs(e.Edits),
			"entity_edits":  entityEdits,
			"count":         e.Count,
			"last_modified": e.LastModified,
		})
	}

	faults := make([]any, 0, len(r.Faults))
	for _, f := range r.Faults {
		faults = append(faults, map[string]any{
			"kind":      string(f.Kind),
			"entity_id": f.EntityID,
			"message":   f.Message,
		})
	}

	return map[string]any{
		"entries":          entries,
		"checked":          r.Checked,
		"skipped_inferred": r.SkippedInferred,
		"faults":           faults,
	}
}

// Fingerprint returns a content hash of Canonical.
func (r *Report) Fingerprint() (string, error) {
	return ir.Fingerprint(r.Canonical())
}

func unionEntities(a, b []ir.Entity) []ir.Entity {
	seen := make(ir.IDSet, len(a)+len(b))
	out := make([]ir.Entity, 0, len(a)+len(b))
	for _, list := range [][]ir.Entity{a, b} {
		for _, e := range list {
			if seen.Add(e.ID) {
				out = append(out, e)
			}
		}
	}
	ir.SortEntities(out)
	return out
}

func unionEdits(a, b []ir.EditRecord) []ir.EditRecord {
	seen := make(ir.IDSet, len(a)+len(b))
	out := make([]ir.EditRecord, 0, len(a)+len(b))
	for _, list := range [][]ir.EditRecord{a, b} {
		for _, e := range list {
			if seen.Add(e.ID) {
				out = append(out, e)
			}
		}
	}
	ir.SortEdits(out)
	return out
}
