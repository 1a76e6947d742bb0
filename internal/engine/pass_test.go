package engine_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/ir"
	"github.com/reactome/doi-suggester/internal/snapshot"
	tu "github.com/reactome/doi-suggester/internal/testutil"
)

// endToEndPair is the canonical scenario: leaf R gains external edit e2 under
// root pathway X, which only carries e1.
func endToEndPair() (current, previous *snapshot.Memory) {
	e1, e2 := tu.Edit(1, "Reactome"), tu.Edit(2, "ext")
	previous = tu.NewBuilder().
		Pathway(100, "X", leafID).
		Reaction(leafID, "R").
		Authored(leafID, e1).
		Build()
	current = tu.NewBuilder().
		Pathway(100, "X", leafID).
		Reaction(leafID, "R").
		Authored(leafID, e1, e2).
		Authored(100, e1).
		Modified(100, tu.Internal(50), tu.Internal(51)).
		Build()
	return current, previous
}

func runPass(t *testing.T, current, previous engine.Snapshot, opts engine.Options) *engine.Report {
	t.Helper()
	if opts.RunID == "" {
		opts.RunID = tu.FixedRunID
	}
	report, err := engine.RunSuggestionPass(context.Background(), current, previous, opts)
	require.NoError(t, err)
	require.NotNil(t, report)
	return report
}

func TestRunSuggestionPass_EndToEnd(t *testing.T) {
	current, previous := endToEndPair()

	report := runPass(t, current, previous, engine.Options{})

	require.Len(t, report.Entries, 1)
	entry := report.Entries[100]
	require.NotNil(t, entry)
	assert.Equal(t, []ir.ID{leafID}, ir.EntityIDs(entry.Entities))
	assert.Equal(t, []ir.ID{2}, ir.EditIDs(entry.Edits))
	assert.Equal(t, 1, entry.Count)
	assert.Equal(t, tu.Internal(51).Ref(), entry.LastModified)
	assert.Equal(t, 1, report.Checked)
	assert.Empty(t, report.Faults)
	assert.Equal(t, tu.FixedRunID, report.RunID)
}

func TestRunSuggestionPass_Idempotent(t *testing.T) {
	current, previous := endToEndPair()

	first := runPass(t, current, previous, engine.Options{Workers: 1})
	second := runPass(t, current, previous, engine.Options{Workers: 4})

	fp1, err := first.Fingerprint()
	require.NoError(t, err)
	fp2, err := second.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
}

func TestRunSuggestionPass_GroupsLeavesByAncestor(t *testing.T) {
	current := tu.NewBuilder().
		Pathway(100, "X", 11, 12, 13).
		Reaction(11, "R1").
		Reaction(12, "R2").
		Reaction(13, "R3").
		Authored(11, tu.External(1)).
		Authored(12, tu.External(2), tu.External(1)).
		Authored(13, tu.Internal(3)).
		Build()

	report := runPass(t, current, nil, engine.Options{Workers: 3})

	require.Len(t, report.Entries, 1)
	entry := report.Entries[100]
	assert.Equal(t, []ir.ID{11, 12}, ir.EntityIDs(entry.Entities))
	assert.Equal(t, []ir.ID{1, 2}, ir.EditIDs(entry.Edits))
	assert.Equal(t, 2, entry.Count)
	assert.Equal(t, []ir.ID{1}, ir.EditIDs(entry.EntityEdits[11]))
	assert.Equal(t, []ir.ID{1, 2}, ir.EditIDs(entry.EntityEdits[12]))
	assert.Equal(t, engine.NoModificationMarker, entry.LastModified)
	assert.Equal(t, 3, report.Checked)
}

func TestRunSuggestionPass_SkipsInferred(t *testing.T) {
	current := tu.NewBuilder().
		Pathway(100, "X", 11, 12).
		Reaction(11, "R1").
		Reaction(12, "R2 inferred").
		Authored(11, tu.External(1)).
		Authored(12, tu.External(2)).
		Inferred(12).
		Build()

	report := runPass(t, current, nil, engine.Options{})

	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.SkippedInferred)
	assert.Equal(t, []ir.ID{11}, ir.EntityIDs(report.Entries[100].Entities))
}

func TestRunSuggestionPass_FaultIsolation(t *testing.T) {
	inner := tu.NewBuilder().
		Pathway(100, "X", 11, 12).
		Reaction(11, "R1").
		Reaction(12, "R2").
		Authored(11, tu.External(1)).
		Authored(12, tu.External(2)).
		Build()
	current := snapshot.NewFaulty(inner)
	current.FailEdits.Add(12)

	report := runPass(t, current, nil, engine.Options{Workers: 2})

	assert.Equal(t, []ir.ID{11}, ir.EntityIDs(report.Entries[100].Entities))
	require.Len(t, report.Faults, 1)
	assert.Equal(t, engine.FaultFetchFailed, report.Faults[0].Kind)
	assert.Equal(t, ir.ID(12), report.Faults[0].EntityID)
	assert.Equal(t, map[engine.FaultKind]int{engine.FaultFetchFailed: 1}, report.FaultCounts())
}

func TestRunSuggestionPass_LastModifiedFault(t *testing.T) {
	cur, prev := endToEndPair()
	current := snapshot.NewFaulty(cur)
	current.FailModified.Add(100)

	report := runPass(t, current, prev, engine.Options{})

	require.Contains(t, report.Entries, ir.ID(100))
	assert.Empty(t, report.Entries[100].LastModified)
	require.Len(t, report.Faults, 1)
	assert.Equal(t, ir.ID(100), report.Faults[0].EntityID)
}

func TestRunSuggestionPass_FatalWhenLeavesUnavailable(t *testing.T) {
	current := snapshot.NewFaulty(tu.NewBuilder().Build())
	current.FailLeaves = true

	report, err := engine.RunSuggestionPass(context.Background(), current, nil, engine.Options{})

	require.Error(t, err)
	assert.True(t, engine.IsFatal(err))
	assert.Nil(t, report)
}

func TestRunSuggestionPass_Cancelled(t *testing.T) {
	current, previous := endToEndPair()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := engine.RunSuggestionPass(ctx, current, previous, engine.Options{})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, engine.IsFatal(err))
	assert.Nil(t, report)
}

// cancelOnParents cancels the pass while a leaf is being resolved.
type cancelOnParents struct {
	*snapshot.Memory
	cancel context.CancelFunc
}

func (c cancelOnParents) Parents(ctx context.Context, id ir.ID) ([]ir.Entity, error) {
	c.cancel()
	return c.Memory.Parents(ctx, id)
}

func TestRunSuggestionPass_CancelledDuringLastLeaf(t *testing.T) {
	current, previous := endToEndPair()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	report, err := engine.RunSuggestionPass(ctx, cancelOnParents{Memory: current, cancel: cancel}, previous, engine.Options{Workers: 1})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "pass cancelled")
	assert.Nil(t, report)
}

func TestRunSuggestionPass_EmptySnapshot(t *testing.T) {
	report := runPass(t, tu.NewBuilder().Build(), nil, engine.Options{})

	assert.Empty(t, report.Entries)
	assert.Equal(t, 0, report.Checked)
}

func TestRunSuggestionPass_Metrics(t *testing.T) {
	current := tu.NewBuilder().
		Pathway(100, "X", 11, 12, 13).
		Reaction(11, "R1").
		Reaction(12, "R2").
		Reaction(13, "R3").
		Authored(11, tu.External(1)).
		Authored(12, ir.EditRecord{ID: 2}).
		Inferred(13).
		Build()
	previous := tu.NewBuilder().Reaction(12, "R2").Build()

	reg := prometheus.NewRegistry()
	m, err := engine.NewMetrics(reg)
	require.NoError(t, err)

	runPass(t, current, previous, engine.Options{Metrics: m})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.EntitiesChecked.WithLabelValues("new")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EntitiesChecked.WithLabelValues("existing")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EntitiesChecked.WithLabelValues("inferred")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Faults.WithLabelValues("DATA_QUALITY")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Suggestions))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PassDuration))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := engine.NewMetrics(reg)
	require.NoError(t, err)

	_, err = engine.NewMetrics(reg)
	assert.Error(t, err)
}

func TestReportMerge_OrderIndependent(t *testing.T) {
	x := tu.Pathway(100, "X")
	a := engine.EntityResult{
		Entity: tu.Reaction(11, "R1"),
		Branch: engine.BranchNew,
		Suggestions: []engine.Suggestion{
			{Ancestor: x, Entity: tu.Reaction(11, "R1"), Edits: seq(1, 2)},
		},
	}
	b := engine.EntityResult{
		Entity: tu.Reaction(12, "R2"),
		Branch: engine.BranchExisting,
		Suggestions: []engine.Suggestion{
			{Ancestor: x, Entity: tu.Reaction(12, "R2"), Edits: seq(2, 3)},
		},
	}

	ab := engine.NewReport("")
	ab.Merge(a.Report())
	ab.Merge(b.Report())
	ba := engine.NewReport("")
	ba.Merge(b.Report())
	ba.Merge(a.Report())

	assert.Equal(t, ab.Canonical(), ba.Canonical())
	assert.Equal(t, 2, ab.Entries[100].Count)
	assert.Equal(t, []ir.ID{1, 2, 3}, ir.EditIDs(ab.Entries[100].Edits))
	assert.Equal(t, 2, ab.Checked)
}
