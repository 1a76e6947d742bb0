package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/ir"
	"github.com/reactome/doi-suggester/internal/testutil"
)

// sampleReport runs a pass over two pathways: Glycolysis collects two
// reactions, "Signaling, general" one, and an internal-only edit is ignored.
func sampleReport(t *testing.T) *engine.Report {
	t.Helper()
	current := testutil.NewBuilder().
		Pathway(100, "Glycolysis", 11, 12).
		Pathway(200, "Signaling, general", 13).
		Reaction(11, "HK1 phosphorylates glucose").
		Reaction(12, "PFK reaction").
		Reaction(13, "Receptor binding").
		Authored(11, testutil.External(1)).
		Edits(11, ir.Reviewed, testutil.External(2)).
		Authored(12, testutil.External(3)).
		Authored(13, testutil.Internal(4), testutil.External(5)).
		Modified(100, testutil.Internal(60)).
		Build()

	report, err := engine.RunSuggestionPass(context.Background(), current, nil, engine.Options{
		RunID:   testutil.FixedRunID,
		Workers: 2,
	})
	require.NoError(t, err)
	return report
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestWriteCSV_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport(t)))

	newGoldie(t).Assert(t, "suggestions_csv", buf.Bytes())
}

func TestWriteSummary_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, sampleReport(t)))

	newGoldie(t).Assert(t, "summary_tsv", buf.Bytes())
}

func TestWriteCounts_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCounts(&buf, sampleReport(t)))

	newGoldie(t).Assert(t, "counts", buf.Bytes())
}

func TestWriteCSV_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, engine.NewReport("empty")))

	assert.Equal(t, "Pathway,RLE,InstanceEdits\n", buf.String())
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleReport(t)))

	out := buf.String()
	assert.Contains(t, out, "[100] Glycolysis")
	assert.Contains(t, out, "[200] Signaling, general")
	assert.Contains(t, out, engine.NoModificationMarker)
}

func TestRows_Ordering(t *testing.T) {
	rows := Rows(sampleReport(t))

	require.Len(t, rows, 3)
	assert.Equal(t, "[100] Glycolysis", rows[0].Pathway)
	assert.Equal(t, "[11] HK1 phosphorylates glucose", rows[0].Entity)
	assert.Equal(t, "[12] PFK reaction", rows[1].Entity)
	assert.Equal(t, "[13] Receptor binding", rows[2].Entity)
	assert.Len(t, rows[0].Edits, 2)
}

func TestToView(t *testing.T) {
	report := sampleReport(t)

	v, err := ToView(report)
	require.NoError(t, err)

	assert.Equal(t, testutil.FixedRunID, v.RunID)
	assert.Equal(t, ir.ReportVersion, v.ReportVersion)
	require.Len(t, v.Entries, 2)
	assert.Equal(t, 2, v.Entries[0].Count)
	assert.Equal(t, []ir.ID{1, 2}, v.Entries[0].EntityEdits["11"])
	assert.Empty(t, v.Faults)

	fp, err := report.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp, v.Fingerprint)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"last_modified":"No modification instances"`)
}
