package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactome/doi-suggester/internal/config"
)

func TestSuggest_WritesCSVAndCounts(t *testing.T) {
	configPath, csvPath := seededConfig(t, "end_to_end")

	out, err := execute(t, "--config", configPath, "suggest")
	require.NoError(t, err)

	assert.Equal(t, "1 RLEs for [1] Root\n1 RLEs for [2] Mid\n2 total RLEs have DOI suggestion.\n", out)

	csv, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, `Pathway,RLE,InstanceEdits
[1] Root,[11] Fresh leaf,"[903] Doe, J, 2024-01-22"
[2] Mid,[10] Leaf,"[901] Doe, J, 2024-01-15"
`, string(csv))
}

func TestSuggest_OutputOverrideSummaryAndMetrics(t *testing.T) {
	configPath, _ := seededConfig(t, "end_to_end")
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "override.csv")
	summaryPath := filepath.Join(dir, "summary.tsv")
	metricsPath := filepath.Join(dir, "doi.prom")

	out, err := execute(t, "--config", configPath, "suggest",
		"-o", csvPath, "--summary", summaryPath, "--metrics-file", metricsPath, "--table")
	require.NoError(t, err)
	assert.Contains(t, out, "[2] Mid")
	assert.Contains(t, out, "No modification instances")

	_, err = os.Stat(csvPath)
	require.NoError(t, err)

	summary, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(summary), "2 DOI suggestions\n")
	assert.Contains(t, string(summary), "[1] Root\t1\t[11] Fresh leaf\t[903] Doe, J, 2024-01-22\t[950] Smith, K, 2024-02-01\n")

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "doi_suggester_suggestions_total 2")
	assert.Contains(t, string(metrics), `doi_suggester_entities_checked_total{branch="inferred"} 1`)
}

func TestSuggest_JSON(t *testing.T) {
	configPath, _ := seededConfig(t, "end_to_end")

	out, err := execute(t, "--config", configPath, "--format", "json", "suggest")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		RunID  string `json:"run_id"`
		Data   struct {
			Checked         int `json:"checked"`
			SkippedInferred int `json:"skipped_inferred"`
			Entries         []struct {
				Count        int    `json:"count"`
				LastModified string `json:"last_modified"`
			} `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 2, resp.Data.Checked)
	assert.Equal(t, 1, resp.Data.SkippedInferred)
	require.Len(t, resp.Data.Entries, 2)
	assert.Equal(t, "[950] Smith, K, 2024-02-01", resp.Data.Entries[0].LastModified)
}

func TestSuggest_MissingProperty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.properties")
	require.NoError(t, os.WriteFile(path, []byte("automatedDOIs.driver=sqlite3\nautomatedDOIs.dbName=x.db\n"), 0644))

	_, err := execute(t, "--config", path, "suggest")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, errors.Is(err, config.ErrPropertyNotPresent))
}

func TestSuggest_UnwritableOutput(t *testing.T) {
	configPath, _ := seededConfig(t, "end_to_end")

	_, err := execute(t, "--config", configPath, "suggest", "-o", filepath.Join(t.TempDir(), "missing", "out.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to write CSV")
}

func TestVerify_Idempotent(t *testing.T) {
	configPath, _ := seededConfig(t, "end_to_end")

	out, err := execute(t, "--config", configPath, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Pass 1: ")
	assert.Contains(t, out, "Pass 2: ")
	assert.Contains(t, out, "✓ Reports are identical")
}

func TestVerify_JSON(t *testing.T) {
	configPath, _ := seededConfig(t, "end_to_end")

	out, err := execute(t, "--config", configPath, "--format", "json", "verify")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   VerifyResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Idempotent)
	require.Len(t, resp.Data.Runs, 2)
	assert.NotEqual(t, resp.Data.Runs[0].RunID, resp.Data.Runs[1].RunID)
	assert.Equal(t, resp.Data.Runs[0].Fingerprint, resp.Data.Runs[1].Fingerprint)
}
