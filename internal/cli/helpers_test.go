package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reactome/doi-suggester/internal/harness"
)

const scenariosDir = "../harness/testdata/scenarios"

// seededConfig seeds the named fixture into SQLite releases and returns a
// config file pointing at them, plus the CSV output path it configures.
func seededConfig(t *testing.T, scenario string) (configPath, csvPath string) {
	t.Helper()
	dir := t.TempDir()
	current := filepath.Join(dir, "current.db")
	previous := filepath.Join(dir, "previous.db")

	s, err := harness.LoadScenario(filepath.Join(scenariosDir, scenario+".yaml"))
	require.NoError(t, err)
	require.NoError(t, harness.SeedFiles(context.Background(), s, current, previous))

	csvPath = filepath.Join(dir, "out.csv")
	configPath = filepath.Join(dir, "config.properties")
	content := fmt.Sprintf(`automatedDOIs.driver=sqlite3
automatedDOIs.dbName=%s
automatedDOIs.prevDbName=%s
automatedDOIs.outputFile=%s
automatedDOIs.workers=2
`, current, previous, csvPath)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath, csvPath
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}
