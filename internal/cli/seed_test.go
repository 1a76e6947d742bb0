package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactome/doi-suggester/internal/store"
)

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	current := filepath.Join(dir, "cur.db")
	previous := filepath.Join(dir, "prev.db")

	out, err := execute(t, "seed", filepath.Join(scenariosDir, "end_to_end.yaml"),
		"--current", current, "--previous", previous)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded end_to_end")

	st, err := store.OpenSQLite(context.Background(), current)
	require.NoError(t, err)
	defer st.Close()

	counts, err := st.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, counts["ReactionlikeEvent"])
	assert.Equal(t, 6, counts["InstanceEdit"])
	assert.Equal(t, 1, counts["Event_2_inferredFrom"])
}

func TestSeed_RequiresPrevious(t *testing.T) {
	_, err := execute(t, "seed", filepath.Join(scenariosDir, "end_to_end.yaml"),
		"--current", filepath.Join(t.TempDir(), "cur.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--previous is required")
}
