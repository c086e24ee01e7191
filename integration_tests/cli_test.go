package integration_tests

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/TFMV/icetour/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIRunTwice(t *testing.T) {
	dir := t.TempDir()
	env := []string{"ICETOUR_TABLE=" + uniqueTable()}

	_, stderr, code := runIcetour(t, dir, env, "init", ".")
	require.Equal(t, 0, code, stderr)

	for i := 0; i < 2; i++ {
		stdout, stderr, code := runIcetour(t, dir, env, "run")
		require.Equal(t, 0, code, "run %d failed: %s", i+1, stderr)
		assert.Contains(t, stdout, "Table contents:")
		assert.Contains(t, stdout, "Example 1")
		assert.Contains(t, stdout, "deleted_at")
	}

	stdout, stderr, code := runIcetour(t, dir, env, "scan", "--format", "csv")
	require.Equal(t, 0, code, stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, "id,name,created_at,deleted_at", lines[0])
	assert.Len(t, lines, 5)

	stdout, stderr, code = runIcetour(t, dir, env, "describe", "--files")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "metadata.json")
}

func TestCLIUnreachableCatalog(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Catalog.REST.URI = "http://127.0.0.1:1"
	require.NoError(t, config.WriteConfig(filepath.Join(dir, config.FileName), cfg))

	stdout, stderr, code := runIcetour(t, dir, []string{"ICETOUR_CATALOG_URI="}, "run", "--skip-bucket")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Error: connect:")
	assert.Equal(t, 1, strings.Count(stdout, "Error:"))
	assert.NotContains(t, stderr, "Error:")
	assert.Contains(t, stderr, "127.0.0.1:1")
}
