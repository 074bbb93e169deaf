package listings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.xlsx", "~$a.xlsx", "notes.txt", "c.XLSM"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	got, err := ExpandPaths([]string{"single.csv", dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"single.csv",
		filepath.Join(dir, "a.xlsx"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "c.XLSM"),
	}, got)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("x.CSV"))
	assert.True(t, Supported("x.xlsx"))
	assert.False(t, Supported("x.xls"))
	assert.False(t, Supported("x"))
}
