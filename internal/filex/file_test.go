package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesMissingDir(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "nested", "deep", "data.db")

	dir, err := EnsureParentDir(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, "nested", "deep"), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestEnsureParentDir_ExistingDirIsFine(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "data.db")

	dir, err := EnsureParentDir(path)
	require.NoError(t, err)
	require.Equal(t, base, dir)
}

func TestEnsureParentDir_BareFileName(t *testing.T) {
	dir, err := EnsureParentDir("data.db")
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.Equal(t, cwd, dir)
}
