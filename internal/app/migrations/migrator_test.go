package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	require.Equal(t, "001", Version("001_init.sql"))
	require.Equal(t, "002", Version("/tmp/migrations/002_add_capacity_index.sql"))
	require.Equal(t, "seed.sql", Version("seed.sql"))
}

func TestSQLFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700))

	files, err := SQLFiles(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "001_a.sql"),
		filepath.Join(dir, "002_b.sql"),
	}, files)

	_, err = SQLFiles(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestRepositoryMigrationsAreOrdered(t *testing.T) {
	files, err := SQLFiles(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	require.Equal(t, "001", Version(files[0]))
}
