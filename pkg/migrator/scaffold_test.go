package migrator

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaffoldIntegerVersions(t *testing.T) {
	dir := t.TempDir()

	doPath, undoPath, err := Scaffold(dir, "Add new table", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "001.do.add-new-table.sql"), doPath)
	assert.Equal(t, filepath.Join(dir, "001.undo.add-new-table.sql"), undoPath)

	content, err := os.ReadFile(doPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Write your migration SQL here")
	content, err = os.ReadFile(undoPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Write your rollback SQL here")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "007.do.jump.sql"), []byte("SELECT 1;"), 0o644))
	doPath, _, err = Scaffold(dir, "  Next -- one!  ", false)
	require.NoError(t, err)
	assert.Equal(t, "008.do.next-one.sql", filepath.Base(doPath))

	migs, err := LoadMigrations(Config{FS: os.DirFS(dir)})
	require.NoError(t, err)
	assert.Len(t, migs, 5)
}

func TestScaffoldTimestampVersions(t *testing.T) {
	dir := t.TempDir()
	before := time.Now().Unix()

	doPath, _, err := Scaffold(dir, "Fix bug", true)
	require.NoError(t, err)

	prefix, _, found := strings.Cut(filepath.Base(doPath), ".")
	require.True(t, found)
	ts, err := strconv.ParseInt(prefix, 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ts, before)
	assert.True(t, strings.HasSuffix(doPath, ".do.fix-bug.sql"))
}

func TestScaffoldRejectsEmptyDescription(t *testing.T) {
	_, _, err := Scaffold(t.TempDir(), "!!!", false)
	require.Error(t, err)
}
