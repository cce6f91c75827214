package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/cusip/internal/core"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestLocal_FindFilesForDate(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"CED01-15R.PIP": "000001|ACME\n",
		"ced01-15e.pip": "000001|001\n",
		"CED01-16A.PIP": "other day\n",
		"CED01-15.txt":  "not a pip file\n",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "CED01-15A.PIP"), 0o755))

	src := NewLocal(dir, "")
	fs, err := src.FindFilesForDate(context.Background(), jan15)
	require.NoError(t, err)

	require.NotNil(t, fs.Issuer)
	assert.Equal(t, filepath.Join(dir, "CED01-15R.PIP"), fs.Issuer.DisplayPath())
	assert.Equal(t, core.SourceLocal, fs.Issuer.Source)

	require.NotNil(t, fs.Issue)
	assert.Equal(t, "ced01-15e.pip", fs.Issue.Name)

	assert.Nil(t, fs.IssueAttribute, "directories and other dates are ignored")
}

func TestLocal_CustomPrefix(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"CED01-15R.PIP": "x\n",
		"PIF01-15R.PIP": "y\n",
	})

	fs, err := NewLocal(dir, "PIF").FindFilesForDate(context.Background(), jan15)
	require.NoError(t, err)
	require.NotNil(t, fs.Issuer)
	assert.Equal(t, "PIF01-15R.PIP", fs.Issuer.Name)
}

func TestLocal_NoMatches(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"CED01-16R.PIP": "other day\n",
		"README.txt":    "notes\n",
	})

	fs, err := NewLocal(dir, "").FindFilesForDate(context.Background(), jan15)
	require.NoError(t, err)
	assert.Equal(t, jan15, fs.Date)
	assert.Nil(t, fs.Issuer)
	assert.Nil(t, fs.Issue)
	assert.Nil(t, fs.IssueAttribute)
}

func TestLocal_DirectoryNotFound(t *testing.T) {
	_, err := NewLocal(filepath.Join(t.TempDir(), "missing"), "").FindFilesForDate(context.Background(), jan15)
	assert.ErrorIs(t, err, core.ErrDirectoryNotFound)

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewLocal(file, "").FindFilesForDate(context.Background(), jan15)
	assert.ErrorIs(t, err, core.ErrDirectoryNotFound)
}

func TestLocal_Ambiguous(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"CED01-15R.PIP":     "x\n",
		"CED01-15-OLDR.PIP": "y\n",
	})

	_, err := NewLocal(dir, "").FindFilesForDate(context.Background(), jan15)
	assert.ErrorIs(t, err, core.ErrAmbiguousFiles)
}

func TestLocal_ReadFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"CED01-15R.PIP": "\xEF\xBB\xBF000001|ACME\r\n000002|BAD\xFF\r\n999999|2\r\n\x1a",
	})

	src := NewLocal(dir, "")
	lines, err := src.ReadFile(context.Background(), LocalFile(filepath.Join(dir, "CED01-15R.PIP")))
	require.NoError(t, err)
	assert.Equal(t, []string{"000001|ACME", "000002|BAD�", "999999|2", "\x1a"}, lines)

	assert.Equal(t, []string{"000001|ACME", "000002|BAD�"}, core.Sanitize(lines))
}

func TestLocal_ReadFileErrors(t *testing.T) {
	src := NewLocal(t.TempDir(), "")

	_, err := src.ReadFile(context.Background(), core.FileLocation{Name: "x"})
	assert.ErrorContains(t, err, "no local path")

	_, err = src.ReadFile(context.Background(), LocalFile("/nonexistent/CED01-15R.PIP"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
