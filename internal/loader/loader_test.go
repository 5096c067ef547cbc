package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDirectory_plainFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "DNA replication copies DNA.")
	writeFile(t, dir, "sub/readme.md", "# Methods\nPCR amplifies DNA.")

	docs, err := New(nil).LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	byPath := map[string]string{}
	for _, d := range docs {
		byPath[filepath.Base(d.SourcePath)] = d.Text
	}
	assert.Equal(t, "DNA replication copies DNA.", byPath["notes.txt"])
	assert.Contains(t, byPath["readme.md"], "PCR amplifies DNA.")
}

func TestLoadDirectory_skipsUnsupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", "kept")
	writeFile(t, dir, "skip.csv", "a,b,c")
	writeFile(t, dir, "skip.bin", "\x00\x01")

	docs, err := New(nil).LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "kept", docs[0].Text)
}

func TestLoadDirectory_onlyUnsupportedYieldsNoDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.csv", "a,b,c")

	docs, err := New(nil).LoadDirectory(dir)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadDirectory_missingDirectory(t *testing.T) {
	_, err := New(nil).LoadDirectory(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestLoadDirectory_invalidUTF8Replaced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\x80world"), 0o644))

	docs, err := New(nil).LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "hello�world", docs[0].Text)
}

func TestLoadFiles_skipsUnsupportedAndMissing(t *testing.T) {
	dir := t.TempDir()
	keep := writeFile(t, dir, "paper.txt", "Sequencing reads the bases.")
	csv := writeFile(t, dir, "table.csv", "a,b,c")

	docs := New(nil).LoadFiles([]string{keep, csv, filepath.Join(dir, "absent.txt")})
	require.Len(t, docs, 1)
	assert.Equal(t, "Sequencing reads the bases.", docs[0].Text)
	assert.Equal(t, keep, docs[0].SourcePath)
}

func TestLoadDirectory_corruptPDFSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.pdf", "not a pdf at all")
	writeFile(t, dir, "fine.txt", "fine")

	docs, err := New(nil).LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "fine", docs[0].Text)
}
