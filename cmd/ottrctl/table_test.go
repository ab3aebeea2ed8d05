package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCSVTableCoercesNumericColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name,age\nhttp://ex/1,Alice,30\nhttp://ex/2,Bob,12\n"), 0o644))

	batch, err := loadCSVTable(path)
	require.NoError(t, err)
	require.Equal(t, 2, batch.Height())

	age := batch.Column("age")
	require.Equal(t, int64(30), age.Values[0])
	require.Equal(t, int64(12), age.Values[1])

	name := batch.Column("name")
	require.Equal(t, "Alice", name.Values[0])
}

func TestLoadCSVTableKeepsMixedColumnAsString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mixed.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,val\na,1\nb,not-a-number\n"), 0o644))

	batch, err := loadCSVTable(path)
	require.NoError(t, err)
	val := batch.Column("val")
	require.Equal(t, "1", val.Values[0])
	require.Equal(t, "not-a-number", val.Values[1])
}

func TestLoadCSVTableEmptyCellIsNil(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sparse.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name\na,\n"), 0o644))

	batch, err := loadCSVTable(path)
	require.NoError(t, err)
	require.Nil(t, batch.Column("name").Values[0])
}
