package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/xmsync/internal/input"
)

// CSV parses content as a CSV source table, failing the test on error.
func CSV(t testing.TB, content string) *input.Table {
	t.Helper()
	tbl, err := input.ParseCSV(strings.NewReader(content))
	require.NoError(t, err)
	return tbl
}

// JSON parses content as a JSON source table, failing the test on error.
func JSON(t testing.TB, content string) *input.Table {
	t.Helper()
	tbl, err := input.ParseJSON([]byte(content))
	require.NoError(t, err)
	return tbl
}

// WriteFile writes content to dir/name, creating parent directories, and
// returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// MapReader serves source files from memory, keyed by path. The format
// follows the extension, as with input.FileReader.
type MapReader map[string]string

// Read implements input.Reader.
func (m MapReader) Read(path string) (*input.Table, error) {
	content, ok := m[path]
	if !ok {
		return nil, &input.ReadError{Path: path, Err: os.ErrNotExist}
	}

	var (
		tbl *input.Table
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		tbl, err = input.ParseCSV(bytes.NewReader([]byte(content)))
	case ".json":
		tbl, err = input.ParseJSON([]byte(content))
	default:
		err = input.ErrUnsupportedFormat
	}
	if err != nil {
		return nil, &input.ReadError{Path: path, Err: err}
	}
	tbl.Path = path
	return tbl, nil
}
