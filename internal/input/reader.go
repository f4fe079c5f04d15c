package input

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/xmsync/internal/value"
)

// Reader loads a source file into a Table.
type Reader interface {
	Read(path string) (*Table, error)
}

// FileReader reads .csv and .json files from disk.
type FileReader struct{}

// ReadError describes a failure to read or parse a source file.
type ReadError struct {
	Path string
	Line int // 1-based; 0 when unknown
	Err  error
}

func (e *ReadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ErrUnsupportedFormat is returned for files that are neither .csv nor .json.
var ErrUnsupportedFormat = errors.New("unsupported input format (want .csv or .json)")

// Read implements Reader.
func (FileReader) Read(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	var tbl *Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		tbl, err = ParseCSV(bytes.NewReader(data))
	case ".json":
		tbl, err = ParseJSON(data)
	default:
		return nil, &ReadError{Path: path, Err: ErrUnsupportedFormat}
	}
	if err != nil {
		var re *ReadError
		if errors.As(err, &re) {
			re.Path = path
			return nil, re
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	tbl.Path = path
	return tbl, nil
}

// ParseCSV reads a CSV stream whose first record is the header.
// Short records are tolerated; their missing trailing cells are left out of
// the row rather than stored as empty strings.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return NewTable(nil), nil
	}
	if err != nil {
		return nil, csvError(err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	tbl := NewTable(header)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = value.String(rec[i])
			}
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ReadError{Line: pe.Line, Err: pe.Err}
	}
	return err
}

// ParseJSON reads a JSON array of objects. The column set is the union of
// every object's keys. Header order follows the objects; keys new to an
// object are appended in sorted order.
func ParseJSON(data []byte) (*Table, error) {
	v, err := value.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	items, ok := v.(value.List)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array of objects, got %T", v)
	}

	tbl := NewTable(nil)
	for i, item := range items {
		obj, ok := item.(value.Object)
		if !ok {
			return nil, fmt.Errorf("item %d: expected object, got %T", i, item)
		}
		for _, k := range obj.SortedKeys() {
			if !tbl.Columns.Has(k) {
				tbl.Columns[k] = struct{}{}
				tbl.Header = append(tbl.Header, k)
			}
		}
		tbl.Rows = append(tbl.Rows, Row(obj))
	}
	return tbl, nil
}
