package iff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrBadDataTable means the IFF tree is valid but its datatable payload
// is not.
var ErrBadDataTable = errors.New("bad datatable")

// ColumnType identifies how a column's cells are encoded.
type ColumnType int

const (
	StringColumn ColumnType = iota
	IntColumn
	FloatColumn
	BoolColumn
	EnumColumn
)

func (t ColumnType) String() string {
	switch t {
	case StringColumn:
		return "string"
	case IntColumn:
		return "int"
	case FloatColumn:
		return "float"
	case BoolColumn:
		return "bool"
	case EnumColumn:
		return "enum"
	}
	return "unknown"
}

// Column describes one datatable column. Default is the raw default
// spec from the type string; Options holds enum labels in declaration
// order.
type Column struct {
	Name    string
	Type    ColumnType
	Default string
	Options []string
}

// DataTable is a decoded DTII table. Row cells hold string, int64,
// float64, or bool values matching the column types; enum cells hold
// the selected index as an int64.
type DataTable struct {
	Columns []Column
	Rows    [][]any
}

// ParseDataTable decodes a DTII datatable file.
func ParseDataTable(data []byte) (*DataTable, error) {
	root, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if root.Type != "DTII" {
		return nil, fmt.Errorf("%w: root form is %q, want DTII", ErrBadDataTable, root.Type)
	}
	version := root.Form("0001")
	if version == nil {
		return nil, fmt.Errorf("%w: missing 0001 version form", ErrBadDataTable)
	}

	cols := version.Chunk("COLS")
	types := version.Chunk("TYPE")
	rows := version.Chunk("ROWS")
	if cols == nil || types == nil || rows == nil {
		return nil, fmt.Errorf("%w: missing COLS, TYPE or ROWS chunk", ErrBadDataTable)
	}

	table := &DataTable{}
	if err := table.parseColumns(cols.Data, types.Data); err != nil {
		return nil, err
	}
	if err := table.parseRows(rows.Data); err != nil {
		return nil, err
	}
	return table, nil
}

func (t *DataTable) parseColumns(cols, types []byte) error {
	if len(cols) < 4 {
		return fmt.Errorf("%w: truncated COLS chunk", ErrBadDataTable)
	}
	count := binary.LittleEndian.Uint32(cols)
	cols = cols[4:]

	t.Columns = make([]Column, count)
	for i := range t.Columns {
		name, rest, err := nullString(cols)
		if err != nil {
			return fmt.Errorf("%w: column %d name: %v", ErrBadDataTable, i, err)
		}
		t.Columns[i].Name = name
		cols = rest
	}

	for i := range t.Columns {
		spec, rest, err := nullString(types)
		if err != nil {
			return fmt.Errorf("%w: column %d type: %v", ErrBadDataTable, i, err)
		}
		if err := parseTypeSpec(&t.Columns[i], spec); err != nil {
			return err
		}
		types = rest
	}
	return nil
}

// parseTypeSpec decodes a column type string such as "s", "i[0]",
// "b[1]", "f[0.5]" or "e(low=0,high=1)[0]".
func parseTypeSpec(col *Column, spec string) error {
	if spec == "" {
		return fmt.Errorf("%w: column %q has empty type", ErrBadDataTable, col.Name)
	}
	if open := strings.IndexByte(spec, '['); open >= 0 {
		if end := strings.IndexByte(spec[open:], ']'); end > 0 {
			col.Default = spec[open+1 : open+end]
		}
	}
	if open := strings.IndexByte(spec, '('); open >= 0 {
		if end := strings.IndexByte(spec[open:], ')'); end > 0 {
			for _, opt := range strings.Split(spec[open+1:open+end], ",") {
				label, _, _ := strings.Cut(opt, "=")
				col.Options = append(col.Options, label)
			}
		}
	}

	switch spec[0] {
	case 's':
		col.Type = StringColumn
	case 'i':
		col.Type = IntColumn
	case 'f':
		col.Type = FloatColumn
	case 'b':
		col.Type = BoolColumn
	case 'e':
		col.Type = EnumColumn
	default:
		return fmt.Errorf("%w: column %q has unknown type %q", ErrBadDataTable, col.Name, spec)
	}
	return nil
}

func (t *DataTable) parseRows(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("%w: truncated ROWS chunk", ErrBadDataTable)
	}
	count := binary.LittleEndian.Uint32(data)
	data = data[4:]

	t.Rows = make([][]any, 0, count)
	for r := uint32(0); r < count; r++ {
		row := make([]any, len(t.Columns))
		for c := range t.Columns {
			value, rest, err := decodeCell(t.Columns[c].Type, data)
			if err != nil {
				return fmt.Errorf("%w: row %d column %q: %v", ErrBadDataTable, r, t.Columns[c].Name, err)
			}
			row[c] = value
			data = rest
		}
		t.Rows = append(t.Rows, row)
	}
	if len(data) != 0 {
		return fmt.Errorf("%w: %d trailing bytes after %d rows", ErrBadDataTable, len(data), count)
	}
	return nil
}

func decodeCell(typ ColumnType, data []byte) (any, []byte, error) {
	switch typ {
	case StringColumn:
		return nullString(data)
	case IntColumn, EnumColumn:
		if len(data) < 4 {
			return nil, nil, errors.New("truncated cell")
		}
		return int64(int32(binary.LittleEndian.Uint32(data))), data[4:], nil
	case FloatColumn:
		if len(data) < 4 {
			return nil, nil, errors.New("truncated cell")
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data))), data[4:], nil
	case BoolColumn:
		if len(data) < 4 {
			return nil, nil, errors.New("truncated cell")
		}
		return binary.LittleEndian.Uint32(data) != 0, data[4:], nil
	}
	return nil, nil, fmt.Errorf("unhandled column type %v", typ)
}

func nullString(data []byte) (string, []byte, error) {
	for i, b := range data {
		if b == 0 {
			return string(data[:i]), data[i+1:], nil
		}
	}
	return "", nil, errors.New("unterminated string")
}
