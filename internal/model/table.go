package model

import "time"

// GenericRecord is one row: column name to value.
// After normalization values are time.Time (date), string, int64 (measures) or nil.
type GenericRecord map[string]interface{}

// Clone returns a shallow copy of the record
func (r GenericRecord) Clone() GenericRecord {
	out := make(GenericRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered set of columns and rows. The zero value is the empty table.
type Table struct {
	Columns []string        `json:"columns"`
	Rows    []GenericRecord `json:"rows"`
}

// IsEmpty reports whether the table holds no rows
func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// Len returns the number of rows
func (t Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether name is one of the table's columns
func (t Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the position of name in Columns, or -1
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Clone copies the column list and every row so the result can be changed freely
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]GenericRecord, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Head returns a table with at most n rows sharing the original records
func (t Table) Head(n int) Table {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// DateOf returns the row's parsed date, if any
func DateOf(r GenericRecord) (time.Time, bool) {
	d, ok := r[ColDate].(time.Time)
	return d, ok
}

// StringOf returns a string-typed value, or "" when absent or of another type
func StringOf(r GenericRecord, col string) string {
	s, _ := r[col].(string)
	return s
}

// IntOf returns an int64-typed value, or 0 when absent or of another type
func IntOf(r GenericRecord, col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
