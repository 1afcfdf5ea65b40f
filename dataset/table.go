// Package dataset provides the in-memory passenger table: typed columns
// with explicit missing-value markers, CSV loading and stratified splitting.
package dataset

import (
	"github.com/mlpipes/titanic/pkg/errors"
)

// ColumnKind discriminates between numeric and categorical columns.
type ColumnKind int

const (
	// Numeric columns store float64 values.
	Numeric ColumnKind = iota
	// Categorical columns store raw string categories.
	Categorical
)

// Column is a single typed column. Floats is populated for Numeric columns,
// Strings for Categorical ones; Missing marks cells that were empty in the
// source file. Columns are immutable once loaded.
type Column struct {
	Name    string
	Kind    ColumnKind
	Floats  []float64
	Strings []string
	Missing []bool
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// Table is a collection of equally sized columns.
type Table struct {
	cols  []Column
	index map[string]int
	nrows int
}

// NewTable builds a table from columns. All columns must have the same length.
func NewTable(cols ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			t.nrows = c.Len()
		} else if c.Len() != t.nrows {
			return nil, errors.NewDimensionError("NewTable", t.nrows, c.Len(), 0)
		}
		if len(c.Missing) == 0 {
			c.Missing = make([]bool, c.Len())
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, errors.NewValueError("NewTable", "duplicate column "+c.Name)
		}
		t.index[c.Name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nrows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or false if it does not exist.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.cols[i], true
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Select returns a table with only the requested columns, in the requested
// order. Names not present in the table are dropped silently: the selection
// is a caller-supplied allow-list, not a schema assertion.
func (t *Table) Select(names ...string) *Table {
	out := &Table{index: make(map[string]int), nrows: t.nrows}
	for _, name := range names {
		i, ok := t.index[name]
		if !ok {
			continue
		}
		out.index[name] = len(out.cols)
		out.cols = append(out.cols, t.cols[i])
	}
	if len(out.cols) == 0 {
		out.nrows = 0
	}
	return out
}

// Subset returns a table containing the given rows, in order.
func (t *Table) Subset(rows []int) *Table {
	out := &Table{index: make(map[string]int, len(t.cols)), nrows: len(rows)}
	for i, c := range t.cols {
		sub := Column{Name: c.Name, Kind: c.Kind, Missing: make([]bool, len(rows))}
		if c.Kind == Numeric {
			sub.Floats = make([]float64, len(rows))
		} else {
			sub.Strings = make([]string, len(rows))
		}
		for j, r := range rows {
			sub.Missing[j] = c.Missing[r]
			if c.Kind == Numeric {
				sub.Floats[j] = c.Floats[r]
			} else {
				sub.Strings[j] = c.Strings[r]
			}
		}
		out.index[c.Name] = i
		out.cols = append(out.cols, sub)
	}
	return out
}

// IntColumn returns a numeric column rounded to ints.
// Missing cells are an error: callers use it for labels and identifiers,
// which are always fully observed.
func (t *Table) IntColumn(name string) ([]int, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, errors.NewValueError("IntColumn", "no such column "+name)
	}
	if c.Kind != Numeric {
		return nil, errors.NewValueError("IntColumn", "column "+name+" is not numeric")
	}
	out := make([]int, len(c.Floats))
	for i, v := range c.Floats {
		if c.Missing[i] {
			return nil, errors.NewValueError("IntColumn", "column "+name+" has missing values")
		}
		out[i] = int(v + 0.5)
	}
	return out, nil
}

// MissingCount returns the number of missing cells in the whole table.
func (t *Table) MissingCount() int {
	n := 0
	for _, c := range t.cols {
		for _, m := range c.Missing {
			if m {
				n++
			}
		}
	}
	return n
}
