package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/mlpipes/titanic/pkg/errors"
)

// LoadCSV reads a CSV file into a typed table. The first record is the
// header. Empty cells become explicit missing markers. A column whose every
// observed cell parses as a number is loaded as Numeric, otherwise as
// Categorical.
//
// A missing file surfaces as an error satisfying errors.IsNotFound; rows
// with an inconsistent field count surface as a ParseError.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	t, err := readCSV(f, path)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func readCSV(r io.Reader, path string) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewParseError(path, 0, "empty file")
	}
	if err != nil {
		return nil, errors.NewParseError(path, 1, err.Error())
	}

	cells := make([][]string, len(header))
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// encoding/csv reports inconsistent field counts here.
			if perr, ok := err.(*csv.ParseError); ok {
				return nil, errors.NewParseError(path, perr.Line, perr.Err.Error())
			}
			return nil, errors.NewParseError(path, line, err.Error())
		}
		for i, cell := range record {
			cells[i] = append(cells[i], cell)
		}
	}

	cols := make([]Column, len(header))
	for i, name := range header {
		cols[i] = typeColumn(name, cells[i])
	}
	return NewTable(cols...)
}

// typeColumn decides Numeric vs Categorical by scanning the full column.
func typeColumn(name string, raw []string) Column {
	missing := make([]bool, len(raw))
	numeric := true
	for i, cell := range raw {
		if cell == "" {
			missing[i] = true
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			numeric = false
		}
	}

	if !numeric {
		strs := make([]string, len(raw))
		copy(strs, raw)
		return Column{Name: name, Kind: Categorical, Strings: strs, Missing: missing}
	}

	floats := make([]float64, len(raw))
	for i, cell := range raw {
		if missing[i] {
			continue
		}
		v, _ := strconv.ParseFloat(cell, 64)
		floats[i] = v
	}
	return Column{Name: name, Kind: Numeric, Floats: floats, Missing: missing}
}
