package benchmark

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// RequiredColumns must be present in every input table.
var RequiredColumns = []string{ColID, ColDataYear}

// IngestReport counts the numeric cells that could not be parsed and were
// coerced to missing.
type IngestReport struct {
	Rows          int
	CoercedCells  int
	CoercedByCol  map[string]int
	FirstCoercion string
}

// LoadCSV reads a benchmarking table from disk.
func LoadCSV(path string) (*Table, *IngestReport, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("input file %s does not exist: %w", path, err)
		}
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, report, err := ReadCSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, report, nil
}

// ReadCSV parses a benchmarking table. This is the only place raw cells are
// coerced: commas are stripped from numeric columns, blank and NA cells become
// NaN, and unparsable numbers become NaN and are counted in the report.
// ID and DataYear are required and DataYear must be an integer.
func ReadCSV(r io.Reader) (*Table, *IngestReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("empty file: %w", ErrMissingColumn)
		}
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for _, req := range RequiredColumns {
		if indexOf(header, req) < 0 {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, req)
		}
	}

	t := &Table{Header: header}
	report := &IngestReport{CoercedByCol: make(map[string]int)}

	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec, err := parseRow(header, row, line, report)
		if err != nil {
			return nil, nil, err
		}
		t.Records = append(t.Records, rec)
		report.Rows++
	}

	return t, report, nil
}

func parseRow(header, row []string, line int, report *IngestReport) (*Record, error) {
	rec := &Record{
		values: make(map[string]float64),
		cells:  make(map[string]string, len(header)),
	}
	for i, col := range header {
		cell := ""
		if i < len(row) {
			cell = strings.TrimSpace(row[i])
		}
		rec.cells[col] = cell

		switch {
		case col == ColID:
			rec.ID = normalizeID(cell)
			rec.cells[col] = rec.ID
		case col == ColDataYear:
			year, err := parseYear(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s %q: %w", line, ColDataYear, cell, err)
			}
			rec.DataYear = year
		case col == ColReportingStatus:
			rec.ReportingStatus = cell
		case col == ColPrimaryPropertyType:
			rec.PrimaryPropertyType = cell
		case IsNumeric(col):
			v, ok := ParseNumber(cell)
			if !ok {
				report.CoercedCells++
				report.CoercedByCol[col]++
				if report.FirstCoercion == "" {
					report.FirstCoercion = fmt.Sprintf("line %d %s=%q", line, col, cell)
				}
			}
			rec.values[col] = v
		}
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("line %d: empty %s", line, ColID)
	}
	return rec, nil
}

// ParseNumber converts a numeric cell. Blank and NA-like cells are missing and
// return (NaN, true); cells that are not numbers return (NaN, false).
func ParseNumber(cell string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	switch strings.ToLower(s) {
	case "", "na", "nan", "n/a", "null", "<na>":
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	return v, true
}

// parseYear accepts "2021" and the float-ish "2021.0" some exports produce.
func parseYear(cell string) (int, error) {
	if n, err := strconv.Atoi(cell); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole year")
	}
	return int(f), nil
}

// normalizeID drops a trailing ".0" so IDs written as floats still join.
func normalizeID(cell string) string {
	return strings.TrimSuffix(cell, ".0")
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

// WriteCSV writes the table with its header order.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	row := make([]string, len(t.Header))
	for _, rec := range t.Records {
		for i, col := range t.Header {
			row[i] = rec.cells[col]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record %s/%d: %w", rec.ID, rec.DataYear, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the table to path, creating parent directories.
func SaveCSV(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
