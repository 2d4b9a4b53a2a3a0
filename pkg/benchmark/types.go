// Package benchmark holds the building benchmarking data model: one Record per
// (building ID, reporting year) and the Table that carries them between stages.
package benchmark

import (
	"math"
	"strconv"
)

// Column names used by the grading and statistics stages.
const (
	ColID                  = "ID"
	ColDataYear            = "DataYear"
	ColReportingStatus     = "ReportingStatus"
	ColPrimaryPropertyType = "PrimaryPropertyType"

	ColGHGIntensity            = "GHGIntensity"
	ColTotalGHGEmissions       = "TotalGHGEmissions"
	ColElectricityUse          = "ElectricityUse"
	ColNaturalGasUse           = "NaturalGasUse"
	ColDistrictSteamUse        = "DistrictSteamUse"
	ColDistrictChilledWaterUse = "DistrictChilledWaterUse"
	ColAllOtherFuelUse         = "AllOtherFuelUse"
	ColSourceEUI               = "SourceEUI"
	ColSiteEUI                 = "SiteEUI"
	ColGrossFloorArea          = "GrossFloorArea"
	ColYearBuilt               = "YearBuilt"
)

// Reporting statuses found in the city export.
const (
	StatusSubmitted     = "Submitted"
	StatusSubmittedData = "Submitted Data"
	StatusNotSubmitted  = "Not Submitted"
)

// NumericColumns are parsed to float64 at ingestion. Any other column is kept
// as its raw string.
var NumericColumns = []string{
	ColGHGIntensity,
	ColTotalGHGEmissions,
	ColElectricityUse,
	ColNaturalGasUse,
	ColDistrictSteamUse,
	ColDistrictChilledWaterUse,
	ColAllOtherFuelUse,
	ColSourceEUI,
	ColSiteEUI,
	ColGrossFloorArea,
	ColYearBuilt,
}

// EnergySourceColumns are the five energy sources that make up a building's mix.
var EnergySourceColumns = []string{
	ColElectricityUse,
	ColNaturalGasUse,
	ColDistrictSteamUse,
	ColDistrictChilledWaterUse,
	ColAllOtherFuelUse,
}

var numericSet = func() map[string]bool {
	m := make(map[string]bool, len(NumericColumns))
	for _, c := range NumericColumns {
		m[c] = true
	}
	return m
}()

// IsNumeric reports whether col is parsed as a number at ingestion.
func IsNumeric(col string) bool {
	return numericSet[col]
}

// Record is a single building-year row. Missing numeric values are NaN, so a
// reported zero is never confused with a blank cell.
type Record struct {
	ID                  string
	DataYear            int
	ReportingStatus     string
	PrimaryPropertyType string

	values map[string]float64
	cells  map[string]string
}

// NewRecord creates an empty record for the given building and year.
func NewRecord(id string, year int) *Record {
	return &Record{
		ID:       id,
		DataYear: year,
		values:   make(map[string]float64),
		cells: map[string]string{
			ColID:       id,
			ColDataYear: strconv.Itoa(year),
		},
	}
}

// Value returns the numeric value of col, or NaN when it is missing.
func (r *Record) Value(col string) float64 {
	v, ok := r.values[col]
	if !ok {
		return math.NaN()
	}
	return v
}

// SetValue stores a numeric value and its formatted cell.
func (r *Record) SetValue(col string, v float64) {
	r.values[col] = v
	r.cells[col] = FormatFloat(v)
}

// Cell returns the raw string for col.
func (r *Record) Cell(col string) string {
	return r.cells[col]
}

// SetCell stores a raw string cell. Typed fields are kept in sync for the key
// columns.
func (r *Record) SetCell(col, v string) {
	r.cells[col] = v
	switch col {
	case ColReportingStatus:
		r.ReportingStatus = v
	case ColPrimaryPropertyType:
		r.PrimaryPropertyType = v
	}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := &Record{
		ID:                  r.ID,
		DataYear:            r.DataYear,
		ReportingStatus:     r.ReportingStatus,
		PrimaryPropertyType: r.PrimaryPropertyType,
		values:              make(map[string]float64, len(r.values)),
		cells:               make(map[string]string, len(r.cells)),
	}
	for k, v := range r.values {
		c.values[k] = v
	}
	for k, v := range r.cells {
		c.cells[k] = v
	}
	return c
}

// Key identifies a record within the historic table.
type Key struct {
	ID       string
	DataYear int
}

// Key returns the (ID, DataYear) pair of the record.
func (r *Record) Key() Key {
	return Key{ID: r.ID, DataYear: r.DataYear}
}

// Table is an ordered set of records sharing one header.
type Table struct {
	Header  []string
	Records []*Record
}

// AddColumn appends col to the header if it is not already present.
func (t *Table) AddColumn(col string) {
	for _, h := range t.Header {
		if h == col {
			return
		}
	}
	t.Header = append(t.Header, col)
}

// HasColumn reports whether col is in the header.
func (t *Table) HasColumn(col string) bool {
	for _, h := range t.Header {
		if h == col {
			return true
		}
	}
	return false
}

// Years returns the distinct data years in ascending order.
func (t *Table) Years() []int {
	return DistinctYears(t.Records)
}

// Index maps each (ID, DataYear) to its record.
func (t *Table) Index() map[Key]*Record {
	idx := make(map[Key]*Record, len(t.Records))
	for _, r := range t.Records {
		idx[r.Key()] = r
	}
	return idx
}

// LatestYear returns the largest DataYear in the table, or 0 when empty.
func (t *Table) LatestYear() int {
	latest := 0
	for _, r := range t.Records {
		if r.DataYear > latest {
			latest = r.DataYear
		}
	}
	return latest
}

// FormatFloat renders v for CSV output. NaN and infinities become blank cells.
func FormatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
