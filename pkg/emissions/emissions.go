// Package emissions holds the grid carbon intensity factors and estimates the
// emissions of a building's electricity use.
package emissions

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/benchgrade/benchgrade/pkg/benchmark"
)

// KWhPerKBtu converts kBtu to kWh.
const KWhPerKBtu = 0.293071

// Column receives the electricity emissions in metric tons CO2.
const Column = "ElectricityEmissions"

// ErrUnknownYear is returned for a year with no configured factor.
var ErrUnknownYear = errors.New("no carbon intensity factor for year")

// Factors maps a reporting year to the grid carbon intensity in g CO2/kWh.
// Factors are only read from and written to disk by LoadFactors and
// SaveFactors; Set changes the in-memory copy.
type Factors struct {
	byYear map[int]float64
}

type factorFile struct {
	CarbonIntensityFactors map[int]float64 `yaml:"carbon_intensity_factors"`
}

// NewFactors builds factors from a year map. Negative values are rejected.
func NewFactors(byYear map[int]float64) (*Factors, error) {
	f := &Factors{byYear: make(map[int]float64, len(byYear))}
	for year, v := range byYear {
		if v < 0 || math.IsNaN(v) {
			return nil, fmt.Errorf("year %d: carbon intensity cannot be negative", year)
		}
		f.byYear[year] = v
	}
	return f, nil
}

// LoadFactors reads the factor file at path.
func LoadFactors(path string) (*Factors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading emissions factors: %w", err)
	}
	return ParseFactors(data)
}

// ParseFactors decodes a factor file.
func ParseFactors(data []byte) (*Factors, error) {
	var ff factorFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing emissions factors: %w", err)
	}
	if len(ff.CarbonIntensityFactors) == 0 {
		return nil, fmt.Errorf("parsing emissions factors: carbon_intensity_factors is empty")
	}
	return NewFactors(ff.CarbonIntensityFactors)
}

// SaveFactors writes f to path, replacing the file.
func SaveFactors(path string, f *Factors) error {
	data, err := yaml.Marshal(factorFile{CarbonIntensityFactors: f.byYear})
	if err != nil {
		return fmt.Errorf("encoding emissions factors: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating factors directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing emissions factors: %w", err)
	}
	return nil
}

// Years returns the configured years in ascending order.
func (f *Factors) Years() []int {
	years := make([]int, 0, len(f.byYear))
	for y := range f.byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Get returns the factor for year.
func (f *Factors) Get(year int) (float64, error) {
	v, ok := f.byYear[year]
	if !ok {
		return 0, fmt.Errorf("%w %d", ErrUnknownYear, year)
	}
	return v, nil
}

// Set updates the factor of an already configured year.
func (f *Factors) Set(year int, intensity float64) error {
	if _, ok := f.byYear[year]; !ok {
		return fmt.Errorf("%w %d", ErrUnknownYear, year)
	}
	if intensity < 0 || math.IsNaN(intensity) {
		return fmt.Errorf("carbon intensity cannot be negative: %v", intensity)
	}
	f.byYear[year] = intensity
	return nil
}

// ElectricityEmissions returns the metric tons of CO2 for kbtu of
// electricity used in year, rounded to two decimals.
func (f *Factors) ElectricityEmissions(kbtu float64, year int) (float64, error) {
	if kbtu < 0 {
		return 0, fmt.Errorf("electricity use cannot be negative: %v", kbtu)
	}
	intensity, err := f.Get(year)
	if err != nil {
		return 0, err
	}
	grams := kbtu * KWhPerKBtu * intensity
	return math.Round(grams/1e6*100) / 100, nil
}

// Apply adds Column to every record of t with electricity use and a known
// year. It returns the number of records that were left blank.
func (f *Factors) Apply(t *benchmark.Table) int {
	t.AddColumn(Column)
	skipped := 0
	for _, r := range t.Records {
		use := r.Value(benchmark.ColElectricityUse)
		if math.IsNaN(use) {
			r.SetCell(Column, "")
			skipped++
			continue
		}
		v, err := f.ElectricityEmissions(use, r.DataYear)
		if err != nil {
			r.SetCell(Column, "")
			skipped++
			continue
		}
		r.SetValue(Column, v)
	}
	return skipped
}
