// Package stats computes the descriptive statistics published next to the
// grades: per year, per property type and year, and per property type.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes one numeric column of one group. Nil fields are
// undefined for the group (no values, or std of a single value) and are left
// out of the JSON.
type Summary struct {
	Count                  int      `json:"count"`
	Mean                   *float64 `json:"mean,omitempty"`
	Std                    *float64 `json:"std,omitempty"`
	Min                    *float64 `json:"min,omitempty"`
	Max                    *float64 `json:"max,omitempty"`
	TwentyFifthPercentile  *float64 `json:"twentyFifthPercentile,omitempty"`
	Median                 *float64 `json:"median,omitempty"`
	SeventyFifthPercentile *float64 `json:"seventyFifthPercentile,omitempty"`
	// Total is the column sum, set only in property-type context.
	Total *float64 `json:"total,omitempty"`
}

// Describe summarizes the non-NaN values. Values are rounded to one decimal.
// Std is the sample standard deviation and is set only when withStd is true
// and there are at least two values.
func Describe(values []float64, withStd bool) Summary {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean = append(clean, v)
		}
	}
	s := Summary{Count: len(clean)}
	if len(clean) == 0 {
		return s
	}
	sort.Float64s(clean)

	mean, std := stat.MeanStdDev(clean, nil)
	s.Mean = rounded(mean)
	if withStd && len(clean) > 1 {
		s.Std = rounded(std)
	}
	s.Min = rounded(floats.Min(clean))
	s.Max = rounded(floats.Max(clean))
	s.TwentyFifthPercentile = rounded(Quantile(clean, 0.25))
	s.Median = rounded(Quantile(clean, 0.5))
	s.SeventyFifthPercentile = rounded(Quantile(clean, 0.75))
	return s
}

// Quantile returns the q-th quantile of sorted using linear interpolation
// between closest ranks: position (n-1)*q. It returns NaN for an empty slice.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := float64(n-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Round rounds to the given number of decimals, halves to even.
func Round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(decimals))
	r := math.RoundToEven(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}

func rounded(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := Round(v, 1)
	return &r
}

// WithoutStd returns a copy of s with the standard deviation removed.
func (s Summary) WithoutStd() Summary {
	s.Std = nil
	return s
}
