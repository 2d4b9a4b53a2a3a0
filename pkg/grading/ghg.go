package grading

import (
	"github.com/benchgrade/benchgrade/pkg/benchmark"
)

// YearGrade is a relative grade attached to the record it was computed for.
type YearGrade struct {
	Key   benchmark.Key
	Grade RelativePercentileGrade
}

// GradeGHGIntensity grades GHGIntensity for the records of one year. Lower
// intensity is better. Comparisons never cross years.
func GradeGHGIntensity(records []*benchmark.Record, year int, scale Scale) []YearGrade {
	yearRecords := benchmark.ForYear(records, year)
	grades := Grade(benchmark.Values(yearRecords, benchmark.ColGHGIntensity), true, scale)

	out := make([]YearGrade, len(yearRecords))
	for i, r := range yearRecords {
		out[i] = YearGrade{Key: r.Key(), Grade: grades[i]}
	}
	return out
}
