package grading

import (
	"sort"

	"github.com/benchgrade/benchgrade/pkg/benchmark"
)

// DefaultSubmittedStatuses are the ReportingStatus values that count as a
// submitted report.
func DefaultSubmittedStatuses() []string {
	return []string{benchmark.StatusSubmitted, benchmark.StatusSubmittedData}
}

// GradeConsistentReporting computes, per building, the percentage of its years
// on record for which a report was submitted, and buckets it with scale. The
// result is sorted by ID. Buildings with no rows do not appear.
func GradeConsistentReporting(historic []*benchmark.Record, submittedStatuses []string, scale Scale) []AbsoluteRateGrade {
	submitted := make(map[string]bool, len(submittedStatuses))
	for _, s := range submittedStatuses {
		submitted[s] = true
	}

	var out []AbsoluteRateGrade
	for id, rows := range benchmark.GroupByID(historic) {
		years := make(map[int]bool)
		submittedYears := make(map[int]bool)
		missing := make(map[int]bool)
		for _, r := range rows {
			years[r.DataYear] = true
			switch {
			case submitted[r.ReportingStatus]:
				submittedYears[r.DataYear] = true
			case r.ReportingStatus == benchmark.StatusNotSubmitted:
				missing[r.DataYear] = true
			}
		}
		if len(years) == 0 {
			continue
		}
		rate := 100 * float64(len(submittedYears)) / float64(len(years))
		out = append(out, AbsoluteRateGrade{
			ID:                  id,
			Rate:                rate,
			Letter:              scale.Letter(rate),
			YearsOnRecord:       len(years),
			YearsSubmitted:      len(submittedYears),
			MissingRecordsCount: len(missing),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
