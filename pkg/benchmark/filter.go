package benchmark

import (
	"sort"

	"github.com/samber/lo"
)

// ForYear returns the records reported for year, preserving order.
func ForYear(records []*Record, year int) []*Record {
	return lo.Filter(records, func(r *Record, _ int) bool {
		return r.DataYear == year
	})
}

// DistinctYears returns the distinct data years in ascending order.
func DistinctYears(records []*Record) []int {
	years := lo.Uniq(lo.Map(records, func(r *Record, _ int) int {
		return r.DataYear
	}))
	sort.Ints(years)
	return years
}

// Values extracts col from each record.
func Values(records []*Record, col string) []float64 {
	return lo.Map(records, func(r *Record, _ int) float64 {
		return r.Value(col)
	})
}

// GroupByID groups records by building ID.
func GroupByID(records []*Record) map[string][]*Record {
	return lo.GroupBy(records, func(r *Record) string {
		return r.ID
	})
}
