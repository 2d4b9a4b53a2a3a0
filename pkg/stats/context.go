package stats

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/benchgrade/benchgrade/pkg/benchmark"
	"github.com/benchgrade/benchgrade/pkg/grading"
)

// RankSuffix is appended to a column name for its property-type rank.
const RankSuffix = "RankByPropertyType"

// RankColumns are ranked within each property type and summarized per type.
var RankColumns = []string{
	benchmark.ColGHGIntensity,
	benchmark.ColTotalGHGEmissions,
	benchmark.ColElectricityUse,
	benchmark.ColNaturalGasUse,
	benchmark.ColGrossFloorArea,
	benchmark.ColSourceEUI,
	benchmark.ColSiteEUI,
}

// TotalColumns are summed per property type. The sum is stored as the
// column summary's Total.
var TotalColumns = []string{
	benchmark.ColTotalGHGEmissions,
	benchmark.ColGrossFloorArea,
	benchmark.ColElectricityUse,
	benchmark.ColNaturalGasUse,
}

// PropertyTypeStats is the context published for one property type.
type PropertyTypeStats struct {
	Columns           ColumnStats
	GradeDistribution map[string]int
}

// MarshalJSON flattens the column summaries next to the "gradeDistribution"
// key.
func (p PropertyTypeStats) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Columns)+1)
	for col, s := range p.Columns {
		m[col] = s
	}
	if len(p.GradeDistribution) > 0 {
		m["gradeDistribution"] = p.GradeDistribution
	}
	return json.Marshal(m)
}

// LatestYearRecords returns the records of the table's latest year.
func LatestYearRecords(t *benchmark.Table) []*benchmark.Record {
	return benchmark.ForYear(t.Records, t.LatestYear())
}

// PropertyTypes returns the sorted distinct property types of records.
func PropertyTypes(records []*benchmark.Record) []string {
	types := lo.Uniq(lo.FilterMap(records, func(r *benchmark.Record, _ int) (string, bool) {
		return r.PrimaryPropertyType, r.PrimaryPropertyType != ""
	}))
	sort.Strings(types)
	return types
}

// PropertyTypeContext summarizes buildings per property type. records holds
// one row per building at its latest reported year, whatever that year is.
// Columns with no values are dropped and a type with no values at all is
// omitted.
func PropertyTypeContext(records []*benchmark.Record) map[string]PropertyTypeStats {
	groups := Aggregate(records, ByPropertyType, RankColumns, Options{DropEmptyColumns: true})
	byType := lo.GroupBy(records, func(r *benchmark.Record) string { return r.PrimaryPropertyType })

	out := make(map[string]PropertyTypeStats, len(groups))
	for key, cs := range groups {
		rows := byType[key.PropertyType]
		addTotals(cs, rows)
		out[key.PropertyType] = PropertyTypeStats{
			Columns:           cs,
			GradeDistribution: gradeDistribution(rows),
		}
	}
	return out
}

// addTotals sets Total on the summaries of TotalColumns present in cs.
func addTotals(cs ColumnStats, rows []*benchmark.Record) {
	for _, col := range TotalColumns {
		s, ok := cs[col]
		if !ok || s.Count == 0 {
			continue
		}
		sum := 0.0
		for _, v := range benchmark.Values(rows, col) {
			if !math.IsNaN(v) {
				sum += v
			}
		}
		total := Round(sum, 1)
		s.Total = &total
		cs[col] = s
	}
}

func gradeDistribution(rows []*benchmark.Record) map[string]int {
	out := make(map[string]int)
	for _, r := range rows {
		if letter := r.Cell(grading.ColAvgLetterGrade); letter != "" {
			out[letter]++
		}
	}
	return out
}

// RankByPropertyType ranks each RankColumns value in descending order among
// the latest-year records of the same property type and stores it in
// {Column}RankByPropertyType. Ties share the average of their ranks. Records
// outside the latest year, or with a missing value, get a blank rank.
func RankByPropertyType(t *benchmark.Table) {
	for _, col := range RankColumns {
		t.AddColumn(col + RankSuffix)
	}
	for _, r := range t.Records {
		for _, col := range RankColumns {
			r.SetCell(col+RankSuffix, "")
		}
	}

	byType := lo.GroupBy(LatestYearRecords(t), func(r *benchmark.Record) string { return r.PrimaryPropertyType })
	for propertyType, rows := range byType {
		if propertyType == "" {
			continue
		}
		for _, col := range RankColumns {
			ranks := DescendingRanks(benchmark.Values(rows, col))
			for i, r := range rows {
				if !math.IsNaN(ranks[i]) {
					r.SetValue(col+RankSuffix, ranks[i])
				}
			}
		}
	}
}

// DescendingRanks ranks values from largest (rank 1) to smallest. Tied values
// get the mean of the ranks they span. NaN values are not ranked.
func DescendingRanks(values []float64) []float64 {
	idx := make([]int, 0, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] > values[idx[b]] })

	ranks := make([]float64, len(values))
	for i := range ranks {
		ranks[i] = math.NaN()
	}
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && values[idx[end]] == values[idx[start]] {
			end++
		}
		// Positions start..end-1 hold ranks start+1..end.
		avg := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			ranks[idx[k]] = avg
		}
		start = end
	}
	return ranks
}
