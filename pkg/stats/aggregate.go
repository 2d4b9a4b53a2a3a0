package stats

import (
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/benchgrade/benchgrade/pkg/benchmark"
)

// StartYear is the first reporting year included in year-based statistics.
const StartYear = 2016

// HistoricColumns are summarized per year and per property type and year.
var HistoricColumns = []string{
	benchmark.ColGHGIntensity,
	benchmark.ColTotalGHGEmissions,
	benchmark.ColElectricityUse,
	benchmark.ColNaturalGasUse,
	benchmark.ColSourceEUI,
	benchmark.ColSiteEUI,
	benchmark.ColDistrictSteamUse,
	benchmark.ColDistrictChilledWaterUse,
}

// CityWideColumns are summarized over the whole latest-year table.
var CityWideColumns = append(append([]string{}, HistoricColumns...),
	benchmark.ColYearBuilt,
	benchmark.ColGrossFloorArea,
)

// GroupBy selects how records are partitioned before summarizing.
type GroupBy int

const (
	ByYear GroupBy = iota
	ByPropertyTypeYear
	ByPropertyType
)

func (g GroupBy) String() string {
	switch g {
	case ByYear:
		return "year"
	case ByPropertyTypeYear:
		return "property_type_year"
	case ByPropertyType:
		return "property_type"
	default:
		return "unknown"
	}
}

// Options tune Aggregate.
type Options struct {
	// StartYear drops earlier years from year-based groupings. Zero keeps all.
	StartYear int
	// WithStd includes the sample standard deviation.
	WithStd bool
	// DropEmptyColumns leaves out columns with no values in a group.
	DropEmptyColumns bool
}

// DefaultOptions returns the options used for the historic statistics.
func DefaultOptions() Options {
	return Options{StartYear: StartYear, WithStd: true}
}

// GroupKey identifies one group. Fields not used by the grouping are zero.
type GroupKey struct {
	PropertyType string
	Year         int
}

// ColumnStats maps column name to its summary within one group.
type ColumnStats map[string]Summary

// Aggregate partitions records with groupBy and summarizes each metric column
// within every non-empty group. Records without a property type are skipped
// by property-type groupings.
func Aggregate(records []*benchmark.Record, groupBy GroupBy, metrics []string, opts Options) map[GroupKey]ColumnStats {
	groups := lo.GroupBy(lo.Filter(records, func(r *benchmark.Record, _ int) bool {
		if groupBy != ByPropertyType && opts.StartYear > 0 && r.DataYear < opts.StartYear {
			return false
		}
		if groupBy != ByYear && r.PrimaryPropertyType == "" {
			return false
		}
		return true
	}), func(r *benchmark.Record) GroupKey {
		switch groupBy {
		case ByPropertyTypeYear:
			return GroupKey{PropertyType: r.PrimaryPropertyType, Year: r.DataYear}
		case ByPropertyType:
			return GroupKey{PropertyType: r.PrimaryPropertyType}
		default:
			return GroupKey{Year: r.DataYear}
		}
	})

	out := make(map[GroupKey]ColumnStats, len(groups))
	for key, rows := range groups {
		cs := make(ColumnStats, len(metrics))
		for _, col := range metrics {
			s := Describe(benchmark.Values(rows, col), opts.WithStd)
			if opts.DropEmptyColumns && s.Count == 0 {
				continue
			}
			cs[col] = s
		}
		if len(cs) == 0 {
			continue
		}
		out[key] = cs
	}
	return out
}

// HistoricStats returns the per-year statistics keyed by year.
func HistoricStats(records []*benchmark.Record, metrics []string, opts Options) map[string]ColumnStats {
	out := make(map[string]ColumnStats)
	for key, cs := range Aggregate(records, ByYear, metrics, opts) {
		out[strconv.Itoa(key.Year)] = cs
	}
	return out
}

// HistoricStatsByPropertyType returns statistics keyed by property type and
// then year. Property types with no year left after filtering are omitted.
func HistoricStatsByPropertyType(records []*benchmark.Record, metrics []string, opts Options) map[string]map[string]ColumnStats {
	out := make(map[string]map[string]ColumnStats)
	for key, cs := range Aggregate(records, ByPropertyTypeYear, metrics, opts) {
		byYear, ok := out[key.PropertyType]
		if !ok {
			byYear = make(map[string]ColumnStats)
			out[key.PropertyType] = byYear
		}
		byYear[strconv.Itoa(key.Year)] = cs
	}
	return out
}

// CityWide summarizes every metric over all records, without grouping.
func CityWide(records []*benchmark.Record, metrics []string) ColumnStats {
	cs := make(ColumnStats, len(metrics))
	for _, col := range metrics {
		cs[col] = Describe(benchmark.Values(records, col), true)
	}
	return cs
}

// JoinPropertyType copies PrimaryPropertyType from the latest-year table onto
// the historic records with the same ID. It returns copies; the inputs are
// left untouched. Buildings absent from latest keep an empty type.
func JoinPropertyType(historic, latest []*benchmark.Record) []*benchmark.Record {
	types := make(map[string]string, len(latest))
	for _, r := range latest {
		if r.PrimaryPropertyType != "" {
			types[r.ID] = r.PrimaryPropertyType
		}
	}
	return lo.Map(historic, func(r *benchmark.Record, _ int) *benchmark.Record {
		c := r.Clone()
		c.SetCell(benchmark.ColPrimaryPropertyType, types[r.ID])
		return c
	})
}

// Years returns the sorted year keys of a HistoricStats result.
func Years(hs map[string]ColumnStats) []string {
	keys := lo.Keys(hs)
	sort.Strings(keys)
	return keys
}
