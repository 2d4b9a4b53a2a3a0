package grading_test

import (
	"math"
	"testing"

	"github.com/benchgrade/benchgrade/pkg/benchmark"
	"github.com/benchgrade/benchgrade/pkg/grading"
)

type row struct {
	id     string
	year   int
	status string
	values map[string]float64
}

func buildRecords(rows []row) []*benchmark.Record {
	out := make([]*benchmark.Record, 0, len(rows))
	for _, r := range rows {
		rec := benchmark.NewRecord(r.id, r.year)
		status := r.status
		if status == "" {
			status = benchmark.StatusSubmitted
		}
		rec.SetCell(benchmark.ColReportingStatus, status)
		for col, v := range r.values {
			rec.SetValue(col, v)
		}
		out = append(out, rec)
	}
	return out
}

func mix(elec, gas, steam, chilled, other float64) map[string]float64 {
	return map[string]float64{
		benchmark.ColElectricityUse:          elec,
		benchmark.ColNaturalGasUse:           gas,
		benchmark.ColDistrictSteamUse:        steam,
		benchmark.ColDistrictChilledWaterUse: chilled,
		benchmark.ColAllOtherFuelUse:         other,
	}
}

func TestGradeEnergyMixWeightedScores(t *testing.T) {
	records := buildRecords([]row{
		{id: "1", year: 2022, values: mix(1000, 0, 0, 0, 0)},
		{id: "2", year: 2022, values: mix(500, 500, 0, 0, 0)},
		{id: "3", year: 2022, values: mix(0, 1000, 0, 0, 0)},
		{id: "4", year: 2022, values: mix(400, 400, 100, 100, 0)},
	})

	got := grading.GradeEnergyMix(records, 2022, grading.DefaultEnergyMixWeights(), grading.DefaultScale())
	want := map[string]float64{"1": 100, "2": 50, "3": 0, "4": 50}
	if len(got) != len(want) {
		t.Fatalf("got %d grades, want %d", len(got), len(want))
	}
	for _, g := range got {
		if !approxEqual(g.Weighted, want[g.Key.ID]) {
			t.Errorf("building %s: weighted = %v, want %v", g.Key.ID, g.Weighted, want[g.Key.ID])
		}
	}

	// All-electric is the best mix of the year.
	if got[0].Grade.Percentile != 100 || got[0].Grade.Letter != grading.GradeA {
		t.Errorf("all-electric building: got %v/%q, want 100/A", got[0].Grade.Percentile, got[0].Grade.Letter)
	}
	// All-gas is the worst.
	if !approxEqual(got[2].Grade.Percentile, 25) {
		t.Errorf("all-gas building percentile = %v, want 25", got[2].Grade.Percentile)
	}
}

func TestGradeEnergyMixZeroTotal(t *testing.T) {
	records := buildRecords([]row{
		{id: "1", year: 2022, values: mix(1000, 0, 0, 0, 0)},
		{id: "2", year: 2022, values: mix(0, 1000, 0, 0, 0)},
		{id: "3", year: 2022, values: mix(0, 0, 0, 0, 0)},
		{id: "4", year: 2022},
	})

	got := grading.GradeEnergyMix(records, 2022, grading.DefaultEnergyMixWeights(), grading.DefaultScale())
	for _, g := range got[2:] {
		if !math.IsNaN(g.Weighted) || !math.IsNaN(g.Grade.Percentile) || g.Grade.Letter != "" {
			t.Errorf("building %s: got %v/%v/%q, want ungraded", g.Key.ID, g.Weighted, g.Grade.Percentile, g.Grade.Letter)
		}
	}
	// Only two buildings form the population.
	if !approxEqual(got[1].Grade.Percentile, 50) {
		t.Errorf("all-gas percentile = %v, want 50", got[1].Grade.Percentile)
	}
}

func TestGradeEnergyMixMissingSourceCountsAsZero(t *testing.T) {
	records := buildRecords([]row{
		{id: "1", year: 2022, values: map[string]float64{benchmark.ColElectricityUse: 300}},
	})
	got := grading.GradeEnergyMix(records, 2022, grading.DefaultEnergyMixWeights(), grading.DefaultScale())
	if !approxEqual(got[0].Weighted, 100) {
		t.Errorf("weighted = %v, want 100", got[0].Weighted)
	}
}

func TestLegacyEnergyMixWeights(t *testing.T) {
	rec := buildRecords([]row{{id: "1", year: 2022, values: mix(500, 500, 0, 0, 0)}})[0]
	got := grading.WeightedMixScore(rec, grading.LegacyEnergyMixWeights())
	if !approxEqual(got, 125) {
		t.Errorf("legacy score = %v, want 125", got)
	}
	if err := grading.LegacyEnergyMixWeights().Validate(); err != nil {
		t.Errorf("legacy weights invalid: %v", err)
	}
}

func TestEnergyMixWeightsValidate(t *testing.T) {
	if err := (grading.EnergyMixWeights{"Coal": 1}).Validate(); err == nil {
		t.Error("expected error for unknown source")
	}
	if err := (grading.EnergyMixWeights{benchmark.ColElectricityUse: -1}).Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestGradeGHGIntensityPerYear(t *testing.T) {
	records := buildRecords([]row{
		{id: "1", year: 2021, values: map[string]float64{benchmark.ColGHGIntensity: 10}},
		{id: "2", year: 2021, values: map[string]float64{benchmark.ColGHGIntensity: 20}},
		{id: "1", year: 2022, values: map[string]float64{benchmark.ColGHGIntensity: 500}},
	})

	got2021 := grading.GradeGHGIntensity(records, 2021, grading.DefaultScale())
	if len(got2021) != 2 {
		t.Fatalf("2021: got %d grades, want 2", len(got2021))
	}
	if !approxEqual(got2021[0].Grade.Percentile, 50) || got2021[0].Grade.Letter != grading.GradeC {
		t.Errorf("2021 lowest intensity: got %v/%q, want 50/C", got2021[0].Grade.Percentile, got2021[0].Grade.Letter)
	}
	if got2021[1].Grade.Percentile != 0 || got2021[1].Grade.Letter != grading.GradeF {
		t.Errorf("2021 highest intensity: got %v/%q, want 0/F", got2021[1].Grade.Percentile, got2021[1].Grade.Letter)
	}

	// A year with one building never compares against other years.
	got2022 := grading.GradeGHGIntensity(records, 2022, grading.DefaultScale())
	if len(got2022) != 1 || got2022[0].Grade.Percentile != 100 {
		t.Errorf("2022: got %+v, want a single 100 grade", got2022)
	}
}

func statuses(id string, years []int, s []string) []row {
	out := make([]row, len(years))
	for i := range years {
		out[i] = row{id: id, year: years[i], status: s[i]}
	}
	return out
}

func TestGradeConsistentReporting(t *testing.T) {
	years := []int{2018, 2019, 2020, 2021, 2022}
	const (
		sub = benchmark.StatusSubmitted
		dat = benchmark.StatusSubmittedData
		not = benchmark.StatusNotSubmitted
	)
	var rows []row
	rows = append(rows, statuses("a", years, []string{sub, sub, dat, sub, sub})...)
	rows = append(rows, statuses("b", years, []string{not, not, not, not, sub})...)
	rows = append(rows, statuses("c", years, []string{not, not, not, not, not})...)
	rows = append(rows, statuses("d", years[:3], []string{sub, not, sub})...)

	got := grading.GradeConsistentReporting(buildRecords(rows), grading.DefaultSubmittedStatuses(), grading.DefaultScale())
	if len(got) != 4 {
		t.Fatalf("got %d grades, want 4", len(got))
	}

	tests := []struct {
		rate    float64
		letter  string
		missing int
	}{
		{100, "A", 0},
		{20, "F", 4},
		{0, "F", 5},
		{200.0 / 3, "B", 1},
	}
	for i, tt := range tests {
		g := got[i]
		if !approxEqual(g.Rate, tt.rate) {
			t.Errorf("%s: rate = %v, want %v", g.ID, g.Rate, tt.rate)
		}
		if g.Letter != tt.letter {
			t.Errorf("%s: letter = %q, want %q", g.ID, g.Letter, tt.letter)
		}
		if g.MissingRecordsCount != tt.missing {
			t.Errorf("%s: missing = %d, want %d", g.ID, g.MissingRecordsCount, tt.missing)
		}
	}
}

func TestComposite(t *testing.T) {
	w := grading.DefaultOverallWeights()
	s := grading.DefaultScale()

	got := grading.Composite(90, 90, 90, w, s)
	if !approxEqual(got.Score, 90) || got.Letter != grading.GradeA {
		t.Errorf("all 90: got %v/%q, want 90/A", got.Score, got.Letter)
	}

	got = grading.Composite(90, 50, 10, w, s)
	if !approxEqual(got.Score, 66) || got.Letter != grading.GradeB {
		t.Errorf("90/50/10: got %v/%q, want 66/B", got.Score, got.Letter)
	}

	got = grading.Composite(90, math.NaN(), 10, w, s)
	if !math.IsNaN(got.Score) || got.Letter != "" {
		t.Errorf("missing sub-grade: got %v/%q, want NaN and no letter", got.Score, got.Letter)
	}
}

func TestOverallWeightsValidate(t *testing.T) {
	if err := grading.DefaultOverallWeights().Validate(); err != nil {
		t.Fatalf("default weights invalid: %v", err)
	}
	if err := (grading.OverallWeights{GHGIntensity: 0.5, EnergyMix: 0.5, SubmittedRecords: 0.5}).Validate(); err == nil {
		t.Error("expected error for weights summing to 1.5")
	}
	if err := (grading.OverallWeights{GHGIntensity: 1.5, EnergyMix: -0.5}).Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestGradeBuildingsAllYears(t *testing.T) {
	v := func(ghg, elec, gas float64) map[string]float64 {
		m := mix(elec, gas, 0, 0, 0)
		m[benchmark.ColGHGIntensity] = ghg
		return m
	}
	historic := buildRecords([]row{
		{id: "1", year: 2021, values: v(10, 1000, 0)},
		{id: "1", year: 2022, values: v(15, 900, 100)},
		{id: "2", year: 2021, values: v(20, 500, 500)},
		{id: "2", year: 2022, values: v(25, 400, 600)},
	})

	g := grading.NewGrader()
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	grades := g.GradeBuildings(historic)
	if len(grades) != 4 {
		t.Fatalf("got %d grades, want 4", len(grades))
	}
	for _, bg := range grades {
		if bg.GHG.Letter == "" || bg.EnergyMix.Letter == "" || bg.Overall.Letter == "" {
			t.Errorf("(%s, %d): missing a letter grade: %+v", bg.ID, bg.DataYear, bg)
		}
		if bg.Submitted.Rate != 100 {
			t.Errorf("(%s, %d): submitted rate = %v, want 100", bg.ID, bg.DataYear, bg.Submitted.Rate)
		}
	}

	// Building 1 leads both years: 0.5*50 + 0.4*100 + 0.1*100.
	if !approxEqual(grades[0].Overall.Score, 75) {
		t.Errorf("building 1 2021 overall = %v, want 75", grades[0].Overall.Score)
	}
}

func TestApply(t *testing.T) {
	historic := buildRecords([]row{
		{id: "1", year: 2022, values: map[string]float64{benchmark.ColGHGIntensity: 5, benchmark.ColElectricityUse: 10}},
		{id: "2", year: 2022, values: map[string]float64{benchmark.ColGHGIntensity: 9, benchmark.ColNaturalGasUse: 10}},
	})
	grades := grading.NewGrader().GradeBuildings(historic)

	latest := &benchmark.Table{
		Header: []string{benchmark.ColID, benchmark.ColDataYear},
		Records: []*benchmark.Record{
			benchmark.NewRecord("1", 2022),
			benchmark.NewRecord("3", 2022),
		},
	}
	if n := grading.Apply(latest, grades); n != 1 {
		t.Fatalf("Apply() matched %d records, want 1", n)
	}
	for _, col := range grading.GradeColumns {
		if !latest.HasColumn(col) {
			t.Errorf("missing column %s", col)
		}
	}

	r := latest.Records[0]
	if got := r.Cell("GHGIntensityLetterGrade"); got != "C" {
		t.Errorf("GHGIntensityLetterGrade = %q, want C", got)
	}
	if got := r.Cell("SubmittedRecordsPercentileGrade"); got != "100" {
		t.Errorf("SubmittedRecordsPercentileGrade = %q, want 100", got)
	}
	if got := r.Cell("MissingRecordsCount"); got != "0" {
		t.Errorf("MissingRecordsCount = %q, want 0", got)
	}
	if got := latest.Records[1].Cell("AvgPercentileLetterGrade"); got != "" {
		t.Errorf("unmatched record got letter %q", got)
	}
}
