package grading

import (
	"fmt"
	"strconv"

	"github.com/benchgrade/benchgrade/pkg/benchmark"
)

// Grader grades every building-year of a historic table.
type Grader struct {
	Scale             Scale
	EnergyMixWeights  EnergyMixWeights
	OverallWeights    OverallWeights
	SubmittedStatuses []string
}

// NewGrader returns a grader with the default scale and weights.
func NewGrader() *Grader {
	return &Grader{
		Scale:             DefaultScale(),
		EnergyMixWeights:  DefaultEnergyMixWeights(),
		OverallWeights:    DefaultOverallWeights(),
		SubmittedStatuses: DefaultSubmittedStatuses(),
	}
}

// Validate checks the scale and both weight sets.
func (g *Grader) Validate() error {
	if err := g.Scale.Validate(); err != nil {
		return fmt.Errorf("grading scale: %w", err)
	}
	if err := g.EnergyMixWeights.Validate(); err != nil {
		return fmt.Errorf("energy mix weights: %w", err)
	}
	if err := g.OverallWeights.Validate(); err != nil {
		return fmt.Errorf("overall weights: %w", err)
	}
	if len(g.SubmittedStatuses) == 0 {
		return fmt.Errorf("no submitted statuses configured")
	}
	return nil
}

// GradeBuildings grades each record of historic against its own year and
// attaches the building's reporting grade and the composite. The result is in
// the order of historic.
func (g *Grader) GradeBuildings(historic []*benchmark.Record) []BuildingGrade {
	ghg := make(map[benchmark.Key]RelativePercentileGrade, len(historic))
	mix := make(map[benchmark.Key]EnergyMixGrade, len(historic))
	for _, year := range benchmark.DistinctYears(historic) {
		for _, yg := range GradeGHGIntensity(historic, year, g.Scale) {
			ghg[yg.Key] = yg.Grade
		}
		for _, mg := range GradeEnergyMix(historic, year, g.EnergyMixWeights, g.Scale) {
			mix[mg.Key] = mg
		}
	}

	submitted := make(map[string]AbsoluteRateGrade)
	for _, rg := range GradeConsistentReporting(historic, g.SubmittedStatuses, g.Scale) {
		submitted[rg.ID] = rg
	}

	out := make([]BuildingGrade, 0, len(historic))
	for _, r := range historic {
		key := r.Key()
		m := mix[key]
		bg := BuildingGrade{
			ID:          r.ID,
			DataYear:    r.DataYear,
			GHG:         ghg[key],
			EnergyMix:   m.Grade,
			MixWeighted: m.Weighted,
			Submitted:   submitted[r.ID],
		}
		bg.Overall = Composite(bg.GHG.Percentile, bg.EnergyMix.Percentile, bg.Submitted.Rate, g.OverallWeights, g.Scale)
		out = append(out, bg)
	}
	return out
}

// GradeColumns are the columns Apply appends, in output order.
var GradeColumns = []string{
	FieldGHGIntensity + SuffixPercentileGrade,
	FieldGHGIntensity + SuffixLetterGrade,
	ColEnergyMixWeighted,
	FieldEnergyMix + SuffixPercentileGrade,
	FieldEnergyMix + SuffixLetterGrade,
	FieldSubmittedRecords + SuffixPercentileGrade,
	FieldSubmittedRecords + SuffixLetterGrade,
	ColMissingRecordsCount,
	ColAvgPercentileGrade,
	ColAvgLetterGrade,
}

// Apply merges grades onto t by (ID, DataYear). Records without a grade keep
// blank grade cells. It returns the number of records that received a grade.
func Apply(t *benchmark.Table, grades []BuildingGrade) int {
	for _, col := range GradeColumns {
		t.AddColumn(col)
	}

	byKey := make(map[benchmark.Key]BuildingGrade, len(grades))
	for _, g := range grades {
		byKey[benchmark.Key{ID: g.ID, DataYear: g.DataYear}] = g
	}

	matched := 0
	for _, r := range t.Records {
		g, ok := byKey[r.Key()]
		if !ok {
			for _, col := range GradeColumns {
				r.SetCell(col, "")
			}
			continue
		}
		matched++
		r.SetValue(FieldGHGIntensity+SuffixPercentileGrade, g.GHG.Percentile)
		r.SetCell(FieldGHGIntensity+SuffixLetterGrade, g.GHG.Letter)
		r.SetValue(ColEnergyMixWeighted, g.MixWeighted)
		r.SetValue(FieldEnergyMix+SuffixPercentileGrade, g.EnergyMix.Percentile)
		r.SetCell(FieldEnergyMix+SuffixLetterGrade, g.EnergyMix.Letter)
		r.SetValue(FieldSubmittedRecords+SuffixPercentileGrade, g.Submitted.Rate)
		r.SetCell(FieldSubmittedRecords+SuffixLetterGrade, g.Submitted.Letter)
		r.SetCell(ColMissingRecordsCount, strconv.Itoa(g.Submitted.MissingRecordsCount))
		r.SetValue(ColAvgPercentileGrade, g.Overall.Score)
		r.SetCell(ColAvgLetterGrade, g.Overall.Letter)
	}
	return matched
}
