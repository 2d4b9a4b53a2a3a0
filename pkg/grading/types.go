// Package grading computes per-building letter grades from benchmarking data.
//
// Two kinds of grades exist and are kept apart on purpose. A
// RelativePercentileGrade ranks a value against the other buildings of the
// same reporting year (GHG intensity, energy mix). An AbsoluteRateGrade
// buckets a plain percentage that does not depend on any other building
// (share of years a building submitted its report).
package grading

import (
	"fmt"
	"math"
)

// Letter grades, worst to best.
const (
	GradeF = "F"
	GradeD = "D"
	GradeC = "C"
	GradeB = "B"
	GradeA = "A"
)

// Output column suffixes and names.
const (
	SuffixPercentileGrade = "PercentileGrade"
	SuffixLetterGrade     = "LetterGrade"

	FieldGHGIntensity      = "GHGIntensity"
	FieldEnergyMix         = "EnergyMix"
	FieldSubmittedRecords  = "SubmittedRecords"
	FieldAvgPercentile     = "AvgPercentile"
	ColEnergyMixWeighted   = "EnergyMixWeightedPctSum"
	ColMissingRecordsCount = "MissingRecordsCount"
	ColAvgPercentileGrade  = "AvgPercentileGrade"
	ColAvgLetterGrade      = "AvgPercentileLetterGrade"
)

// Scale maps a 0-100 score onto letter grades. Bins are right-inclusive and
// the lowest edge is inclusive, so with the default edges 0 grades F and 100
// grades A.
type Scale struct {
	Edges  []float64
	Labels []string
}

// DefaultScale returns the standard F..A scale. The top edge is 101 so a
// perfect 100 lands in the A bin.
func DefaultScale() Scale {
	return Scale{
		Edges:  []float64{0, 20, 40, 60, 80, 101},
		Labels: []string{GradeF, GradeD, GradeC, GradeB, GradeA},
	}
}

// Validate checks the scale has one more edge than labels and strictly
// increasing edges.
func (s Scale) Validate() error {
	if len(s.Labels) == 0 {
		return fmt.Errorf("scale has no labels")
	}
	if len(s.Edges) != len(s.Labels)+1 {
		return fmt.Errorf("scale has %d edges for %d labels, want %d", len(s.Edges), len(s.Labels), len(s.Labels)+1)
	}
	for i := 1; i < len(s.Edges); i++ {
		if !(s.Edges[i] > s.Edges[i-1]) {
			return fmt.Errorf("scale edges must be strictly increasing (edge %d = %v, edge %d = %v)", i-1, s.Edges[i-1], i, s.Edges[i])
		}
	}
	return nil
}

// Letter returns the label of the bin containing score, or "" when score is
// NaN or outside the scale.
func (s Scale) Letter(score float64) string {
	if math.IsNaN(score) || len(s.Edges) < 2 {
		return ""
	}
	if score == s.Edges[0] {
		return s.Labels[0]
	}
	for i := 1; i < len(s.Edges); i++ {
		if score > s.Edges[i-1] && score <= s.Edges[i] {
			return s.Labels[i-1]
		}
	}
	return ""
}

// RelativePercentileGrade is a score relative to a comparison population.
type RelativePercentileGrade struct {
	Percentile float64
	Letter     string
}

// AbsoluteRateGrade is a percentage bucketed with a fixed scale. It is not a
// percentile: it does not depend on other buildings.
type AbsoluteRateGrade struct {
	ID                  string
	Rate                float64
	Letter              string
	YearsOnRecord       int
	YearsSubmitted      int
	MissingRecordsCount int
}

// CompositeGrade is the weighted overall grade.
type CompositeGrade struct {
	Score  float64
	Letter string
}

// BuildingGrade collects every grade for one (ID, DataYear).
type BuildingGrade struct {
	ID          string
	DataYear    int
	GHG         RelativePercentileGrade
	EnergyMix   RelativePercentileGrade
	MixWeighted float64
	Submitted   AbsoluteRateGrade
	Overall     CompositeGrade
}
