package grading

import (
	"fmt"
	"math"
)

// OverallWeights weight the three sub-grades in the composite score. The
// weights are published product policy.
type OverallWeights struct {
	GHGIntensity     float64 `yaml:"ghg_intensity" json:"ghg_intensity"`
	EnergyMix        float64 `yaml:"energy_mix" json:"energy_mix"`
	SubmittedRecords float64 `yaml:"submitted_records" json:"submitted_records"`
}

// DefaultOverallWeights returns the 50/40/10 split.
func DefaultOverallWeights() OverallWeights {
	return OverallWeights{
		GHGIntensity:     0.50,
		EnergyMix:        0.40,
		SubmittedRecords: 0.10,
	}
}

// Validate requires non-negative weights that sum to 1.
func (w OverallWeights) Validate() error {
	for name, v := range map[string]float64{
		"ghg_intensity":     w.GHGIntensity,
		"energy_mix":        w.EnergyMix,
		"submitted_records": w.SubmittedRecords,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("overall weight %s is invalid: %v", name, v)
		}
	}
	sum := w.GHGIntensity + w.EnergyMix + w.SubmittedRecords
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("overall weights sum to %v, want 1", sum)
	}
	return nil
}

// Composite combines the sub-grade scores into the overall score and letter.
// A missing sub-grade leaves the building without an overall grade.
func Composite(ghg, energyMix, submitted float64, weights OverallWeights, scale Scale) CompositeGrade {
	if math.IsNaN(ghg) || math.IsNaN(energyMix) || math.IsNaN(submitted) {
		return CompositeGrade{Score: math.NaN()}
	}
	score := weights.GHGIntensity*ghg + weights.EnergyMix*energyMix + weights.SubmittedRecords*submitted
	return CompositeGrade{Score: score, Letter: scale.Letter(score)}
}
