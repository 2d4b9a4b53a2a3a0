package grading

import (
	"fmt"
	"math"

	"github.com/benchgrade/benchgrade/pkg/benchmark"
)

// EnergyMixWeights maps each energy source column to its weight in the mix
// score.
type EnergyMixWeights map[string]float64

// DefaultEnergyMixWeights counts only electricity and district chilled water,
// so the score is the percentage of a building's energy from those sources.
func DefaultEnergyMixWeights() EnergyMixWeights {
	return EnergyMixWeights{
		benchmark.ColElectricityUse:          1,
		benchmark.ColDistrictChilledWaterUse: 1,
		benchmark.ColNaturalGasUse:           0,
		benchmark.ColDistrictSteamUse:        0,
		benchmark.ColAllOtherFuelUse:         0,
	}
}

// LegacyEnergyMixWeights is the earlier fractional formula. It is kept for
// comparison runs and is not used unless configured.
func LegacyEnergyMixWeights() EnergyMixWeights {
	return EnergyMixWeights{
		benchmark.ColElectricityUse:          2,
		benchmark.ColNaturalGasUse:           0.5,
		benchmark.ColDistrictSteamUse:        1,
		benchmark.ColDistrictChilledWaterUse: 1,
		benchmark.ColAllOtherFuelUse:         0,
	}
}

// Validate rejects unknown source columns and negative weights.
func (w EnergyMixWeights) Validate() error {
	known := make(map[string]bool, len(benchmark.EnergySourceColumns))
	for _, c := range benchmark.EnergySourceColumns {
		known[c] = true
	}
	for col, v := range w {
		if !known[col] {
			return fmt.Errorf("unknown energy source %q", col)
		}
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("energy source %q has invalid weight %v", col, v)
		}
	}
	return nil
}

// EnergyMixGrade is the mix grade of one record plus its weighted score.
type EnergyMixGrade struct {
	Key      benchmark.Key
	Weighted float64
	Grade    RelativePercentileGrade
}

// WeightedMixScore returns the weighted sum of each source's share (0-100) of
// the record's total use. Missing sources count as 0. A record whose total is
// 0 has no defined mix and scores NaN.
func WeightedMixScore(r *benchmark.Record, weights EnergyMixWeights) float64 {
	total := 0.0
	for _, col := range benchmark.EnergySourceColumns {
		if v := r.Value(col); !math.IsNaN(v) {
			total += v
		}
	}
	if total == 0 {
		return math.NaN()
	}

	score := 0.0
	for _, col := range benchmark.EnergySourceColumns {
		v := r.Value(col)
		if math.IsNaN(v) {
			continue
		}
		score += v / total * 100 * weights[col]
	}
	return score
}

// GradeEnergyMix grades the weighted clean-energy share for one year. Higher
// is better. Records with no energy use are left ungraded and are not part of
// the comparison population.
func GradeEnergyMix(records []*benchmark.Record, year int, weights EnergyMixWeights, scale Scale) []EnergyMixGrade {
	yearRecords := benchmark.ForYear(records, year)
	scores := make([]float64, len(yearRecords))
	for i, r := range yearRecords {
		scores[i] = WeightedMixScore(r, weights)
	}
	grades := Grade(scores, false, scale)

	out := make([]EnergyMixGrade, len(yearRecords))
	for i, r := range yearRecords {
		out[i] = EnergyMixGrade{Key: r.Key(), Weighted: scores[i], Grade: grades[i]}
	}
	return out
}
