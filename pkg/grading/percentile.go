package grading

import (
	"math"
	"sort"
)

// Grade scores each value against the population formed by the non-NaN values
// of the same slice and buckets the score with scale.
//
// The score is the weak percentile of x: the share of the population that is
// <= x, times 100. Ties share a score. With reverse set, lower raw values are
// better and the score is 100 minus the weak percentile. A population of one
// scores 100 in both directions. NaN inputs score NaN with no letter.
func Grade(values []float64, reverse bool, scale Scale) []RelativePercentileGrade {
	out := make([]RelativePercentileGrade, len(values))
	pct := PercentileScores(values, reverse)
	for i, p := range pct {
		out[i] = RelativePercentileGrade{Percentile: p, Letter: scale.Letter(p)}
	}
	return out
}

// PercentileScores returns the 0-100 score of each value. See Grade.
func PercentileScores(values []float64, reverse bool) []float64 {
	population := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			population = append(population, v)
		}
	}
	sort.Float64s(population)
	n := float64(len(population))

	scores := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			scores[i] = math.NaN()
			continue
		}
		if len(population) == 1 {
			scores[i] = 100
			continue
		}
		weak := float64(countAtOrBelow(population, v)) / n * 100
		if reverse {
			scores[i] = 100 - weak
		} else {
			scores[i] = weak
		}
	}
	return scores
}

// WeakPercentile returns count(v <= x) / n * 100 over the non-NaN values.
// It returns NaN for an empty population or NaN x.
func WeakPercentile(values []float64, x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	n, le := 0, 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		n++
		if v <= x {
			le++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return float64(le) / float64(n) * 100
}

// countAtOrBelow counts elements of the sorted slice that are <= x.
func countAtOrBelow(sorted []float64, x float64) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i] > x })
}
