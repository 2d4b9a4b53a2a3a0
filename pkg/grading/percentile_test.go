package grading_test

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/benchgrade/benchgrade/pkg/grading"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGradeAscending(t *testing.T) {
	got := grading.Grade([]float64{10, 30, 50, 70, 90}, false, grading.DefaultScale())

	wantPct := []float64{20, 40, 60, 80, 100}
	wantLetter := []string{"F", "D", "C", "B", "A"}
	for i := range got {
		if !approxEqual(got[i].Percentile, wantPct[i]) {
			t.Errorf("value %d: percentile = %v, want %v", i, got[i].Percentile, wantPct[i])
		}
		if got[i].Letter != wantLetter[i] {
			t.Errorf("value %d: letter = %q, want %q", i, got[i].Letter, wantLetter[i])
		}
	}
}

func TestGradeReverse(t *testing.T) {
	got := grading.Grade([]float64{10, 30, 50, 70, 90}, true, grading.DefaultScale())

	wantPct := []float64{80, 60, 40, 20, 0}
	wantLetter := []string{"B", "C", "D", "F", "F"}
	for i := range got {
		if !approxEqual(got[i].Percentile, wantPct[i]) {
			t.Errorf("value %d: percentile = %v, want %v", i, got[i].Percentile, wantPct[i])
		}
		if got[i].Letter != wantLetter[i] {
			t.Errorf("value %d: letter = %q, want %q", i, got[i].Letter, wantLetter[i])
		}
	}
}

func TestGradeMaximumIsA(t *testing.T) {
	values := []float64{3, 9, 1, 9, 4}
	got := grading.Grade(values, false, grading.DefaultScale())
	for i, v := range values {
		if v != 9 {
			continue
		}
		if got[i].Percentile != 100 || got[i].Letter != grading.GradeA {
			t.Errorf("max value %d: got %v/%q, want 100/A", i, got[i].Percentile, got[i].Letter)
		}
	}
}

func TestGradeDuplicateMinimums(t *testing.T) {
	got := grading.Grade([]float64{1, 1, 2, 3}, false, grading.DefaultScale())

	if got[0].Percentile != got[1].Percentile {
		t.Fatalf("tied minimums scored differently: %v vs %v", got[0].Percentile, got[1].Percentile)
	}
	if !approxEqual(got[0].Percentile, 50) {
		t.Errorf("minimum percentile = %v, want 50", got[0].Percentile)
	}
	if got[0].Letter != grading.GradeC {
		t.Errorf("minimum letter = %q, want C", got[0].Letter)
	}
}

func TestGradeSingleValue(t *testing.T) {
	for _, reverse := range []bool{false, true} {
		got := grading.Grade([]float64{42}, reverse, grading.DefaultScale())
		if len(got) != 1 {
			t.Fatalf("reverse=%v: got %d grades, want 1", reverse, len(got))
		}
		if got[0].Percentile != 100 || got[0].Letter != grading.GradeA {
			t.Errorf("reverse=%v: got %v/%q, want 100/A", reverse, got[0].Percentile, got[0].Letter)
		}
	}
}

func TestGradeEmpty(t *testing.T) {
	if got := grading.Grade(nil, false, grading.DefaultScale()); len(got) != 0 {
		t.Errorf("expected no grades, got %d", len(got))
	}
}

func TestGradeNaNExcluded(t *testing.T) {
	got := grading.Grade([]float64{math.NaN(), 1, 2}, false, grading.DefaultScale())

	if !math.IsNaN(got[0].Percentile) || got[0].Letter != "" {
		t.Errorf("NaN input: got %v/%q, want NaN and no letter", got[0].Percentile, got[0].Letter)
	}
	if !approxEqual(got[1].Percentile, 50) {
		t.Errorf("value 1 percentile = %v, want 50", got[1].Percentile)
	}
	if !approxEqual(got[2].Percentile, 100) {
		t.Errorf("value 2 percentile = %v, want 100", got[2].Percentile)
	}
}

func TestGradeNaNLeavesSingleValue(t *testing.T) {
	got := grading.Grade([]float64{math.NaN(), 7}, true, grading.DefaultScale())
	if got[1].Percentile != 100 {
		t.Errorf("lone valid value percentile = %v, want 100", got[1].Percentile)
	}
}

func TestPercentileScoresMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := make([]float64, 200)
	for i := range values {
		values[i] = math.Floor(rng.Float64() * 50)
	}

	for _, reverse := range []bool{false, true} {
		scores := grading.PercentileScores(values, reverse)
		idx := make([]int, len(values))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

		for k := 1; k < len(idx); k++ {
			prev, cur := scores[idx[k-1]], scores[idx[k]]
			if values[idx[k-1]] == values[idx[k]] {
				if prev != cur {
					t.Fatalf("reverse=%v: ties scored %v and %v", reverse, prev, cur)
				}
				continue
			}
			if !reverse && prev > cur {
				t.Fatalf("ascending scores not monotonic: %v then %v", prev, cur)
			}
			if reverse && prev < cur {
				t.Fatalf("reverse scores not monotonic: %v then %v", prev, cur)
			}
		}
		for _, s := range scores {
			if s < 0 || s > 100 {
				t.Fatalf("score %v out of range", s)
			}
		}
	}
}

func TestWeakPercentile(t *testing.T) {
	values := []float64{1, 2, 2, 4, math.NaN()}
	tests := []struct {
		x    float64
		want float64
	}{
		{0, 0},
		{1, 25},
		{2, 75},
		{3, 75},
		{4, 100},
	}
	for _, tt := range tests {
		if got := grading.WeakPercentile(values, tt.x); !approxEqual(got, tt.want) {
			t.Errorf("WeakPercentile(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
	if got := grading.WeakPercentile(nil, 1); !math.IsNaN(got) {
		t.Errorf("empty population: got %v, want NaN", got)
	}
}

func TestScaleLetter(t *testing.T) {
	scale := grading.DefaultScale()
	tests := []struct {
		score float64
		want  string
	}{
		{0, "F"},
		{0.1, "F"},
		{20, "F"},
		{20.01, "D"},
		{40, "D"},
		{60, "C"},
		{80, "B"},
		{80.5, "A"},
		{100, "A"},
		{101, "A"},
		{101.5, ""},
		{-1, ""},
		{math.NaN(), ""},
	}
	for _, tt := range tests {
		if got := scale.Letter(tt.score); got != tt.want {
			t.Errorf("Letter(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestScaleValidate(t *testing.T) {
	if err := grading.DefaultScale().Validate(); err != nil {
		t.Fatalf("default scale invalid: %v", err)
	}

	bad := []grading.Scale{
		{Edges: []float64{0, 50, 100}, Labels: []string{"F"}},
		{Edges: []float64{0, 50, 50}, Labels: []string{"F", "A"}},
		{Edges: []float64{0}, Labels: nil},
	}
	for i, s := range bad {
		if err := s.Validate(); err == nil {
			t.Errorf("scale %d: expected validation error", i)
		}
	}
}
