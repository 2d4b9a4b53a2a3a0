package anomaly_test

import (
	"math"
	"testing"

	"github.com/benchgrade/benchgrade/pkg/anomaly"
	"github.com/benchgrade/benchgrade/pkg/benchmark"
)

func gasHistory(id string, startYear int, gas ...float64) []*benchmark.Record {
	out := make([]*benchmark.Record, len(gas))
	for i, g := range gas {
		r := benchmark.NewRecord(id, startYear+i)
		if !math.IsNaN(g) {
			r.SetValue(benchmark.ColNaturalGasUse, g)
		}
		out[i] = r
	}
	return out
}

func TestZeroGasDetector(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		gas  []float64
		want bool
	}{
		{"zero after use", []float64{100, 110, 0}, true},
		{"always zero", []float64{0, 0, 0}, false},
		{"zero before use", []float64{0, 50, 60}, false},
		{"missing is not zero", []float64{100, nan, 120}, false},
		{"zero after missing gap", []float64{100, nan, 0}, true},
		{"never reported", []float64{nan, nan}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := anomaly.ZeroGasDetector{}.Detect(gasHistory("1", 2018, tt.gas...))
			if got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectSortsByYear(t *testing.T) {
	history := gasHistory("7", 2018, 100, 110, 0)
	// Feed the rows newest first.
	historic := []*benchmark.Record{history[2], history[0], history[1]}

	got := anomaly.Detect(historic, anomaly.DefaultDetectors())
	if codes := got["7"]; len(codes) != 1 || codes[0] != anomaly.ZeroGasWithPrevUse {
		t.Errorf("codes = %v, want [%s]", codes, anomaly.ZeroGasWithPrevUse)
	}
}

func TestAnnotate(t *testing.T) {
	historic := append(gasHistory("1", 2020, 100, 110, 0), gasHistory("2", 2020, 0, 0, 0)...)
	table := &benchmark.Table{
		Header:  []string{benchmark.ColID, benchmark.ColDataYear},
		Records: []*benchmark.Record{benchmark.NewRecord("1", 2022), benchmark.NewRecord("2", 2022)},
	}

	n := anomaly.Annotate(table, anomaly.Detect(historic, anomaly.DefaultDetectors()))
	if n != 1 {
		t.Fatalf("flagged %d rows, want 1", n)
	}
	if !table.HasColumn(anomaly.Column) {
		t.Fatal("missing DataAnomalies column")
	}
	if got := table.Records[0].Cell(anomaly.Column); got != "gas:zero-with-prev-use" {
		t.Errorf("building 1 = %q", got)
	}
	if got := table.Records[1].Cell(anomaly.Column); got != "" {
		t.Errorf("building 2 = %q, want empty", got)
	}
}
