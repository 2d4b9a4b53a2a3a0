// Package anomaly flags buildings whose reported history looks wrong enough
// that their grades should not be shown.
package anomaly

import (
	"math"
	"sort"
	"strings"

	"github.com/benchgrade/benchgrade/pkg/benchmark"
)

// Column holds the comma-separated anomaly codes of a building.
const Column = "DataAnomalies"

// Anomaly codes.
const (
	ZeroGasWithPrevUse = "gas:zero-with-prev-use"
)

// Detector finds anomalies in a building's yearly records, which are passed
// sorted by year.
type Detector interface {
	Code() string
	Detect(history []*benchmark.Record) bool
}

// ZeroGasDetector flags a building that reported exactly zero natural gas in
// a year after reporting positive use in an earlier year.
type ZeroGasDetector struct{}

func (ZeroGasDetector) Code() string { return ZeroGasWithPrevUse }

func (ZeroGasDetector) Detect(history []*benchmark.Record) bool {
	usedGas := false
	for _, r := range history {
		v := r.Value(benchmark.ColNaturalGasUse)
		switch {
		case math.IsNaN(v):
		case v > 0:
			usedGas = true
		case v == 0 && usedGas:
			return true
		}
	}
	return false
}

// DefaultDetectors returns every detector that runs in the pipeline.
func DefaultDetectors() []Detector {
	return []Detector{ZeroGasDetector{}}
}

// Detect runs the detectors over each building's history and returns the
// anomaly codes found per building ID.
func Detect(historic []*benchmark.Record, detectors []Detector) map[string][]string {
	out := make(map[string][]string)
	for id, rows := range benchmark.GroupByID(historic) {
		history := make([]*benchmark.Record, len(rows))
		copy(history, rows)
		sort.SliceStable(history, func(i, j int) bool { return history[i].DataYear < history[j].DataYear })

		for _, d := range detectors {
			if d.Detect(history) {
				out[id] = append(out[id], d.Code())
			}
		}
	}
	return out
}

// Annotate writes the anomaly codes of each building into Column of t. Rows
// without anomalies get an empty cell. It returns the number of flagged rows.
func Annotate(t *benchmark.Table, anomalies map[string][]string) int {
	t.AddColumn(Column)
	flagged := 0
	for _, r := range t.Records {
		codes := anomalies[r.ID]
		r.SetCell(Column, strings.Join(codes, ","))
		if len(codes) > 0 {
			flagged++
		}
	}
	return flagged
}
