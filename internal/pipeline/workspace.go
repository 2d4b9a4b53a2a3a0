package pipeline

import (
	"path/filepath"

	"github.com/benchgrade/benchgrade/pkg/surface"
)

// Artifact file names.
const (
	FileHistoricStats          = "historic-stats.json"
	FileHistoricStatsByType    = "historic-stats-by-property-type.json"
	FilePropertyTypeStats      = "building-statistics-by-property-type.json"
	FilePropertyTypes          = "property-types.json"
	FileFinesByYear            = "fines-by-year.json"
	FileBuildingBenchmarkStats = "building-benchmark-stats.json"
	DefaultHistoricFile        = "benchmarking-all-years.csv"
	DefaultBenchmarkFile       = "building-benchmarks.csv"
)

// Workspace locates the input tables and output directories of a run.
type Workspace struct {
	DataDir       string
	DebugDir      string
	HistoricFile  string
	BenchmarkFile string
}

// HistoricPath returns the all-years table path.
func (w Workspace) HistoricPath() string {
	name := w.HistoricFile
	if name == "" {
		name = DefaultHistoricFile
	}
	return filepath.Join(w.DataDir, name)
}

// BenchmarkPath returns the latest-year table path.
func (w Workspace) BenchmarkPath() string {
	name := w.BenchmarkFile
	if name == "" {
		name = DefaultBenchmarkFile
	}
	return filepath.Join(w.DataDir, name)
}

// Artifacts returns the writer for JSON artifacts.
func (w Workspace) Artifacts() surface.ArtifactWriter {
	return surface.ArtifactWriter{DistDir: w.DataDir, DebugDir: w.DebugDir}
}
