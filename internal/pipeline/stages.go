package pipeline

import (
	"context"
	"fmt"

	"github.com/benchgrade/benchgrade/pkg/anomaly"
	"github.com/benchgrade/benchgrade/pkg/benchmark"
	"github.com/benchgrade/benchgrade/pkg/fines"
	"github.com/benchgrade/benchgrade/pkg/grading"
	"github.com/benchgrade/benchgrade/pkg/stats"
)

// Stage names, in run order.
const (
	StageGrade                   = "grade"
	StageContext                 = "context"
	StageAnomalies               = "anomalies"
	StageHistoricStats           = "historic-stats"
	StageFines                   = "fines"
	StageHistoricStatsByProperty = "historic-stats-by-property-type"
	StageCityWideStats           = "citywide-stats"
)

type stageFunc struct {
	name string
	run  func(ctx context.Context, env *Env) ([]string, error)
}

func (s stageFunc) Name() string { return s.name }

func (s stageFunc) Run(ctx context.Context, env *Env) ([]string, error) {
	return s.run(ctx, env)
}

// DefaultStages returns every stage in run order. Later stages read the
// tables written by earlier ones.
func DefaultStages() []Stage {
	return []Stage{
		stageFunc{StageGrade, runGrade},
		stageFunc{StageContext, runContext},
		stageFunc{StageAnomalies, runAnomalies},
		stageFunc{StageHistoricStats, runHistoricStats},
		stageFunc{StageFines, runFines},
		stageFunc{StageHistoricStatsByProperty, runHistoricStatsByPropertyType},
		stageFunc{StageCityWideStats, runCityWideStats},
	}
}

func (e *Env) load(path, table string) (*benchmark.Table, error) {
	t, report, err := benchmark.LoadCSV(path)
	if err != nil {
		return nil, err
	}
	e.Metrics.RowsIngested.WithLabelValues(table).Add(float64(report.Rows))
	if report.CoercedCells > 0 {
		e.Metrics.CoercedCells.Add(float64(report.CoercedCells))
		e.Warn(fmt.Sprintf("%s: %d numeric cells could not be parsed and were treated as missing", table, report.CoercedCells),
			"table", table, "cells", report.CoercedCells, "first", report.FirstCoercion)
	}
	return t, nil
}

func runGrade(_ context.Context, env *Env) ([]string, error) {
	ws := env.Workspace
	historic, err := env.load(ws.HistoricPath(), "historic")
	if err != nil {
		return nil, err
	}
	latest, err := env.load(ws.BenchmarkPath(), "benchmark")
	if err != nil {
		return nil, err
	}

	grades := env.Grader.GradeBuildings(historic.Records)
	graded := grading.Apply(historic, grades)
	matched := grading.Apply(latest, grades)
	env.Metrics.BuildingsGraded.Set(float64(graded))
	if missing := len(latest.Records) - matched; missing > 0 {
		env.Warn(fmt.Sprintf("%d latest-year rows have no matching historic row and were left ungraded", missing),
			"rows", missing)
	}

	if env.Factors != nil {
		skipped := env.Factors.Apply(historic)
		env.Factors.Apply(latest)
		env.Logger.Debug("electricity emissions added", "skipped", skipped)
	}

	if err := benchmark.SaveCSV(ws.HistoricPath(), historic); err != nil {
		return nil, err
	}
	if err := benchmark.SaveCSV(ws.BenchmarkPath(), latest); err != nil {
		return nil, err
	}
	env.buildings = len(latest.Records)
	return []string{ws.HistoricPath(), ws.BenchmarkPath()}, nil
}

func runContext(_ context.Context, env *Env) ([]string, error) {
	ws := env.Workspace
	latest, err := env.load(ws.BenchmarkPath(), "benchmark")
	if err != nil {
		return nil, err
	}

	stats.RankByPropertyType(latest)
	rows := stats.LatestYearRecords(latest)

	// Context covers every building at its latest report; ranks and the
	// type list only the latest year.
	var outputs []string
	paths, err := ws.Artifacts().Write(FilePropertyTypeStats, stats.PropertyTypeContext(latest.Records))
	if err != nil {
		return nil, err
	}
	outputs = append(outputs, paths...)

	paths, err = ws.Artifacts().Write(FilePropertyTypes, map[string][]string{
		"propertyTypes": stats.PropertyTypes(rows),
	})
	if err != nil {
		return nil, err
	}
	outputs = append(outputs, paths...)

	if err := benchmark.SaveCSV(ws.BenchmarkPath(), latest); err != nil {
		return nil, err
	}
	outputs = append(outputs, ws.BenchmarkPath())

	dist := make(map[string]int)
	for _, r := range rows {
		if letter := r.Cell(grading.ColAvgLetterGrade); letter != "" {
			dist[letter]++
		}
	}
	for letter, n := range dist {
		env.Metrics.GradeDistribution.WithLabelValues(letter).Set(float64(n))
	}
	env.gradeDistribution = dist
	return outputs, nil
}

func runAnomalies(_ context.Context, env *Env) ([]string, error) {
	ws := env.Workspace
	historic, err := env.load(ws.HistoricPath(), "historic")
	if err != nil {
		return nil, err
	}
	latest, err := env.load(ws.BenchmarkPath(), "benchmark")
	if err != nil {
		return nil, err
	}

	flagged := anomaly.Annotate(latest, anomaly.Detect(historic.Records, env.Detectors))
	env.Metrics.AnomaliesFlagged.Set(float64(flagged))
	env.Logger.Info("anomalies flagged", "rows", flagged)

	if err := benchmark.SaveCSV(ws.BenchmarkPath(), latest); err != nil {
		return nil, err
	}
	return []string{ws.BenchmarkPath()}, nil
}

func runHistoricStats(_ context.Context, env *Env) ([]string, error) {
	ws := env.Workspace
	historic, err := env.load(ws.HistoricPath(), "historic")
	if err != nil {
		return nil, err
	}
	return ws.Artifacts().Write(FileHistoricStats, stats.HistoricStats(historic.Records, stats.HistoricColumns, env.Stats))
}

func runFines(_ context.Context, env *Env) ([]string, error) {
	ws := env.Workspace
	historic, err := env.load(ws.HistoricPath(), "historic")
	if err != nil {
		return nil, err
	}
	maxFine := env.MaxFine
	if maxFine <= 0 {
		maxFine = fines.AnnualMaxFine
	}
	return ws.Artifacts().Write(FileFinesByYear, fines.ByYear(historic.Records, maxFine))
}

func runHistoricStatsByPropertyType(_ context.Context, env *Env) ([]string, error) {
	ws := env.Workspace
	historic, err := env.load(ws.HistoricPath(), "historic")
	if err != nil {
		return nil, err
	}
	latest, err := env.load(ws.BenchmarkPath(), "benchmark")
	if err != nil {
		return nil, err
	}

	joined := stats.JoinPropertyType(historic.Records, latest.Records)
	return ws.Artifacts().Write(FileHistoricStatsByType, stats.HistoricStatsByPropertyType(joined, stats.HistoricColumns, env.Stats))
}

func runCityWideStats(_ context.Context, env *Env) ([]string, error) {
	ws := env.Workspace
	latest, err := env.load(ws.BenchmarkPath(), "benchmark")
	if err != nil {
		return nil, err
	}
	return ws.Artifacts().Write(FileBuildingBenchmarkStats, stats.CityWide(stats.LatestYearRecords(latest), stats.CityWideColumns))
}
