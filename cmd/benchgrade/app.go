package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/benchgrade/benchgrade/internal/archive"
	"github.com/benchgrade/benchgrade/internal/observability"
	"github.com/benchgrade/benchgrade/internal/pipeline"
	"github.com/benchgrade/benchgrade/internal/publish"
	"github.com/benchgrade/benchgrade/pkg/benchmark"
	"github.com/benchgrade/benchgrade/pkg/config"
	"github.com/benchgrade/benchgrade/pkg/emissions"
	"github.com/benchgrade/benchgrade/pkg/stats"
	"github.com/benchgrade/benchgrade/pkg/surface"
)

// app carries what a command needs once flags and config are resolved.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	noColor bool
	stdout  io.Writer
	stderr  io.Writer
}

func loadConfig(g *globalOpts) (*config.Config, error) {
	path := g.configPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		path = config.FindConfigFile(cwd)
	}

	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.Paths.DataDir = firstNonEmpty(g.dataDir, cfg.Paths.DataDir)
	cfg.Paths.DebugDir = firstNonEmpty(g.debugDir, cfg.Paths.DebugDir)
	cfg.Logging.Level = firstNonEmpty(g.logLevel, cfg.Logging.Level)
	cfg.Logging.Format = firstNonEmpty(g.logFormat, cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newApp(cmdOut, cmdErr io.Writer, g *globalOpts) (*app, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(cmdErr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: observability.NewMetrics(),
		noColor: g.noColor,
		stdout:  cmdOut,
		stderr:  cmdErr,
	}, nil
}

func (a *app) workspace() pipeline.Workspace {
	return pipeline.Workspace{
		DataDir:       a.cfg.Paths.DataDir,
		DebugDir:      a.cfg.Paths.DebugDir,
		HistoricFile:  a.cfg.Paths.HistoricFile,
		BenchmarkFile: a.cfg.Paths.BenchmarkFile,
	}
}

func (a *app) env(withEmissions bool) (*pipeline.Env, error) {
	opts := stats.DefaultOptions()
	if a.cfg.Stats.StartYear > 0 {
		opts.StartYear = a.cfg.Stats.StartYear
	}
	env := &pipeline.Env{
		Workspace: a.workspace(),
		Grader:    a.cfg.Grader(),
		Stats:     opts,
		MaxFine:   a.cfg.Fines.AnnualMaxFine,
		Logger:    a.logger,
		Metrics:   a.metrics,
	}
	if withEmissions {
		factors, err := emissions.LoadFactors(a.cfg.Emissions.FactorsFile)
		if err != nil {
			return nil, err
		}
		env.Factors = factors
	}
	return env, nil
}

func (a *app) render(summary *surface.RunSummary, format string) error {
	var r surface.Renderer
	switch format {
	case "json":
		r = &surface.JSONRenderer{}
	case "", "text":
		r = &surface.TerminalRenderer{NoColor: a.noColor}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return r.Render(a.stdout, summary)
}

func (a *app) publisher(ctx context.Context) (*publish.Publisher, error) {
	store, err := publish.NewStore(ctx, a.cfg.Publish)
	if err != nil {
		return nil, err
	}
	return &publish.Publisher{
		Store:   store,
		Prefix:  a.cfg.Publish.Prefix,
		Verify:  a.cfg.Publish.Verify,
		Logger:  a.logger,
		Metrics: a.metrics,
	}, nil
}

// publishArtifacts uploads every JSON and CSV file in the data directory.
func (a *app) publishArtifacts(ctx context.Context) ([]string, error) {
	p, err := a.publisher(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := p.Close(); err != nil {
			a.logger.Warn("closing publish store", "error", err)
		}
	}()
	files, err := publish.Artifacts(a.cfg.Paths.DataDir)
	if err != nil {
		return nil, err
	}
	return p.Publish(ctx, files)
}

// archiveRun stores the run and the graded historic table in Postgres.
func (a *app) archiveRun(ctx context.Context, summary *surface.RunSummary, runErr error) error {
	db, err := archive.Open(ctx, a.cfg.Archive.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := archive.AutoMigrate(db); err != nil {
		return err
	}

	svc := archive.NewService(db)
	id, err := svc.StartRun(ctx, summary.RunID, summary.StartedAt)
	if err != nil {
		return err
	}

	saved := 0
	if runErr == nil {
		t, _, err := benchmark.LoadCSV(a.workspace().HistoricPath())
		if err != nil {
			return errors.Join(err, svc.FinishRun(ctx, id, summary.StartedAt.Add(summary.Duration), summary.Buildings, err))
		}
		saved, err = svc.SaveGrades(ctx, id, archive.GradeRows(t))
		if err != nil {
			return errors.Join(err, svc.FinishRun(ctx, id, summary.StartedAt.Add(summary.Duration), summary.Buildings, err))
		}
	}

	if err := svc.FinishRun(ctx, id, summary.StartedAt.Add(summary.Duration), summary.Buildings, runErr); err != nil {
		return err
	}
	a.logger.Info("run archived", "run_id", id, "grades", saved)
	return nil
}

func (a *app) pushMetrics(ctx context.Context) {
	if a.cfg.Metrics.PushgatewayURL == "" {
		return
	}
	if err := a.metrics.Push(ctx, a.cfg.Metrics.PushgatewayURL, a.cfg.Metrics.Job); err != nil {
		a.logger.Warn("metrics push failed", "error", err)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
