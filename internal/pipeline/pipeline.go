// Package pipeline runs the benchmarking stages in order, stopping at the
// first failure.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/benchgrade/benchgrade/internal/observability"
	"github.com/benchgrade/benchgrade/pkg/anomaly"
	"github.com/benchgrade/benchgrade/pkg/emissions"
	"github.com/benchgrade/benchgrade/pkg/grading"
	"github.com/benchgrade/benchgrade/pkg/stats"
	"github.com/benchgrade/benchgrade/pkg/surface"
)

// Stage is one step of the pipeline. Run returns the paths it wrote.
type Stage interface {
	Name() string
	Run(ctx context.Context, env *Env) ([]string, error)
}

// Env is shared by the stages of a run. Stages exchange data only through
// the files in Workspace; the remaining fields are settings plus the figures
// collected for the run summary.
type Env struct {
	Workspace Workspace
	Grader    *grading.Grader
	Stats     stats.Options
	MaxFine   int
	Detectors []anomaly.Detector
	// Factors, when set, adds electricity emissions to both tables in the
	// grade stage.
	Factors   *emissions.Factors
	Logger    *slog.Logger
	Metrics   *observability.Metrics

	buildings         int
	gradeDistribution map[string]int
	warnings          []string
}

// Warn records a warning for the run summary and logs it.
func (e *Env) Warn(msg string, args ...any) {
	e.warnings = append(e.warnings, msg)
	e.Logger.Warn(msg, args...)
}

// Runner executes stages in order.
type Runner struct {
	env    *Env
	stages []Stage
	clock  clockwork.Clock
	newID  func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock sets the time source used for stage timing.
func WithClock(c clockwork.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithRunID fixes the run ID instead of generating one.
func WithRunID(id string) Option {
	return func(r *Runner) { r.newID = func() string { return id } }
}

// NewRunner creates a Runner for the given stages.
func NewRunner(env *Env, stages []Stage, opts ...Option) *Runner {
	if env.Logger == nil {
		env.Logger = observability.Discard()
	}
	if env.Metrics == nil {
		env.Metrics = observability.NewMetrics()
	}
	if env.Grader == nil {
		env.Grader = grading.NewGrader()
	}
	if env.Stats == (stats.Options{}) {
		env.Stats = stats.DefaultOptions()
	}
	if env.Detectors == nil {
		env.Detectors = anomaly.DefaultDetectors()
	}
	r := &Runner{
		env:    env,
		stages: stages,
		clock:  clockwork.NewRealClock(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every stage and returns the run summary. The summary is
// returned even when a stage fails; it then lists the failing stage last.
func (r *Runner) Run(ctx context.Context) (*surface.RunSummary, error) {
	summary := &surface.RunSummary{
		RunID:     r.newID(),
		StartedAt: r.clock.Now(),
	}
	logger := r.env.Logger.With("run_id", summary.RunID)
	logger.Info("pipeline started", "stages", len(r.stages))

	if err := r.env.Grader.Validate(); err != nil {
		r.env.Metrics.RunsTotal.WithLabelValues("failure").Inc()
		return summary, fmt.Errorf("invalid grading settings: %w", err)
	}

	var runErr error
	for _, st := range r.stages {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		start := r.clock.Now()
		logger.Info("stage started", "stage", st.Name())
		outputs, err := st.Run(ctx, r.env)
		elapsed := r.clock.Since(start)

		r.env.Metrics.StageDuration.WithLabelValues(st.Name()).Observe(elapsed.Seconds())
		ss := surface.StageSummary{Name: st.Name(), Duration: elapsed, Outputs: outputs}
		if err != nil {
			ss.Error = err.Error()
			summary.Stages = append(summary.Stages, ss)
			r.env.Metrics.StageErrors.WithLabelValues(st.Name()).Inc()
			logger.Error("stage failed", "stage", st.Name(), "error", err, "duration", elapsed)
			runErr = fmt.Errorf("stage %s: %w", st.Name(), err)
			break
		}

		summary.Stages = append(summary.Stages, ss)
		r.env.Metrics.ArtifactsWritten.Add(float64(len(outputs)))
		logger.Info("stage finished", "stage", st.Name(), "duration", elapsed, "outputs", strings.Join(outputs, ","))
	}

	summary.Duration = r.clock.Since(summary.StartedAt)
	summary.Buildings = r.env.buildings
	summary.GradeDistribution = r.env.gradeDistribution
	summary.Warnings = r.env.warnings

	if runErr != nil {
		r.env.Metrics.RunsTotal.WithLabelValues("failure").Inc()
		return summary, runErr
	}
	r.env.Metrics.RunsTotal.WithLabelValues("success").Inc()
	r.env.Metrics.LastSuccess.Set(float64(r.clock.Now().Unix()))
	logger.Info("pipeline finished", "duration", summary.Duration)
	return summary, nil
}

// Select returns the stages whose names are listed, in pipeline order.
func Select(stages []Stage, names []string) ([]Stage, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Stage
	for _, st := range stages {
		if want[st.Name()] {
			out = append(out, st)
			delete(want, st.Name())
		}
	}
	if len(want) > 0 {
		var unknown []string
		for n := range want {
			unknown = append(unknown, n)
		}
		return nil, fmt.Errorf("unknown stage(s): %s (available: %s)", strings.Join(unknown, ", "), strings.Join(StageNames(stages), ", "))
	}
	return out, nil
}

// StageNames lists the names of stages in order.
func StageNames(stages []Stage) []string {
	names := make([]string, len(stages))
	for i, st := range stages {
		names[i] = st.Name()
	}
	return names
}
