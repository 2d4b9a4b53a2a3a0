package archive

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/benchgrade/benchgrade/pkg/benchmark"
	"github.com/benchgrade/benchgrade/pkg/grading"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Service records runs and grades in Postgres.
type Service struct {
	db *sql.DB
}

// Run is one archived pipeline run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
	Buildings  int
	Error      *string
}

// GradeRow is the archived grade of one building-year. Undefined scores are
// NaN and stored as NULL.
type GradeRow struct {
	BuildingID          string
	DataYear            int
	GHGPercentile       float64
	GHGLetter           string
	EnergyMixWeighted   float64
	EnergyMixPercentile float64
	EnergyMixLetter     string
	SubmittedRate       float64
	SubmittedLetter     string
	MissingRecords      *int
	OverallScore        float64
	OverallLetter       string
}

// NewService creates a new archive Service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// StartRun inserts a running run. An empty id is replaced by a new UUID; the
// id used is returned.
func (s *Service) StartRun(ctx context.Context, id string, startedAt time.Time) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("run id %q: %w", id, err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, status) VALUES ($1, $2, $3)`,
		id, startedAt, StatusRunning,
	)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// FinishRun marks a run succeeded, or failed when runErr is non-nil.
func (s *Service) FinishRun(ctx context.Context, id string, finishedAt time.Time, buildings int, runErr error) error {
	status := StatusSucceeded
	var msg *string
	if runErr != nil {
		status = StatusFailed
		m := runErr.Error()
		msg = &m
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = $2, status = $3, buildings = $4, error = $5 WHERE id = $1`,
		id, finishedAt, status, buildings, msg,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, status, buildings, error
		 FROM runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Buildings, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SaveGrades bulk-copies rows into building_grades for a run inside one
// transaction. It returns the number of rows written.
func (s *Service) SaveGrades(ctx context.Context, runID string, grades []GradeRow) (int, error) {
	if len(grades) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("building_grades",
		"run_id", "building_id", "data_year",
		"ghg_percentile", "ghg_letter",
		"energy_mix_weighted", "energy_mix_percentile", "energy_mix_letter",
		"submitted_rate", "submitted_letter", "missing_records",
		"overall_score", "overall_letter",
	))
	if err != nil {
		return 0, fmt.Errorf("prepare copy: %w", err)
	}

	for _, g := range grades {
		var missing any
		if g.MissingRecords != nil {
			missing = *g.MissingRecords
		}
		_, err := stmt.ExecContext(ctx,
			runID, g.BuildingID, g.DataYear,
			nullFloat(g.GHGPercentile), nullString(g.GHGLetter),
			nullFloat(g.EnergyMixWeighted), nullFloat(g.EnergyMixPercentile), nullString(g.EnergyMixLetter),
			nullFloat(g.SubmittedRate), nullString(g.SubmittedLetter), missing,
			nullFloat(g.OverallScore), nullString(g.OverallLetter),
		)
		if err != nil {
			stmt.Close()
			return 0, fmt.Errorf("copy %s/%d: %w", g.BuildingID, g.DataYear, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("close copy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(grades), nil
}

// GradeRows reads the grade columns of a graded table. Records whose grade
// cells are all blank are skipped.
func GradeRows(t *benchmark.Table) []GradeRow {
	var out []GradeRow
	for _, r := range t.Records {
		g := GradeRow{
			BuildingID:          r.ID,
			DataYear:            r.DataYear,
			GHGPercentile:       cellFloat(r, grading.FieldGHGIntensity+grading.SuffixPercentileGrade),
			GHGLetter:           r.Cell(grading.FieldGHGIntensity + grading.SuffixLetterGrade),
			EnergyMixWeighted:   cellFloat(r, grading.ColEnergyMixWeighted),
			EnergyMixPercentile: cellFloat(r, grading.FieldEnergyMix+grading.SuffixPercentileGrade),
			EnergyMixLetter:     r.Cell(grading.FieldEnergyMix + grading.SuffixLetterGrade),
			SubmittedRate:       cellFloat(r, grading.FieldSubmittedRecords+grading.SuffixPercentileGrade),
			SubmittedLetter:     r.Cell(grading.FieldSubmittedRecords + grading.SuffixLetterGrade),
			OverallScore:        cellFloat(r, grading.ColAvgPercentileGrade),
			OverallLetter:       r.Cell(grading.ColAvgLetterGrade),
		}
		if n, err := strconv.Atoi(r.Cell(grading.ColMissingRecordsCount)); err == nil {
			g.MissingRecords = &n
		}
		if g.empty() {
			continue
		}
		out = append(out, g)
	}
	return out
}

func (g GradeRow) empty() bool {
	return math.IsNaN(g.GHGPercentile) && math.IsNaN(g.EnergyMixPercentile) &&
		math.IsNaN(g.SubmittedRate) && math.IsNaN(g.OverallScore) && g.MissingRecords == nil
}

// cellFloat parses a grade cell. Grade columns are not numeric at ingestion,
// so they are only available as text.
func cellFloat(r *benchmark.Record, col string) float64 {
	v, ok := benchmark.ParseNumber(r.Cell(col))
	if !ok {
		return math.NaN()
	}
	return v
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
