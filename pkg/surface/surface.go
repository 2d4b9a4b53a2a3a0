// Package surface renders pipeline results: the JSON artifacts consumed by the
// site and the run summary shown to whoever ran the pipeline.
package surface

import (
	"io"
	"time"
)

// Renderer produces formatted output from a RunSummary.
type Renderer interface {
	// Render writes the formatted run summary to the writer.
	Render(w io.Writer, summary *RunSummary) error
}

// RunSummary describes one pipeline run.
type RunSummary struct {
	RunID     string         `json:"run_id"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration_ns"`
	Stages    []StageSummary `json:"stages"`
	Buildings int            `json:"buildings"`
	// GradeDistribution counts overall letter grades in the latest year.
	GradeDistribution map[string]int `json:"grade_distribution,omitempty"`
	Warnings          []string       `json:"warnings,omitempty"`
}

// StageSummary describes one stage of a run.
type StageSummary struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration_ns"`
	Outputs  []string      `json:"outputs,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Failed reports whether any stage failed.
func (s *RunSummary) Failed() bool {
	for _, st := range s.Stages {
		if st.Error != "" {
			return true
		}
	}
	return false
}
