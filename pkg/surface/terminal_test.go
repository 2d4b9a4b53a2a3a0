package surface_test

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/benchgrade/benchgrade/pkg/surface"
)

func sampleSummary() *surface.RunSummary {
	return &surface.RunSummary{
		RunID:     "run-123",
		StartedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Stages: []surface.StageSummary{
			{Name: "grade", Duration: 800 * time.Millisecond, Outputs: []string{"dist/building-benchmarks.csv"}},
			{Name: "historic-stats", Duration: 200 * time.Millisecond, Outputs: []string{"dist/historic-stats.json"}},
		},
		Buildings:         30,
		GradeDistribution: map[string]int{"A": 12, "C": 10, "F": 8},
		Warnings:          []string{"3 numeric cells could not be parsed and were treated as missing"},
	}
}

func TestTerminalRenderer_BasicOutput(t *testing.T) {
	r := &surface.TerminalRenderer{NoColor: true}
	var buf bytes.Buffer

	if err := r.Render(&buf, sampleSummary()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"benchgrade run run-123: ok in 1.5s",
		"grade",
		"dist/historic-stats.json",
		"Overall grades (30 buildings):",
		"A 12",
		"F 8",
		"Warnings:",
		"treated as missing",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
	if strings.Index(output, "A 12") > strings.Index(output, "C 10") {
		t.Error("expected grades listed best first")
	}
}

func TestTerminalRenderer_FailedStage(t *testing.T) {
	s := sampleSummary()
	s.Stages = append(s.Stages, surface.StageSummary{Name: "fines", Error: "reading benchmarking-all-years.csv: no such file"})

	r := &surface.TerminalRenderer{NoColor: true}
	var buf bytes.Buffer
	if err := r.Render(&buf, s); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "failed") {
		t.Error("expected failed status")
	}
	if !strings.Contains(output, "no such file") {
		t.Error("expected stage error in output")
	}
}

func TestTerminalRenderer_ColorRespected(t *testing.T) {
	os.Unsetenv("NO_COLOR")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer
	if err := r.Render(&buf, sampleSummary()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(buf.String(), "\033[") {
		t.Error("expected ANSI escape codes when NO_COLOR is not set")
	}
}

func TestTerminalRenderer_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer
	if err := r.Render(&buf, sampleSummary()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if strings.Contains(buf.String(), "\033[") {
		t.Error("expected no ANSI escape codes with NO_COLOR set")
	}
}

func TestArtifactWriter(t *testing.T) {
	dir := t.TempDir()
	w := surface.ArtifactWriter{DistDir: dir + "/dist", DebugDir: dir + "/debug"}

	paths, err := w.Write("fines-by-year.json", map[string]int{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %v", paths)
	}

	dist, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(dist) != "{\"a\":1,\"b\":2}\n" {
		t.Errorf("minified output = %q", dist)
	}

	debug, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(debug) != "{\n    \"a\": 1,\n    \"b\": 2\n}\n" {
		t.Errorf("indented output = %q", debug)
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := (&surface.JSONRenderer{}).Render(&buf, sampleSummary()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"run_id": "run-123"`) {
		t.Errorf("unexpected JSON: %s", buf.String())
	}
}
