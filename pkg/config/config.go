// Package config handles loading and managing benchgrade configuration.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/benchgrade/benchgrade/pkg/benchmark"
	"github.com/benchgrade/benchgrade/pkg/grading"
)

//go:embed schema.json
var schema []byte

// Config is the top-level configuration for benchgrade.
type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	Grading   GradingConfig   `yaml:"grading"`
	Stats     StatsConfig     `yaml:"stats"`
	Fines     FinesConfig     `yaml:"fines"`
	Emissions EmissionsConfig `yaml:"emissions"`
	Publish   PublishConfig   `yaml:"publish"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// PathsConfig locates the input tables and the output directories.
type PathsConfig struct {
	DataDir       string `yaml:"data_dir"`
	DebugDir      string `yaml:"debug_dir"`
	HistoricFile  string `yaml:"historic_file"`
	BenchmarkFile string `yaml:"benchmark_file"`
}

// GradingConfig controls the grade scale and weights.
type GradingConfig struct {
	ScaleEdges        []float64              `yaml:"scale_edges"`
	ScaleLabels       []string               `yaml:"scale_labels"`
	EnergyMixWeights  map[string]float64     `yaml:"energy_mix_weights"`
	OverallWeights    grading.OverallWeights `yaml:"overall_weights"`
	SubmittedStatuses []string               `yaml:"submitted_statuses"`
}

// StatsConfig controls the statistics stages.
type StatsConfig struct {
	StartYear int `yaml:"start_year"`
}

// FinesConfig controls the fines estimate.
type FinesConfig struct {
	AnnualMaxFine int `yaml:"annual_max_fine"`
}

// EmissionsConfig locates the carbon intensity factor file.
type EmissionsConfig struct {
	FactorsFile string `yaml:"factors_file"`
}

// PublishConfig controls where artifacts are uploaded after a run.
type PublishConfig struct {
	Backend  string `yaml:"backend"` // local, s3 or gcs
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // S3-compatible endpoint, optional
	LocalDir string `yaml:"local_dir"`
	Verify   bool   `yaml:"verify"` // read each object back after upload
}

// ArchiveConfig controls the optional Postgres archive.
type ArchiveConfig struct {
	Enabled     bool   `yaml:"enabled"`
	DatabaseURL string `yaml:"database_url"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// MetricsConfig controls the Prometheus push after a run.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	scale := grading.DefaultScale()
	return &Config{
		Paths: PathsConfig{
			DataDir:       filepath.Join("src", "data", "dist"),
			DebugDir:      filepath.Join("src", "data", "debug"),
			HistoricFile:  "benchmarking-all-years.csv",
			BenchmarkFile: "building-benchmarks.csv",
		},
		Grading: GradingConfig{
			ScaleEdges:        scale.Edges,
			ScaleLabels:       scale.Labels,
			EnergyMixWeights:  grading.DefaultEnergyMixWeights(),
			OverallWeights:    grading.DefaultOverallWeights(),
			SubmittedStatuses: grading.DefaultSubmittedStatuses(),
		},
		Stats: StatsConfig{
			StartYear: 2016,
		},
		Fines: FinesConfig{
			AnnualMaxFine: 9200,
		},
		Emissions: EmissionsConfig{
			FactorsFile: filepath.Join("configs", "emissions.yml"),
		},
		Publish: PublishConfig{
			Backend: "local",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Job: "benchgrade",
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := validateDocument(data); err != nil {
		return nil, err
	}
	// A weight map in the file replaces the defaults instead of merging
	// into them.
	defaultWeights := cfg.Grading.EnergyMixWeights
	cfg.Grading.EnergyMixWeights = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Grading.EnergyMixWeights == nil {
		cfg.Grading.EnergyMixWeights = defaultWeights
	} else {
		for _, col := range benchmark.EnergySourceColumns {
			if _, ok := cfg.Grading.EnergyMixWeights[col]; !ok {
				cfg.Grading.EnergyMixWeights[col] = 0
			}
		}
	}

	return cfg, nil
}

// validateDocument checks the raw YAML against the embedded JSON schema.
func validateDocument(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if doc == nil {
		return nil
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting config for validation: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(docJSON))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("config failed validation: %s", strings.Join(details, "; "))
}

// Validate checks the rules the schema cannot express.
func (c *Config) Validate() error {
	if err := c.Grader().Validate(); err != nil {
		return err
	}
	switch c.Publish.Backend {
	case "local":
	case "s3", "gcs":
		if c.Publish.Bucket == "" {
			return fmt.Errorf("publish backend %s requires a bucket", c.Publish.Backend)
		}
	default:
		return fmt.Errorf("unknown publish backend %q", c.Publish.Backend)
	}
	if c.Archive.Enabled && c.Archive.DatabaseURL == "" {
		return fmt.Errorf("archive is enabled but database_url is empty")
	}
	return nil
}

// Grader builds a grader from the grading section.
func (c *Config) Grader() *grading.Grader {
	return &grading.Grader{
		Scale:             grading.Scale{Edges: c.Grading.ScaleEdges, Labels: c.Grading.ScaleLabels},
		EnergyMixWeights:  grading.EnergyMixWeights(c.Grading.EnergyMixWeights),
		OverallWeights:    c.Grading.OverallWeights,
		SubmittedStatuses: c.Grading.SubmittedStatuses,
	}
}

// HistoricPath returns the path of the all-years table.
func (c *Config) HistoricPath() string {
	return filepath.Join(c.Paths.DataDir, c.Paths.HistoricFile)
}

// BenchmarkPath returns the path of the latest-year table.
func (c *Config) BenchmarkPath() string {
	return filepath.Join(c.Paths.DataDir, c.Paths.BenchmarkFile)
}

// FindConfigFile looks for .benchgrade/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".benchgrade", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// FindProjectRoot walks up from dir looking for the src/data directory of a
// site checkout.
func FindProjectRoot(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, "src", "data")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("no project root found (looked for src/data)")
}
