package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/otmatch/cost"
	"github.com/katalvlaran/otmatch/dataset"
	"github.com/katalvlaran/otmatch/transport"
)

// EnvPrefix prefixes every environment override. Keys are the field names
// split into words: Workers is OTMATCH_WORKERS, Subsample.Primary is
// OTMATCH_SUBSAMPLE_PRIMARY. Unprefixed names are never read.
const EnvPrefix = "OTMATCH"

// YearPlaceholder is substituted by the run year in every path.
const YearPlaceholder = "{year}"

var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("config: invalid configuration")

	// ErrNoYear is returned by Resolve when a path needs a year and none is set.
	ErrNoYear = errors.New("config: run year is required")
)

// Config is the year-independent run configuration.
type Config struct {
	Year int `yaml:"year" split_words:"true" validate:"omitempty,gte=1,lte=9999"`

	PrimaryDatasetPath   string `yaml:"primary_dataset_path" split_words:"true" validate:"required"`
	SecondaryDatasetPath string `yaml:"secondary_dataset_path" split_words:"true" validate:"required"`
	TertiaryDatasetPath  string `yaml:"tertiary_dataset_path" split_words:"true"`

	PrimaryName   string `yaml:"primary_name" split_words:"true" validate:"required,alphanum"`
	SecondaryName string `yaml:"secondary_name" split_words:"true" validate:"required,alphanum"`
	TertiaryName  string `yaml:"tertiary_name" split_words:"true" validate:"required,alphanum"`

	PrimaryMaxYear  int `yaml:"primary_max_year" split_words:"true" validate:"gte=0"`
	TertiaryMaxYear int `yaml:"tertiary_max_year" split_words:"true" validate:"gte=0"`
	TertiaryMinYear int `yaml:"tertiary_min_year" split_words:"true" validate:"gte=0"`

	IDColumn     string `yaml:"id_column" split_words:"true" validate:"required"`
	WeightColumn string `yaml:"weight_column" split_words:"true" validate:"required"`

	StratificationFields         []string       `yaml:"stratification_fields" split_words:"true" validate:"required,min=1,dive,required"`
	VariableCorrespondenceStage1 Correspondence `yaml:"variable_correspondence_stage1" split_words:"true" validate:"required,min=1"`
	VariableCorrespondenceStage2 Correspondence `yaml:"variable_correspondence_stage2" split_words:"true"`

	Solver             string `yaml:"solver" split_words:"true" validate:"oneof=simplex ssp"`
	SolverIterationCap int    `yaml:"solver_iteration_cap" split_words:"true" validate:"gte=1"`

	OutputPath   string `yaml:"output_path" split_words:"true" validate:"required"`
	OutputFormat string `yaml:"output_format" split_words:"true" validate:"oneof=csv parquet"`
	MetricsPath  string `yaml:"metrics_path" split_words:"true"`

	Workers  int  `yaml:"workers" split_words:"true" validate:"gte=1,lte=1024"`
	FailFast bool `yaml:"fail_fast" split_words:"true"`

	Subsample SubsampleConfig `yaml:"subsample" split_words:"true"`
	Logging   LoggingConfig   `yaml:"logging" split_words:"true"`
}

// SubsampleConfig limits records per cell and dataset (0 keeps all).
type SubsampleConfig struct {
	Primary   int   `yaml:"primary" split_words:"true" validate:"gte=0"`
	Secondary int   `yaml:"secondary" split_words:"true" validate:"gte=0"`
	Tertiary  int   `yaml:"tertiary" split_words:"true" validate:"gte=0"`
	Seed      int64 `yaml:"seed" split_words:"true"`
}

// LoggingConfig selects the zap logger flavour.
type LoggingConfig struct {
	Level       string `yaml:"level" split_words:"true" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development" split_words:"true"`
}

// Default returns the built-in defaults. Paths, fields and correspondences
// have no default.
func Default() Config {
	return Config{
		PrimaryName:        "dina",
		SecondaryName:      "cps",
		TertiaryName:       "scf",
		IDColumn:           "id",
		WeightColumn:       "weight",
		Solver:             transport.KindNetworkSimplex,
		SolverIterationCap: transport.DefaultMaxIterations,
		OutputFormat:       "csv",
		Workers:            1,
		Subsample:          SubsampleConfig{Seed: 19920902},
		Logging:            LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// OTMATCH_* environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err = decodeYAML(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Parse decodes YAML over Default() and validates it. The environment is
// not consulted.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := decodeYAML(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// Validate runs struct-tag validation and the cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.VariableCorrespondenceStage1.Cost().Validate(); err != nil {
		return fmt.Errorf("%w: variable_correspondence_stage1: %w", ErrInvalid, err)
	}
	if c.TertiaryDatasetPath != "" {
		if err := c.VariableCorrespondenceStage2.Cost().Validate(); err != nil {
			return fmt.Errorf("%w: variable_correspondence_stage2 (tertiary dataset set): %w", ErrInvalid, err)
		}
	}
	names := map[string]bool{c.PrimaryName: true, c.SecondaryName: true, c.TertiaryName: true}
	if len(names) != 3 {
		return fmt.Errorf("%w: dataset names must differ: %s, %s, %s", ErrInvalid, c.PrimaryName, c.SecondaryName, c.TertiaryName)
	}

	return nil
}

// Source is one dataset to load.
type Source struct {
	Path   string
	Year   int
	Schema dataset.Schema
}

// Subsample mirrors SubsampleConfig for a resolved run.
type Subsample struct {
	Primary, Secondary, Tertiary int
	Seed                         int64
}

// Run is the configuration of one concrete run.
type Run struct {
	Year         int
	Primary      Source
	Secondary    Source
	Tertiary     *Source
	Fields       []string
	Stage1       cost.Correspondence
	Stage2       cost.Correspondence
	Solver       string
	IterationCap int
	OutputPath   string
	OutputFormat string
	MetricsPath  string
	Workers      int
	FailFast     bool
	Subsample    Subsample
}

// ThreeWay reports whether the tertiary dataset takes part.
func (r *Run) ThreeWay() bool { return r.Tertiary != nil }

// Resolve builds the Run for year. A zero year falls back to Config.Year.
//
// Rules:
//   - primary year = min(year, primary_max_year) when the clamp is set
//   - tertiary year = min(year, tertiary_max_year) when the clamp is set
//   - the tertiary dataset is used only when its path is set and
//     year >= tertiary_min_year
//
// Errors: ErrNoYear when a path holds "{year}" and no year is known.
func (c *Config) Resolve(year int) (*Run, error) {
	if year == 0 {
		year = c.Year
	}
	if year == 0 {
		for _, p := range []string{c.PrimaryDatasetPath, c.SecondaryDatasetPath, c.TertiaryDatasetPath, c.OutputPath} {
			if strings.Contains(p, YearPlaceholder) {
				return nil, fmt.Errorf("%w: %q uses %s", ErrNoYear, p, YearPlaceholder)
			}
		}
	}

	useTertiary := c.TertiaryDatasetPath != "" && (c.TertiaryMinYear == 0 || year >= c.TertiaryMinYear)
	stage2 := c.VariableCorrespondenceStage2.Cost()
	if !useTertiary {
		stage2 = nil
	}
	stage1 := c.VariableCorrespondenceStage1.Cost()

	primaryVars := stage1.Sources()
	if useTertiary {
		primaryVars = appendMissing(primaryVars, stage2.Sources())
	}

	run := &Run{
		Year:         year,
		Primary:      c.source(c.PrimaryDatasetPath, c.PrimaryName, clamp(year, c.PrimaryMaxYear), primaryVars),
		Secondary:    c.source(c.SecondaryDatasetPath, c.SecondaryName, year, stage1.Targets()),
		Fields:       append([]string(nil), c.StratificationFields...),
		Stage1:       stage1,
		Stage2:       stage2,
		Solver:       c.Solver,
		IterationCap: c.SolverIterationCap,
		OutputPath:   substitute(c.OutputPath, year),
		OutputFormat: c.OutputFormat,
		MetricsPath:  substitute(c.MetricsPath, year),
		Workers:      c.Workers,
		FailFast:     c.FailFast,
		Subsample: Subsample{
			Primary:   c.Subsample.Primary,
			Secondary: c.Subsample.Secondary,
			Tertiary:  c.Subsample.Tertiary,
			Seed:      c.Subsample.Seed,
		},
	}
	if useTertiary {
		t := c.source(c.TertiaryDatasetPath, c.TertiaryName, clamp(year, c.TertiaryMaxYear), stage2.Targets())
		run.Tertiary = &t
	}

	return run, nil
}

func (c *Config) source(path, name string, year int, vars []string) Source {
	return Source{
		Path: substitute(path, year),
		Year: year,
		Schema: dataset.Schema{
			Name:         name,
			IDColumn:     c.IDColumn,
			WeightColumn: c.WeightColumn,
			Strata:       append([]string(nil), c.StratificationFields...),
			Variables:    vars,
		},
	}
}

func clamp(year, limit int) int {
	if limit > 0 && year > limit {
		return limit
	}

	return year
}

func substitute(path string, year int) string {
	return strings.ReplaceAll(path, YearPlaceholder, strconv.Itoa(year))
}

func appendMissing(dst, src []string) []string {
	have := make(map[string]bool, len(dst))
	for _, s := range dst {
		have[s] = true
	}
	for _, s := range src {
		if !have[s] {
			dst = append(dst, s)
			have[s] = true
		}
	}

	return dst
}
