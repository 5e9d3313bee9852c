package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/otmatch/config"
	"github.com/katalvlaran/otmatch/cost"
	"github.com/katalvlaran/otmatch/transport"
)

const sample = `
primary_dataset_path: dina/usdina{year}.csv
secondary_dataset_path: cps/cps{year}.csv
tertiary_dataset_path: scf/scf{year}.csv
primary_max_year: 2019
tertiary_max_year: 2019
tertiary_min_year: 1989
stratification_fields: [married, old, employed]
variable_correspondence_stage1:
  dina_wage: cps_wage
  dina_pens: cps_pens
  dina_bus: cps_bus
variable_correspondence_stage2:
  - {source: dina_wage, target: scf_wage}
  - {source: dina_kg, target: scf_kg}
output_path: match/match-{year}.csv
workers: 4
logging:
  level: debug
`

func TestParseKeepsCorrespondenceOrder(t *testing.T) {
	cfg, err := config.Parse([]byte(sample))
	require.NoError(t, err)

	require.Equal(t, config.Correspondence{
		{Source: "dina_wage", Target: "cps_wage"},
		{Source: "dina_pens", Target: "cps_pens"},
		{Source: "dina_bus", Target: "cps_bus"},
	}, cfg.VariableCorrespondenceStage1)
	require.Equal(t, []string{"dina_wage", "dina_kg"}, cfg.VariableCorrespondenceStage2.Cost().Sources())
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "csv", cfg.OutputFormat, "default kept")
	require.Equal(t, "dina", cfg.PrimaryName)
	require.Equal(t, transport.KindNetworkSimplex, cfg.Solver, "default solver")
}

func TestResolveAppliesYearRules(t *testing.T) {
	cfg, err := config.Parse([]byte(sample))
	require.NoError(t, err)

	run, err := cfg.Resolve(2021)
	require.NoError(t, err)
	require.Equal(t, "dina/usdina2019.csv", run.Primary.Path, "primary clamped to its last vintage")
	require.Equal(t, "cps/cps2021.csv", run.Secondary.Path)
	require.True(t, run.ThreeWay())
	require.Equal(t, "scf/scf2019.csv", run.Tertiary.Path)
	require.Equal(t, "match/match-2021.csv", run.OutputPath)
	require.Equal(t, []string{"dina_wage", "dina_pens", "dina_bus", "dina_kg"}, run.Primary.Schema.Variables)
	require.Equal(t, []string{"scf_wage", "scf_kg"}, run.Tertiary.Schema.Variables)
	require.Equal(t, []string{"married", "old", "employed"}, run.Primary.Schema.Strata)
	require.Equal(t, "id", run.Secondary.Schema.IDColumn)

	early, err := cfg.Resolve(1975)
	require.NoError(t, err)
	require.False(t, early.ThreeWay(), "no tertiary dataset before its first year")
	require.Nil(t, early.Stage2)
	require.Equal(t, []string{"dina_wage", "dina_pens", "dina_bus"}, early.Primary.Schema.Variables)
	require.Equal(t, "dina/usdina1975.csv", early.Primary.Path)

	_, err = cfg.Resolve(0)
	require.ErrorIs(t, err, config.ErrNoYear)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"missing paths": `stratification_fields: [a]
variable_correspondence_stage1: {x: y}
output_path: out.csv`,
		"no fields": `primary_dataset_path: a.csv
secondary_dataset_path: b.csv
variable_correspondence_stage1: {x: y}
output_path: out.csv`,
		"bad format": `primary_dataset_path: a.csv
secondary_dataset_path: b.csv
stratification_fields: [a]
variable_correspondence_stage1: {x: y}
output_path: out.csv
output_format: xlsx`,
		"unknown solver": `primary_dataset_path: a.csv
secondary_dataset_path: b.csv
stratification_fields: [a]
variable_correspondence_stage1: {x: y}
output_path: out.csv
solver: sinkhorn`,
		"tertiary without stage2": `primary_dataset_path: a.csv
secondary_dataset_path: b.csv
tertiary_dataset_path: c.csv
stratification_fields: [a]
variable_correspondence_stage1: {x: y}
output_path: out.csv`,
		"duplicate source": `primary_dataset_path: a.csv
secondary_dataset_path: b.csv
stratification_fields: [a]
variable_correspondence_stage1:
  - {source: x, target: y}
  - {source: x, target: z}
output_path: out.csv`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(doc))
			require.ErrorIs(t, err, config.ErrInvalid)
		})
	}

	_, err := config.Parse([]byte("unknown_key: 1\n"))
	require.Error(t, err)
	require.NotErrorIs(t, err, config.ErrInvalid, "unknown keys fail while decoding")
}

func TestLoadAppliesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otmatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	t.Setenv("OTMATCH_WORKERS", "8")
	t.Setenv("OTMATCH_OUTPUT_FORMAT", "parquet")
	t.Setenv("OTMATCH_VARIABLE_CORRESPONDENCE_STAGE1", "dina_wage:cps_wage, dina_int:cps_int")
	t.Setenv("OTMATCH_SUBSAMPLE_PRIMARY", "100")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Workers)
	require.Equal(t, "parquet", cfg.OutputFormat)
	require.Equal(t, 100, cfg.Subsample.Primary)
	require.Equal(t, cost.Correspondence{
		{Source: "dina_wage", Target: "cps_wage"},
		{Source: "dina_int", Target: "cps_int"},
	}, cfg.VariableCorrespondenceStage1.Cost())
	require.Equal(t, "dina/usdina{year}.csv", cfg.PrimaryDatasetPath, "file values survive when not overridden")

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadIgnoresUnprefixedEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otmatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	t.Setenv("WORKERS", "64")
	t.Setenv("OUTPUT_PATH", "/tmp/elsewhere.csv")
	t.Setenv("PRIMARY", "5")
	t.Setenv("LEVEL", "error")
	t.Setenv("SOLVER", "ssp")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, "match/match-{year}.csv", cfg.OutputPath)
	require.Equal(t, 0, cfg.Subsample.Primary)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, transport.KindNetworkSimplex, cfg.Solver)

	t.Setenv("OTMATCH_WORKERS", "16")
	t.Setenv("OTMATCH_LOGGING_LEVEL", "warn")
	t.Setenv("OTMATCH_SOLVER", "ssp")
	t.Setenv("OTMATCH_SOLVER_ITERATION_CAP", "500")
	cfg, err = config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.Workers)
	require.Equal(t, "warn", cfg.Logging.Level)
	require.Equal(t, transport.KindSSP, cfg.Solver)
	require.Equal(t, 500, cfg.SolverIterationCap)

	run, err := cfg.Resolve(2019)
	require.NoError(t, err)
	require.Equal(t, transport.KindSSP, run.Solver)
	require.Equal(t, 500, run.IterationCap)
}

func TestCorrespondenceDecodeRejectsMalformed(t *testing.T) {
	var c config.Correspondence
	require.Error(t, c.Decode("dina_wage"))
	require.NoError(t, c.Decode("a:b,,c:d"))
	require.Len(t, c, 2)
}
