package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/otmatch/config"
)

// commonOptions are the flags shared by run and validate.
type commonOptions struct {
	configPath string
	year       int
	workers    int
	output     string
	format     string
	solver     string
}

func (o *commonOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.configPath, "config", "c", "", "YAML configuration file (required)")
	cmd.Flags().IntVarP(&o.year, "year", "y", 0, "Run year substituted into {year} paths (default: config year)")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "Cells matched concurrently (default: config workers)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output path override")
	cmd.Flags().StringVar(&o.format, "format", "", "Output format override: csv or parquet")
	cmd.Flags().StringVar(&o.solver, "solver", "", "Transport solver override: simplex or ssp")
	_ = cmd.MarkFlagRequired("config")
}

// resolve loads the configuration, applies flag overrides and resolves the
// run for the requested year.
func (o *commonOptions) resolve() (*config.Config, *config.Run, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, withCode(exitFatal, err)
	}
	if o.workers > 0 {
		cfg.Workers = o.workers
	}
	if o.output != "" {
		cfg.OutputPath = o.output
	}
	if o.format != "" {
		cfg.OutputFormat = o.format
	}
	if o.solver != "" {
		cfg.Solver = o.solver
	}
	if err = cfg.Validate(); err != nil {
		return nil, nil, withCode(exitUsage, err)
	}
	run, err := cfg.Resolve(o.year)
	if err != nil {
		if errors.Is(err, config.ErrNoYear) {
			return nil, nil, withCode(exitUsage, err)
		}
		return nil, nil, withCode(exitFatal, err)
	}

	return cfg, run, nil
}
