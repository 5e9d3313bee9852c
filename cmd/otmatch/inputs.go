package main

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/otmatch/config"
	"github.com/katalvlaran/otmatch/dataset"
	"github.com/katalvlaran/otmatch/engine"
)

// loadInputs reads every dataset the run needs.
func loadInputs(run *config.Run, log *zap.Logger) (engine.Inputs, error) {
	var in engine.Inputs
	load := func(src config.Source) (*dataset.Dataset, error) {
		ds, err := dataset.LoadCSV(src.Path, src.Schema)
		if err != nil {
			return nil, err
		}
		log.Info("dataset loaded",
			zap.String("dataset", ds.Name),
			zap.String("path", src.Path),
			zap.Int("year", src.Year),
			zap.Int("records", ds.Len()),
		)

		return ds, nil
	}

	var err error
	if in.Primary, err = load(run.Primary); err != nil {
		return in, err
	}
	if in.Secondary, err = load(run.Secondary); err != nil {
		return in, err
	}
	if run.ThreeWay() {
		if in.Tertiary, err = load(*run.Tertiary); err != nil {
			return in, err
		}
	}

	return in, nil
}

func engineOptions(run *config.Run) engine.Options {
	return engine.Options{
		Fields:   run.Fields,
		Stage1:   run.Stage1,
		Stage2:   run.Stage2,
		Workers:  run.Workers,
		FailFast: run.FailFast,
		Subsample: engine.Subsample{
			Primary:   run.Subsample.Primary,
			Secondary: run.Subsample.Secondary,
			Tertiary:  run.Subsample.Tertiary,
			Seed:      run.Subsample.Seed,
		},
	}
}
