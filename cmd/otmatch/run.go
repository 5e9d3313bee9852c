package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/otmatch/config"
	"github.com/katalvlaran/otmatch/engine"
	"github.com/katalvlaran/otmatch/output"
	"github.com/katalvlaran/otmatch/transport"
)

func newRunCmd() *cobra.Command {
	var opts commonOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Match the configured datasets and write the correspondence table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, run, err := opts.resolve()
			if err != nil {
				return err
			}
			log, runID, err := newLogger(cfg.Logging)
			if err != nil {
				return withCode(exitFatal, fmt.Errorf("logger: %w", err))
			}
			defer func() { _ = log.Sync() }()

			return runMatch(cmd, cfg, run, log, runID)
		},
	}
	opts.register(cmd)

	return cmd
}

func runMatch(cmd *cobra.Command, cfg *config.Config, run *config.Run, log *zap.Logger, runID string) error {
	log.Info("run started",
		zap.Int("year", run.Year),
		zap.Bool("three_way", run.ThreeWay()),
		zap.Strings("fields", run.Fields),
		zap.Int("workers", run.Workers),
		zap.String("solver", run.Solver),
	)

	in, err := loadInputs(run, log)
	if err != nil {
		return withCode(exitFatal, err)
	}
	solver, err := transport.New(run.Solver, transport.WithMaxIterations(run.IterationCap))
	if err != nil {
		return withCode(exitFatal, err)
	}
	eng, err := engine.New(solver, engineOptions(run), engine.WithLogger(log))
	if err != nil {
		return withCode(exitFatal, err)
	}

	rep, err := eng.Run(cmd.Context(), in)
	if err != nil {
		log.Error("run aborted", zap.Error(err))
		return withCode(exitFatal, err)
	}

	tertiary := ""
	if run.ThreeWay() {
		tertiary = cfg.TertiaryName
	}
	sink, err := output.Open(run.OutputPath, run.OutputFormat, output.ColumnsFor(cfg.PrimaryName, cfg.SecondaryName, tertiary))
	if err != nil {
		return withCode(exitFatal, err)
	}
	if err = sink.Write(rep.Entries); err != nil {
		_ = sink.Close()
		return withCode(exitFatal, err)
	}
	if err = sink.Close(); err != nil {
		return withCode(exitFatal, err)
	}
	log.Info("table written", zap.String("path", run.OutputPath), zap.String("format", run.OutputFormat), zap.Int("entries", len(rep.Entries)))

	if run.MetricsPath != "" {
		if err = eng.Metrics().WriteTextfile(run.MetricsPath); err != nil {
			return withCode(exitFatal, err)
		}
	}

	for _, c := range rep.Skipped {
		log.Warn("skipped cell", zap.Stringer("cell", c.Key), zap.Strings("missing", c.Missing), zap.String("dataset", c.Dataset), zap.Error(c.Err))
	}
	for _, c := range rep.Failed {
		log.Warn("failed cell", zap.Stringer("cell", c.Key), zap.Stringer("stage", c.Stage), zap.Error(c.Err))
	}
	printSummary(cmd.OutOrStdout(), runID, run, rep)

	return nil
}

func printSummary(w io.Writer, runID string, run *config.Run, rep *engine.Report) {
	fmt.Fprintf(w, "run %s (year %d): %d cells, %d matched, %d skipped, %d failed\n",
		runID, run.Year, rep.Cells, rep.Matched, len(rep.Skipped), len(rep.Failed))
	fmt.Fprintf(w, "%d entries, mass %.6g -> %s\n", len(rep.Entries), rep.Mass(), run.OutputPath)
}
