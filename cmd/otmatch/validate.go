package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/otmatch/cell"
	"github.com/katalvlaran/otmatch/dataset"
	"github.com/katalvlaran/otmatch/engine"
	"github.com/katalvlaran/otmatch/transport"
)

// newValidateCmd checks the configuration and dataset schemas and reports how
// the cells align, without solving anything.
func newValidateCmd() *cobra.Command {
	var opts commonOptions
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check configuration, dataset schemas and cell alignment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, run, err := opts.resolve()
			if err != nil {
				return err
			}
			log, _, err := newLogger(cfg.Logging)
			if err != nil {
				return withCode(exitFatal, fmt.Errorf("logger: %w", err))
			}
			defer func() { _ = log.Sync() }()

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
			if err = eng.Validate(in); err != nil {
				return withCode(exitFatal, err)
			}

			parts := make([]*cell.Cells, 0, 3)
			for _, ds := range []*dataset.Dataset{in.Primary, in.Secondary, in.Tertiary} {
				if ds == nil {
					continue
				}
				p, err := cell.Partition(ds, run.Fields)
				if err != nil {
					return withCode(exitFatal, err)
				}
				parts = append(parts, p)
			}
			aligned, err := cell.Align(parts...)
			if err != nil {
				return withCode(exitFatal, err)
			}
			var gaps int
			for _, al := range aligned {
				if !al.Complete() {
					gaps++
					log.Warn("cell alignment gap", zap.Stringer("cell", al.Key))
				}
			}

			out := cmd.OutOrStdout()
			for _, p := range parts {
				fmt.Fprintf(out, "%s: %d records in %d cells\n", p.Dataset().Name, p.Dataset().Len(), p.Len())
			}
			fmt.Fprintf(out, "%d aligned cells, %d with gaps\n", len(aligned), gaps)

			return nil
		},
	}
	opts.register(cmd)

	return cmd
}
