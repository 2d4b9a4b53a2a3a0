package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benchgrade/benchgrade/internal/pipeline"
)

type runOpts struct {
	outputFmt     string
	withEmissions bool
	publish       bool
	archive       bool
}

func newRunCmd(g *globalOpts) *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every pipeline stage",
		Long: `Grades the historic table, merges the grades onto the latest-year table,
then writes rankings, anomalies, fines and statistics. Stops at the first
failing stage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), g)
			if err != nil {
				return err
			}
			return runStages(cmd.Context(), a, pipeline.DefaultStages(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.outputFmt, "output", "text", "Summary format: text or json")
	cmd.Flags().BoolVar(&opts.withEmissions, "emissions", false, "Add electricity emissions using the carbon intensity factors")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "Upload the artifacts after a successful run")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "Record the run and its grades in Postgres (also enabled by archive.enabled)")

	return cmd
}

func newStageCmd(g *globalOpts) *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "stage NAME...",
		Short: "Run selected pipeline stages",
		Long: fmt.Sprintf(`Runs only the named stages, in pipeline order. Stages read the tables
written by earlier ones, so they expect a previous full run.

Stages: %v`, pipeline.StageNames(pipeline.DefaultStages())),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := pipeline.Select(pipeline.DefaultStages(), args)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), g)
			if err != nil {
				return err
			}
			return runStages(cmd.Context(), a, stages, opts)
		},
	}

	cmd.Flags().StringVar(&opts.outputFmt, "output", "text", "Summary format: text or json")
	cmd.Flags().BoolVar(&opts.withEmissions, "emissions", false, "Add electricity emissions in the grade stage")

	return cmd
}

func runStages(ctx context.Context, a *app, stages []pipeline.Stage, opts runOpts) error {
	env, err := a.env(opts.withEmissions)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(env, stages)
	summary, runErr := runner.Run(ctx)

	if err := a.render(summary, opts.outputFmt); err != nil {
		return errors.Join(runErr, err)
	}

	if opts.archive || a.cfg.Archive.Enabled {
		if err := a.archiveRun(ctx, summary, runErr); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("archive: %w", err))
		}
	}

	if runErr == nil && opts.publish {
		keys, err := a.publishArtifacts(ctx)
		if err != nil {
			runErr = fmt.Errorf("publish: %w", err)
		} else {
			fmt.Fprintf(a.stderr, "Published %d artifacts\n", len(keys))
		}
	}

	a.pushMetrics(ctx)
	return runErr
}
