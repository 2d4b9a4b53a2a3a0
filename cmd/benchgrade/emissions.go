package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/benchgrade/benchgrade/pkg/benchmark"
	"github.com/benchgrade/benchgrade/pkg/emissions"
)

func newEmissionsCmd(g *globalOpts) *cobra.Command {
	var factorsFile string

	cmd := &cobra.Command{
		Use:   "emissions",
		Short: "Manage carbon intensity factors and electricity emissions",
	}
	cmd.PersistentFlags().StringVar(&factorsFile, "factors", "", "Carbon intensity factor file (default: emissions.factors_file)")

	path := func(a *app) string {
		return firstNonEmpty(factorsFile, a.cfg.Emissions.FactorsFile)
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the carbon intensity factor of every year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), g)
			if err != nil {
				return err
			}
			f, err := emissions.LoadFactors(path(a))
			if err != nil {
				return err
			}
			for _, year := range f.Years() {
				v, _ := f.Get(year)
				fmt.Fprintf(a.stdout, "%d\t%s g CO2/kWh\n", year, strconv.FormatFloat(v, 'f', -1, 64))
			}
			return nil
		},
	}

	setFactor := &cobra.Command{
		Use:   "set-factor YEAR GRAMS_PER_KWH",
		Short: "Change the carbon intensity of a configured year and save the file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q: %w", args[0], err)
			}
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid carbon intensity %q: %w", args[1], err)
			}

			a, err := newApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), g)
			if err != nil {
				return err
			}
			p := path(a)
			f, err := emissions.LoadFactors(p)
			if err != nil {
				return err
			}
			if err := f.Set(year, value); err != nil {
				return err
			}
			if err := emissions.SaveFactors(p, f); err != nil {
				return err
			}
			a.logger.Info("carbon intensity updated", "year", year, "value", value, "file", p)
			return nil
		},
	}

	compute := &cobra.Command{
		Use:   "compute",
		Short: "Add the ElectricityEmissions column to the latest-year table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), g)
			if err != nil {
				return err
			}
			f, err := emissions.LoadFactors(path(a))
			if err != nil {
				return err
			}
			tablePath := a.workspace().BenchmarkPath()
			t, _, err := benchmark.LoadCSV(tablePath)
			if err != nil {
				return err
			}
			skipped := f.Apply(t)
			if err := benchmark.SaveCSV(tablePath, t); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s: %d rows, %d without emissions\n", tablePath, len(t.Records), skipped)
			return nil
		},
	}

	cmd.AddCommand(show, setFactor, compute)
	return cmd
}
