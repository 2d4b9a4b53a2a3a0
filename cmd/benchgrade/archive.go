package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/benchgrade/benchgrade/internal/archive"
)

func newArchiveCmd(g *globalOpts) *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage the Postgres run archive",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres URL (default: archive.database_url)")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending archive migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), g)
			if err != nil {
				return err
			}
			db, err := archive.Open(cmd.Context(), firstNonEmpty(databaseURL, a.cfg.Archive.DatabaseURL))
			if err != nil {
				return err
			}
			defer db.Close()

			if err := archive.AutoMigrate(db); err != nil {
				return err
			}
			a.logger.Info("archive schema up to date")
			return nil
		},
	}

	var limit int
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent archived runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.OutOrStdout(), cmd.ErrOrStderr(), g)
			if err != nil {
				return err
			}
			db, err := archive.Open(cmd.Context(), firstNonEmpty(databaseURL, a.cfg.Archive.DatabaseURL))
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := archive.NewService(db).ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Fprintf(a.stdout, "%s\t%s\t%-9s\t%d buildings\n",
					r.ID, r.StartedAt.Format(time.RFC3339), r.Status, r.Buildings)
			}
			return nil
		},
	}
	runsCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")

	cmd.AddCommand(migrateCmd, runsCmd)
	return cmd
}
