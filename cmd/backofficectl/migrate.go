package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jar-backoffice/internal/platform/persistence"
)

var (
	runMigrations      = persistence.RunMigrations
	rollbackMigrations = persistence.RollbackMigrations
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back Postgres migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := runMigrations(cfg.Postgres.URL, cfg.Postgres.MigrationsPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, one step unless a count is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}

			cfg, err := opts.config()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := rollbackMigrations(cfg.Postgres.URL, cfg.Postgres.MigrationsPath, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	})

	return cmd
}
