package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/movie-review/internal/config"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ctx, cancel, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer cancel()
			defer s.Close()

			if s.backend.Postgres == nil {
				return fmt.Errorf("migrate requires STORE_DRIVER=%s, got %s", config.DriverPostgres, s.backend.Driver)
			}
			applied, err := s.backend.Postgres.Migrate(ctx)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}
}
