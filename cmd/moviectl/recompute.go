package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/movie-review/internal/service"
)

// NewRecomputeCommand creates the recompute command.
func NewRecomputeCommand(rootOpts *RootOptions) *cobra.Command {
	var movieID string

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute movie rating aggregates from stored ratings",
		Long: `Recompute averageRating and numberOfRatings from the stored ratings.

Use after editing ratings directly in the store. Without --movie every
movie is repaired.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ctx, cancel, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer cancel()
			defer s.Close()

			if movieID != "" {
				if _, err := s.svc.Movies.Get(ctx, service.ByID(movieID)); err != nil {
					return fmt.Errorf("movie %s: %w", movieID, err)
				}
				agg, err := s.svc.Aggregates.Recompute(ctx, movieID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "movie %s: average %.1f over %d ratings\n", movieID, agg.Average, agg.Count)
				return nil
			}

			n, err := s.svc.Aggregates.RecomputeAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recomputed %d movies\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&movieID, "movie", "", "only recompute this movie ID")
	return cmd
}
