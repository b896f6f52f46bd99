package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/repository"
)

// AggregateEngine recomputes a movie's derived rating fields from the full
// set of its ratings. Values are always recomputed, never incremented.
type AggregateEngine struct {
	ratings repository.Ratings
	movies  repository.Movies
	logger  *log.Logger
}

// Recompute reads every rating of movieID and stores the resulting average
// and count on the movie. A movie that no longer exists is logged and
// otherwise ignored; the computed aggregate is still returned.
func (e *AggregateEngine) Recompute(ctx context.Context, movieID string) (domain.RatingAggregate, error) {
	ratings, err := e.ratings.ListByMovie(ctx, movieID)
	if err != nil {
		return domain.RatingAggregate{}, fmt.Errorf("list ratings: %w", err)
	}
	values := make([]int, len(ratings))
	for i, r := range ratings {
		values[i] = r.Value
	}
	agg := domain.AggregateRatings(values)

	if err := e.movies.UpdateAggregate(ctx, movieID, agg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			e.logger.Printf("aggregates: movie %s vanished before its aggregate could be stored", movieID)
			return agg, nil
		}
		return domain.RatingAggregate{}, fmt.Errorf("store aggregate: %w", err)
	}
	return agg, nil
}

// RecomputeAll repairs the aggregate of every movie and reports how many
// were processed.
func (e *AggregateEngine) RecomputeAll(ctx context.Context) (int, error) {
	movies, err := e.movies.List(ctx, repository.MovieListFilters{SortBy: repository.SortByTitle})
	if err != nil {
		return 0, fmt.Errorf("list movies: %w", err)
	}
	for i, m := range movies {
		if _, err := e.Recompute(ctx, m.ID); err != nil {
			return i, fmt.Errorf("recompute %s: %w", m.ID, err)
		}
	}
	return len(movies), nil
}
