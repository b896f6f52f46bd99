package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Clark-Hu/movie-review/internal/auth"
	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/repository"
)

// RatingInput is the payload of a rate-or-update request.
type RatingInput struct {
	MovieID string `json:"movieId" validate:"required"`
	Rating  int    `json:"rating"`
}

// RatingResult reports the stored rating and the movie aggregate after it.
type RatingResult struct {
	Rating    domain.Rating
	Created   bool
	Aggregate domain.RatingAggregate
}

// RatingService implements rate-or-update, rating deletion and listing.
type RatingService struct {
	ratings repository.Ratings
	movies  repository.Movies
	users   repository.Users
	engine  *AggregateEngine
	logger  *log.Logger
}

// Submit stores caller's rating of a movie, replacing any earlier rating by
// the same user, then recomputes the movie aggregate.
func (s *RatingService) Submit(ctx context.Context, caller auth.Identity, in RatingInput) (RatingResult, error) {
	if err := requireAuthenticated(caller); err != nil {
		return RatingResult{}, err
	}
	in.MovieID = strings.TrimSpace(in.MovieID)
	if err := validateInput(in); err != nil {
		return RatingResult{}, err
	}
	if !domain.ValidRating(in.Rating) {
		return RatingResult{}, domain.InvalidInput("rating must be an integer between %d and %d", domain.MinRating, domain.MaxRating)
	}

	if _, err := s.movies.GetByID(ctx, in.MovieID); err != nil {
		return RatingResult{}, notFoundOr(err, "load movie", "movie not found")
	}

	stored, created, err := s.ratings.Upsert(ctx, domain.Rating{
		ID:      newID(),
		UserID:  caller.UserID,
		MovieID: in.MovieID,
		Value:   in.Rating,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUnknownUser) {
			return RatingResult{}, staleAccount()
		}
		return RatingResult{}, notFoundOr(err, "upsert rating", "movie not found")
	}

	agg, err := s.engine.Recompute(ctx, in.MovieID)
	if err != nil {
		return RatingResult{}, err
	}
	return RatingResult{Rating: stored, Created: created, Aggregate: agg}, nil
}

// Delete removes a rating. Only the user who made it may delete it; admins
// get no override.
func (s *RatingService) Delete(ctx context.Context, caller auth.Identity, ratingID string) error {
	if err := requireAuthenticated(caller); err != nil {
		return err
	}
	rating, err := s.ratings.GetByID(ctx, ratingID)
	if err != nil {
		return notFoundOr(err, "load rating", "rating not found")
	}
	if !caller.IsOwner(rating.UserID) {
		return domain.Forbidden("you can only delete your own ratings")
	}
	if err := s.ratings.Delete(ctx, rating.ID); err != nil {
		return notFoundOr(err, "delete rating", "rating not found")
	}
	if _, err := s.engine.Recompute(ctx, rating.MovieID); err != nil {
		return err
	}
	return nil
}

// List returns a movie's ratings with their authors' display names.
func (s *RatingService) List(ctx context.Context, movieID string) ([]domain.RatingWithOwner, error) {
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return nil, domain.InvalidInput("movieId is required")
	}
	ratings, err := s.ratings.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	if len(ratings) == 0 {
		return []domain.RatingWithOwner{}, nil
	}

	ids := make([]string, 0, len(ratings))
	seen := make(map[string]struct{}, len(ratings))
	for _, r := range ratings {
		if _, ok := seen[r.UserID]; !ok {
			seen[r.UserID] = struct{}{}
			ids = append(ids, r.UserID)
		}
	}
	names, err := s.users.NamesByID(ctx, ids)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("resolve rating owners: %w", err)
	}

	out := make([]domain.RatingWithOwner, len(ratings))
	for i, r := range ratings {
		out[i] = domain.RatingWithOwner{Rating: r, OwnerName: names[r.UserID]}
	}
	return out, nil
}
