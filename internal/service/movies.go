package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Clark-Hu/movie-review/internal/auth"
	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/repository"
)

// DateLayout is the calendar-date form of a release date.
const DateLayout = "2006-01-02"

// MovieInput carries every editable movie attribute. Create and update both
// require the full set.
type MovieInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	ReleaseDate string   `json:"releaseDate" validate:"required"`
	Genre       string   `json:"genre" validate:"required"`
	Director    string   `json:"director" validate:"required"`
	Cast        []string `json:"cast" validate:"required,min=1,dive,required"`
	PosterURL   string   `json:"posterUrl" validate:"required,http_url"`
	TrailerURL  string   `json:"trailerUrl" validate:"required,http_url"`
}

// attributes trims, validates and converts in.
func (in MovieInput) attributes() (domain.MovieAttributes, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ReleaseDate = strings.TrimSpace(in.ReleaseDate)
	in.Genre = strings.TrimSpace(in.Genre)
	in.Director = strings.TrimSpace(in.Director)
	in.Cast = trimAll(in.Cast)
	in.PosterURL = strings.TrimSpace(in.PosterURL)
	in.TrailerURL = strings.TrimSpace(in.TrailerURL)
	if err := validateInput(in); err != nil {
		return domain.MovieAttributes{}, err
	}
	release, err := ParseReleaseDate(in.ReleaseDate)
	if err != nil {
		return domain.MovieAttributes{}, err
	}
	return domain.MovieAttributes{
		Title:       in.Title,
		Description: in.Description,
		ReleaseDate: release,
		Genre:       in.Genre,
		Director:    in.Director,
		Cast:        in.Cast,
		PosterURL:   in.PosterURL,
		TrailerURL:  in.TrailerURL,
	}, nil
}

// ParseReleaseDate accepts YYYY-MM-DD or RFC 3339 and returns the UTC date.
func ParseReleaseDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, domain.InvalidInput("releaseDate must be YYYY-MM-DD or RFC 3339")
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// MovieKey selects a movie either by identifier or by exact title.
type MovieKey struct {
	ID    string
	Title string
}

func ByID(id string) MovieKey { return MovieKey{ID: id} }

func ByTitle(title string) MovieKey { return MovieKey{Title: title} }

func (k MovieKey) String() string {
	if k.ID != "" {
		return "id " + k.ID
	}
	return fmt.Sprintf("title %q", k.Title)
}

// MovieService manages the movie lifecycle.
type MovieService struct {
	movies   repository.Movies
	ratings  repository.Ratings
	comments repository.Comments
	tx       repository.Transactor
	logger   *log.Logger
}

// Add creates a movie. Admin only.
func (s *MovieService) Add(ctx context.Context, caller auth.Identity, in MovieInput) (domain.Movie, error) {
	if err := requireAdmin(caller); err != nil {
		return domain.Movie{}, err
	}
	attrs, err := in.attributes()
	if err != nil {
		return domain.Movie{}, err
	}
	movie := domain.Movie{ID: newID()}
	movie.Apply(attrs)

	created, err := s.movies.Create(ctx, movie)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Movie{}, domain.Conflict("a movie titled %q already exists", attrs.Title)
		}
		return domain.Movie{}, fmt.Errorf("create movie: %w", err)
	}
	s.logger.Printf("movies: %s created %q (%s)", caller.UserID, created.Title, created.ID)
	return created, nil
}

// Get returns the movie identified by key.
func (s *MovieService) Get(ctx context.Context, key MovieKey) (domain.Movie, error) {
	var (
		movie domain.Movie
		err   error
	)
	switch {
	case strings.TrimSpace(key.ID) != "":
		movie, err = s.movies.GetByID(ctx, strings.TrimSpace(key.ID))
	case strings.TrimSpace(key.Title) != "":
		movie, err = s.movies.GetByTitle(ctx, strings.TrimSpace(key.Title))
	default:
		return domain.Movie{}, domain.InvalidInput("movie id or title is required")
	}
	if err != nil {
		return domain.Movie{}, notFoundOr(err, "load movie", "movie not found")
	}
	return movie, nil
}

// List returns movies matching filters.
func (s *MovieService) List(ctx context.Context, filters repository.MovieListFilters) ([]domain.Movie, error) {
	if filters.SortBy == "" {
		filters.SortBy = repository.SortByReleaseDate
	}
	if !repository.ValidSortField(filters.SortBy) {
		return nil, domain.InvalidInput("sortBy must be one of %s, %s, %s",
			repository.SortByTitle, repository.SortByReleaseDate, repository.SortByAverageRating)
	}
	if filters.Limit < 0 || filters.Limit > repository.MaxListLimit {
		return nil, domain.InvalidInput("limit must be between 1 and %d", repository.MaxListLimit)
	}
	if filters.Offset < 0 {
		return nil, domain.InvalidInput("offset must be non-negative")
	}
	movies, err := s.movies.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// Update replaces every editable attribute of the movie selected by key.
// Admin only. Derived rating fields are untouched.
func (s *MovieService) Update(ctx context.Context, caller auth.Identity, key MovieKey, in MovieInput) (domain.Movie, error) {
	if err := requireAdmin(caller); err != nil {
		return domain.Movie{}, err
	}
	attrs, err := in.attributes()
	if err != nil {
		return domain.Movie{}, err
	}
	current, err := s.Get(ctx, key)
	if err != nil {
		return domain.Movie{}, err
	}
	updated, err := s.movies.Replace(ctx, current.ID, attrs)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Movie{}, domain.Conflict("a movie titled %q already exists", attrs.Title)
		}
		return domain.Movie{}, notFoundOr(err, "replace movie", "movie not found")
	}
	return updated, nil
}

// Delete removes the movie selected by key together with its comments and
// ratings. Admin only. The steps share one transaction where the store
// supports it.
func (s *MovieService) Delete(ctx context.Context, caller auth.Identity, key MovieKey) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		movie, err := s.Get(ctx, key)
		if err != nil {
			return err
		}
		comments, err := s.comments.DeleteByMovie(ctx, movie.ID)
		if err != nil {
			return fmt.Errorf("delete comments of %s: %w", movie.ID, err)
		}
		ratings, err := s.ratings.DeleteByMovie(ctx, movie.ID)
		if err != nil {
			return fmt.Errorf("delete ratings of %s: %w", movie.ID, err)
		}
		if err := s.movies.Delete(ctx, movie.ID); err != nil {
			return notFoundOr(err, "delete movie", "movie not found")
		}
		s.logger.Printf("movies: %s deleted %q (%s) with %d comment(s) and %d rating(s)",
			caller.UserID, movie.Title, movie.ID, comments, ratings)
		return nil
	})
}
