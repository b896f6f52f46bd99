package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-review/internal/auth"
	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/repository"
)

func TestAddMovieValidation(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ann")

	tests := []struct {
		name   string
		caller auth.Identity
		mutate func(*MovieInput)
		kind   error
	}{
		{"anonymous", auth.Identity{}, func(*MovieInput) {}, domain.ErrUnauthorized},
		{"not-admin", u, func(*MovieInput) {}, domain.ErrForbidden},
		{"blank-title", f.admin, func(in *MovieInput) { in.Title = "  " }, domain.ErrInvalidInput},
		{"no-cast", f.admin, func(in *MovieInput) { in.Cast = nil }, domain.ErrInvalidInput},
		{"blank-cast-member", f.admin, func(in *MovieInput) { in.Cast = []string{"a", " "} }, domain.ErrInvalidInput},
		{"bad-poster", f.admin, func(in *MovieInput) { in.PosterURL = "ftp://x/y" }, domain.ErrInvalidInput},
		{"bad-date", f.admin, func(in *MovieInput) { in.ReleaseDate = "16/07/2010" }, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := movieInput("Inception")
			tt.mutate(&in)
			_, err := f.svc.Movies.Add(f.ctx, tt.caller, in)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestAddMovieDuplicateTitle(t *testing.T) {
	f := newFixture(t)
	m := f.movie(t, "Inception")
	assert.Equal(t, time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC), m.ReleaseDate)
	assert.Zero(t, m.NumberOfRatings)

	_, err := f.svc.Movies.Add(f.ctx, f.admin, movieInput("Inception"))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestParseReleaseDate(t *testing.T) {
	got, err := ParseReleaseDate("2010-07-16T23:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseReleaseDate("yesterday")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateMovieByIDOrTitle(t *testing.T) {
	f := newFixture(t)
	m := f.movie(t, "Inception")
	u := f.user(t, "ann")
	_, err := f.svc.Ratings.Submit(f.ctx, u, RatingInput{MovieID: m.ID, Rating: 4})
	require.NoError(t, err)

	in := movieInput("Inception")
	in.Director = "C. Nolan"
	updated, err := f.svc.Movies.Update(f.ctx, f.admin, ByTitle("Inception"), in)
	require.NoError(t, err)
	assert.Equal(t, m.ID, updated.ID)
	assert.Equal(t, "C. Nolan", updated.Director)
	assert.EqualValues(t, 1, updated.NumberOfRatings)

	in.Title = "Inception (Director's Cut)"
	updated, err = f.svc.Movies.Update(f.ctx, f.admin, ByID(m.ID), in)
	require.NoError(t, err)
	assert.Equal(t, in.Title, updated.Title)

	_, err = f.svc.Movies.Update(f.ctx, f.admin, ByTitle("Inception"), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.Movies.Update(f.ctx, u, ByID(m.ID), in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.movie(t, "Tenet")
	in.Title = "Tenet"
	_, err = f.svc.Movies.Update(f.ctx, f.admin, ByID(m.ID), in)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeleteMovieCascades(t *testing.T) {
	f := newFixture(t)
	keep := f.movie(t, "Tenet")
	doomed := f.movie(t, "Inception")
	u := f.user(t, "ann")
	for _, id := range []string{keep.ID, doomed.ID} {
		_, err := f.svc.Ratings.Submit(f.ctx, u, RatingInput{MovieID: id, Rating: 5})
		require.NoError(t, err)
		_, err = f.svc.Comments.Add(f.ctx, u, CommentInput{MovieID: id, Content: "nice"})
		require.NoError(t, err)
	}

	assert.ErrorIs(t, f.svc.Movies.Delete(f.ctx, u, ByTitle("Inception")), domain.ErrForbidden)
	assert.ErrorIs(t, f.svc.Movies.Delete(f.ctx, f.admin, ByTitle("Missing")), domain.ErrNotFound)

	require.NoError(t, f.svc.Movies.Delete(f.ctx, f.admin, ByTitle("Inception")))

	_, err := f.svc.Movies.Get(f.ctx, ByID(doomed.ID))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	ratings, err := f.repo.Ratings.ListByMovie(f.ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, ratings)
	comments, err := f.repo.Comments.ListByMovie(f.ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	ratings, err = f.repo.Ratings.ListByMovie(f.ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, ratings, 1)
}

// failingMovies makes Delete fail so the cascade must roll back.
type failingMovies struct {
	repository.Movies
}

func (failingMovies) Delete(context.Context, string) error {
	return errors.New("disk on fire")
}

func TestDeleteMovieRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	m := f.movie(t, "Inception")
	u := f.user(t, "ann")
	_, err := f.svc.Ratings.Submit(f.ctx, u, RatingInput{MovieID: m.ID, Rating: 3})
	require.NoError(t, err)

	f.svc.Movies.movies = failingMovies{Movies: f.repo.Movies}
	err = f.svc.Movies.Delete(f.ctx, f.admin, ByID(m.ID))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)

	ratings, err := f.repo.Ratings.ListByMovie(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, ratings, 1)
}

func TestListMoviesValidatesFilters(t *testing.T) {
	f := newFixture(t)
	f.movie(t, "Inception")

	_, err := f.svc.Movies.List(f.ctx, repository.MovieListFilters{SortBy: "director"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.Movies.List(f.ctx, repository.MovieListFilters{Limit: 101})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.Movies.List(f.ctx, repository.MovieListFilters{Offset: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := f.svc.Movies.List(f.ctx, repository.MovieListFilters{Search: "incep"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
