package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-review/internal/domain"
)

func TestRecomputeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	m := f.movie(t, "Inception")
	for i, v := range []int{5, 4, 4} {
		_, _, err := f.repo.Ratings.Upsert(f.ctx, domain.Rating{
			ID: newID(), UserID: string(rune('a' + i)), MovieID: m.ID, Value: v,
		})
		require.NoError(t, err)
	}

	first, err := f.svc.Aggregates.Recompute(f.ctx, m.ID)
	require.NoError(t, err)
	stored := f.loadMovie(t, m.ID)

	second, err := f.svc.Aggregates.Recompute(f.ctx, m.ID)
	require.NoError(t, err)
	again := f.loadMovie(t, m.ID)

	assert.Equal(t, first, second)
	assert.Equal(t, 4.3, stored.AverageRating)
	assert.EqualValues(t, 3, stored.NumberOfRatings)
	assert.Equal(t, stored.AverageRating, again.AverageRating)
	assert.Equal(t, stored.NumberOfRatings, again.NumberOfRatings)
}

func TestRecomputeEmptySetResetsAggregate(t *testing.T) {
	f := newFixture(t)
	m := f.movie(t, "Inception")
	require.NoError(t, f.repo.Movies.UpdateAggregate(f.ctx, m.ID, domain.RatingAggregate{Average: 3, Count: 9}))

	agg, err := f.svc.Aggregates.Recompute(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingAggregate{}, agg)

	stored := f.loadMovie(t, m.ID)
	assert.Zero(t, stored.AverageRating)
	assert.Zero(t, stored.NumberOfRatings)
}

func TestRecomputeMissingMovieIsSwallowed(t *testing.T) {
	f := newFixture(t)
	agg, err := f.svc.Aggregates.Recompute(f.ctx, "gone")
	require.NoError(t, err)
	assert.Equal(t, domain.RatingAggregate{}, agg)
}

func TestRecomputeAll(t *testing.T) {
	f := newFixture(t)
	a := f.movie(t, "A")
	b := f.movie(t, "B")
	_, _, err := f.repo.Ratings.Upsert(f.ctx, domain.Rating{ID: newID(), UserID: "u", MovieID: a.ID, Value: 2})
	require.NoError(t, err)

	n, err := f.svc.Aggregates.RecomputeAll(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2.0, f.loadMovie(t, a.ID).AverageRating)
	assert.Zero(t, f.loadMovie(t, b.ID).NumberOfRatings)
}
