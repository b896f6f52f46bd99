package service

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-review/internal/auth"
	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/repository"
	"github.com/Clark-Hu/movie-review/internal/repository/memrepo"
)

type fixture struct {
	ctx   context.Context
	repo  *repository.Repository
	svc   *Services
	admin auth.Identity
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	repo := memrepo.New().Repository()
	svc := New(repo, Options{
		Tokens: tokens,
		Hasher: auth.NewPasswordHasher(4),
		Logger: log.New(io.Discard, "", 0),
	})
	return &fixture{
		ctx:   context.Background(),
		repo:  repo,
		svc:   svc,
		admin: auth.Identity{UserID: "admin-1", Name: "root", Role: domain.RoleAdmin},
	}
}

// user registers an account and returns the identity its token resolves to.
func (f *fixture) user(t testing.TB, name string) auth.Identity {
	t.Helper()
	u, err := f.svc.Accounts.Signup(f.ctx, SignupInput{
		Email: name + "@example.com", Password: "password123", Name: name,
	})
	require.NoError(t, err)
	return auth.Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func movieInput(title string) MovieInput {
	return MovieInput{
		Title:       title,
		Description: "A thief who steals corporate secrets.",
		ReleaseDate: "2010-07-16",
		Genre:       "Sci-Fi",
		Director:    "Christopher Nolan",
		Cast:        []string{"Leonardo DiCaprio", "Elliot Page"},
		PosterURL:   "https://img.example.com/inception.jpg",
		TrailerURL:  "https://video.example.com/inception",
	}
}

func (f *fixture) movie(t testing.TB, title string) domain.Movie {
	t.Helper()
	m, err := f.svc.Movies.Add(f.ctx, f.admin, movieInput(title))
	require.NoError(t, err)
	return m
}

func (f *fixture) loadMovie(t testing.TB, id string) domain.Movie {
	t.Helper()
	m, err := f.repo.Movies.GetByID(f.ctx, id)
	require.NoError(t, err)
	return m
}
