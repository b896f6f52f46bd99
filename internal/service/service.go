// Package service implements the movie-review operations on top of the
// repository contracts: accounts, movies, ratings, comments and contacts,
// plus the rating aggregation engine that keeps movie aggregates in step
// with their ratings.
package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/Clark-Hu/movie-review/internal/auth"
	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/repository"
)

// Options carries the collaborators shared by the services.
type Options struct {
	Tokens           *auth.TokenManager
	Hasher           auth.PasswordHasher
	AllowAdminSignup bool
	Logger           *log.Logger
}

// Services groups every operation exposed to the transport layer.
type Services struct {
	Accounts   *AccountService
	Movies     *MovieService
	Ratings    *RatingService
	Comments   *CommentService
	Contacts   *ContactService
	Aggregates *AggregateEngine
}

// New wires the services around repo.
func New(repo *repository.Repository, opts Options) *Services {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	engine := &AggregateEngine{ratings: repo.Ratings, movies: repo.Movies, logger: logger}
	return &Services{
		Accounts: &AccountService{
			users:            repo.Users,
			tokens:           opts.Tokens,
			hasher:           opts.Hasher,
			allowAdminSignup: opts.AllowAdminSignup,
			logger:           logger,
		},
		Movies: &MovieService{
			movies:   repo.Movies,
			ratings:  repo.Ratings,
			comments: repo.Comments,
			tx:       repo.Tx,
			logger:   logger,
		},
		Ratings: &RatingService{
			ratings: repo.Ratings,
			movies:  repo.Movies,
			users:   repo.Users,
			engine:  engine,
			logger:  logger,
		},
		Comments: &CommentService{
			comments: repo.Comments,
			movies:   repo.Movies,
			logger:   logger,
		},
		Contacts:   &ContactService{contacts: repo.Contacts},
		Aggregates: engine,
	}
}

// newID returns a time-ordered identifier for a new record.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func requireAuthenticated(caller auth.Identity) error {
	if !caller.Authenticated() {
		return domain.Unauthorized("authentication required")
	}
	return nil
}

func requireAdmin(caller auth.Identity) error {
	if err := requireAuthenticated(caller); err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return domain.Forbidden("admin role required")
	}
	return nil
}

// staleAccount reports a valid token whose user record is gone.
func staleAccount() error {
	return domain.Unauthorized("account no longer exists; sign in again")
}

// notFoundOr maps repository.ErrNotFound to a NotFound error and wraps
// anything else as an internal failure of op.
func notFoundOr(err error, op, format string, args ...interface{}) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFound(format, args...)
	}
	return fmt.Errorf("%s: %w", op, err)
}
