package repository

import (
	"context"
	"errors"

	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/store"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a uniqueness constraint (title, email) was violated.
	ErrDuplicate = errors.New("repository: duplicate")
	// ErrUnknownUser indicates a rating or comment references a user that
	// does not exist.
	ErrUnknownUser = errors.New("repository: unknown user")
)

// Movies persists movie records.
type Movies interface {
	Create(ctx context.Context, movie domain.Movie) (domain.Movie, error)
	GetByID(ctx context.Context, id string) (domain.Movie, error)
	GetByTitle(ctx context.Context, title string) (domain.Movie, error)
	List(ctx context.Context, filters MovieListFilters) ([]domain.Movie, error)
	Replace(ctx context.Context, id string, attrs domain.MovieAttributes) (domain.Movie, error)
	UpdateAggregate(ctx context.Context, id string, agg domain.RatingAggregate) error
	Delete(ctx context.Context, id string) error
}

// Ratings persists per-user movie ratings; (UserID, MovieID) is unique.
type Ratings interface {
	// Upsert stores rating, overwriting the value of an existing rating for
	// the same user and movie. The bool reports whether a new record was made.
	Upsert(ctx context.Context, rating domain.Rating) (domain.Rating, bool, error)
	GetByID(ctx context.Context, id string) (domain.Rating, error)
	Get(ctx context.Context, movieID, userID string) (domain.Rating, error)
	ListByMovie(ctx context.Context, movieID string) ([]domain.Rating, error)
	Delete(ctx context.Context, id string) error
	DeleteByMovie(ctx context.Context, movieID string) (int64, error)
}

// Comments persists movie comments.
type Comments interface {
	Create(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	GetByID(ctx context.Context, id string) (domain.Comment, error)
	// ListByMovie returns comments newest first.
	ListByMovie(ctx context.Context, movieID string) ([]domain.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByMovie(ctx context.Context, movieID string) (int64, error)
}

// Users persists accounts. Emails are stored already normalized.
type Users interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	// NamesByID resolves display names; unknown ids are absent from the map.
	NamesByID(ctx context.Context, ids []string) (map[string]string, error)
}

// Contacts persists contact-form messages.
type Contacts interface {
	Create(ctx context.Context, contact domain.Contact) (domain.Contact, error)
	// List returns messages newest first.
	List(ctx context.Context) ([]domain.Contact, error)
}

// Transactor runs fn so that every repository call made with the ctx passed
// to fn commits or rolls back together, as far as the backing store allows.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Movies   Movies
	Ratings  Ratings
	Comments Comments
	Users    Users
	Contacts Contacts
	Tx       Transactor
}

// New constructs a Repository backed by the provided PostgreSQL store.
func New(st *store.Store) *Repository {
	return &Repository{
		Movies:   &MoviesRepository{st: st},
		Ratings:  &RatingsRepository{st: st},
		Comments: &CommentsRepository{st: st},
		Users:    &UsersRepository{st: st},
		Contacts: &ContactsRepository{st: st},
		Tx:       st,
	}
}
