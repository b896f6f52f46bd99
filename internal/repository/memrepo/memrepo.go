// Package memrepo is an in-process implementation of the repository
// interfaces. It backs the memory store driver and most service tests.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/repository"
)

type state struct {
	movies   map[string]domain.Movie
	ratings  map[string]domain.Rating
	comments map[string]domain.Comment
	users    map[string]domain.User
	contacts map[string]domain.Contact
}

func newState() state {
	return state{
		movies:   make(map[string]domain.Movie),
		ratings:  make(map[string]domain.Rating),
		comments: make(map[string]domain.Comment),
		users:    make(map[string]domain.User),
		contacts: make(map[string]domain.Contact),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.movies {
		c.movies[k] = v
	}
	for k, v := range s.ratings {
		c.ratings[k] = v
	}
	for k, v := range s.comments {
		c.comments[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.contacts {
		c.contacts[k] = v
	}
	return c
}

// Store holds all records behind a single lock.
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	data  state
	clock func() time.Time
	seq   int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: newState(), clock: time.Now}
}

// Repository exposes the store through the repository interfaces.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		Movies:   &movies{s},
		Ratings:  &ratings{s},
		Comments: &comments{s},
		Users:    &users{s},
		Contacts: &contacts{s},
		Tx:       s,
	}
}

type txKey struct{}

// WithinTx serializes transactions and restores a snapshot when fn fails.
// Writes made outside a transaction are not isolated from it.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// now returns strictly increasing timestamps so ordering by creation time
// is stable within a process.
func (s *Store) now() time.Time {
	s.seq++
	return s.clock().UTC().Add(time.Duration(s.seq) * time.Nanosecond)
}

type movies struct{ s *Store }

func (r *movies) Create(_ context.Context, movie domain.Movie) (domain.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.movies[movie.ID]; ok {
		return domain.Movie{}, repository.ErrDuplicate
	}
	for _, m := range r.s.data.movies {
		if m.Title == movie.Title {
			return domain.Movie{}, repository.ErrDuplicate
		}
	}
	now := r.s.now()
	movie.Cast = append([]string(nil), movie.Cast...)
	movie.AverageRating = 0
	movie.NumberOfRatings = 0
	movie.CreatedAt = now
	movie.UpdatedAt = now
	r.s.data.movies[movie.ID] = movie
	return movie, nil
}

func (r *movies) GetByID(_ context.Context, id string) (domain.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.data.movies[id]
	if !ok {
		return domain.Movie{}, repository.ErrNotFound
	}
	return m, nil
}

func (r *movies) GetByTitle(_ context.Context, title string) (domain.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.data.movies {
		if m.Title == title {
			return m, nil
		}
	}
	return domain.Movie{}, repository.ErrNotFound
}

func (r *movies) List(_ context.Context, filters repository.MovieListFilters) ([]domain.Movie, error) {
	r.s.mu.Lock()
	items := make([]domain.Movie, 0, len(r.s.data.movies))
	search := strings.ToLower(strings.TrimSpace(filters.Search))
	genre := strings.ToLower(strings.TrimSpace(filters.Genre))
	for _, m := range r.s.data.movies {
		if search != "" && !strings.Contains(strings.ToLower(m.Title), search) {
			continue
		}
		if genre != "" && !strings.Contains(strings.ToLower(m.Genre), genre) {
			continue
		}
		items = append(items, m)
	}
	r.s.mu.Unlock()

	less := func(a, b domain.Movie) int {
		switch filters.SortBy {
		case repository.SortByTitle:
			return strings.Compare(a.Title, b.Title)
		case repository.SortByAverageRating:
			switch {
			case a.AverageRating < b.AverageRating:
				return -1
			case a.AverageRating > b.AverageRating:
				return 1
			}
			return 0
		default:
			return a.ReleaseDate.Compare(b.ReleaseDate)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		c := less(items[i], items[j])
		if c == 0 {
			c = strings.Compare(items[i].ID, items[j].ID)
		}
		if filters.Descending {
			return c > 0
		}
		return c < 0
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(items) {
			return []domain.Movie{}, nil
		}
		items = items[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(items) {
		items = items[:filters.Limit]
	}
	return items, nil
}

func (r *movies) Replace(_ context.Context, id string, attrs domain.MovieAttributes) (domain.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.data.movies[id]
	if !ok {
		return domain.Movie{}, repository.ErrNotFound
	}
	for _, other := range r.s.data.movies {
		if other.ID != id && other.Title == attrs.Title {
			return domain.Movie{}, repository.ErrDuplicate
		}
	}
	m.Apply(attrs)
	m.UpdatedAt = r.s.now()
	r.s.data.movies[id] = m
	return m, nil
}

func (r *movies) UpdateAggregate(_ context.Context, id string, agg domain.RatingAggregate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.data.movies[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.AverageRating = agg.Average
	m.NumberOfRatings = agg.Count
	m.UpdatedAt = r.s.now()
	r.s.data.movies[id] = m
	return nil
}

func (r *movies) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.movies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.movies, id)
	return nil
}

type ratings struct{ s *Store }

func (r *ratings) Upsert(_ context.Context, rating domain.Rating) (domain.Rating, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.movies[rating.MovieID]; !ok {
		return domain.Rating{}, false, repository.ErrNotFound
	}
	if _, ok := r.s.data.users[rating.UserID]; !ok {
		return domain.Rating{}, false, repository.ErrUnknownUser
	}
	now := r.s.now()
	for id, existing := range r.s.data.ratings {
		if existing.MovieID == rating.MovieID && existing.UserID == rating.UserID {
			existing.Value = rating.Value
			existing.UpdatedAt = now
			r.s.data.ratings[id] = existing
			return existing, false, nil
		}
	}
	rating.CreatedAt = now
	rating.UpdatedAt = now
	r.s.data.ratings[rating.ID] = rating
	return rating, true, nil
}

func (r *ratings) GetByID(_ context.Context, id string) (domain.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rating, ok := r.s.data.ratings[id]
	if !ok {
		return domain.Rating{}, repository.ErrNotFound
	}
	return rating, nil
}

func (r *ratings) Get(_ context.Context, movieID, userID string) (domain.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rating := range r.s.data.ratings {
		if rating.MovieID == movieID && rating.UserID == userID {
			return rating, nil
		}
	}
	return domain.Rating{}, repository.ErrNotFound
}

func (r *ratings) ListByMovie(_ context.Context, movieID string) ([]domain.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]domain.Rating, 0)
	for _, rating := range r.s.data.ratings {
		if rating.MovieID == movieID {
			items = append(items, rating)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *ratings) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.ratings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.ratings, id)
	return nil
}

func (r *ratings) DeleteByMovie(_ context.Context, movieID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, rating := range r.s.data.ratings {
		if rating.MovieID == movieID {
			delete(r.s.data.ratings, id)
			n++
		}
	}
	return n, nil
}

type comments struct{ s *Store }

func (r *comments) Create(_ context.Context, comment domain.Comment) (domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.movies[comment.MovieID]; !ok {
		return domain.Comment{}, repository.ErrNotFound
	}
	if _, ok := r.s.data.users[comment.UserID]; !ok {
		return domain.Comment{}, repository.ErrUnknownUser
	}
	if _, ok := r.s.data.comments[comment.ID]; ok {
		return domain.Comment{}, repository.ErrDuplicate
	}
	comment.CreatedAt = r.s.now()
	r.s.data.comments[comment.ID] = comment
	return comment, nil
}

func (r *comments) GetByID(_ context.Context, id string) (domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.comments[id]
	if !ok {
		return domain.Comment{}, repository.ErrNotFound
	}
	return c, nil
}

func (r *comments) ListByMovie(_ context.Context, movieID string) ([]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]domain.Comment, 0)
	for _, c := range r.s.data.comments {
		if c.MovieID == movieID {
			items = append(items, c)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r *comments) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.comments, id)
	return nil
}

func (r *comments) DeleteByMovie(_ context.Context, movieID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.data.comments {
		if c.MovieID == movieID {
			delete(r.s.data.comments, id)
			n++
		}
	}
	return n, nil
}

type users struct{ s *Store }

func (r *users) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[user.ID]; ok {
		return domain.User{}, repository.ErrDuplicate
	}
	for _, u := range r.s.data.users {
		if u.Email == user.Email {
			return domain.User{}, repository.ErrDuplicate
		}
	}
	now := r.s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.data.users[user.ID] = user
	return user, nil
}

func (r *users) GetByID(_ context.Context, id string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *users) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (r *users) NamesByID(_ context.Context, ids []string) (map[string]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if u, ok := r.s.data.users[id]; ok {
			names[id] = u.Name
		}
	}
	return names, nil
}

type contacts struct{ s *Store }

func (r *contacts) Create(_ context.Context, contact domain.Contact) (domain.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	contact.CreatedAt = r.s.now()
	r.s.data.contacts[contact.ID] = contact
	return contact, nil
}

func (r *contacts) List(_ context.Context) ([]domain.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]domain.Contact, 0, len(r.s.data.contacts))
	for _, c := range r.s.data.contacts {
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
