// Package mongorepo implements the repository interfaces on MongoDB.
package mongorepo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/Clark-Hu/movie-review/internal/repository"
)

const (
	collMovies   = "movies"
	collRatings  = "ratings"
	collComments = "comments"
	collUsers    = "users"
	collContacts = "contacts"
)

// Options tunes the MongoDB backend.
type Options struct {
	// Transactions enables multi-document transactions; requires a replica set.
	Transactions bool
	Timeout      time.Duration
	Logger       *log.Logger
}

// Store wraps a connected client and database handle.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	opts   Options
	logger *log.Logger
}

// Connect dials uri, pings the primary and returns a Store for database.
func Connect(ctx context.Context, uri, database string, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	clientOpts := options.Client().ApplyURI(uri)
	if opts.Timeout > 0 {
		clientOpts.SetTimeout(opts.Timeout)
	}
	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Printf("mongorepo: connected (database=%s, transactions=%t)", database, opts.Transactions)
	return &Store{client: client, db: client.Database(database), opts: opts, logger: logger}, nil
}

// EnsureIndexes creates the unique indexes the repositories rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		collUsers:  {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		collMovies: {{Keys: bson.D{{Key: "title", Value: 1}}, Options: unique}},
		collRatings: {
			{Keys: bson.D{{Key: "movieId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
		},
		collComments: {{Keys: bson.D{{Key: "movieId", Value: 1}, {Key: "createdAt", Value: -1}}}},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// HealthCheck pings the primary.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	s.logger.Println("mongorepo: disconnecting")
	return s.client.Disconnect(ctx)
}

// Drop removes the whole database. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

// Repository exposes the store through the repository interfaces.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		Movies:   &movies{coll: s.db.Collection(collMovies)},
		Ratings:  &ratings{coll: s.db.Collection(collRatings), movies: s.db.Collection(collMovies), users: s.db.Collection(collUsers)},
		Comments: &comments{coll: s.db.Collection(collComments), movies: s.db.Collection(collMovies), users: s.db.Collection(collUsers)},
		Users:    &users{coll: s.db.Collection(collUsers)},
		Contacts: &contacts{coll: s.db.Collection(collContacts)},
		Tx:       s,
	}
}

// WithinTx runs fn in a multi-document transaction when transactions are
// enabled. Otherwise fn runs directly and partial writes are not undone.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.opts.Transactions || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(context.Background())

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, fn(ctx)
	})
	return err
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	}
	return err
}

func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]T, error) {
	defer cursor.Close(ctx)
	items := make([]T, 0)
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, cursor.Err()
}

func exists(ctx context.Context, coll *mongo.Collection, id string) error {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// userExists is exists for the users collection, reporting ErrUnknownUser.
func userExists(ctx context.Context, users *mongo.Collection, id string) error {
	err := exists(ctx, users, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.ErrUnknownUser
	}
	return err
}
