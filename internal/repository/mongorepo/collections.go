package mongorepo

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/repository"
)

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

var movieSortFields = map[string]string{
	repository.SortByTitle:         "title",
	repository.SortByReleaseDate:   "releaseDate",
	repository.SortByAverageRating: "averageRating",
}

type movies struct {
	coll *mongo.Collection
}

func (r *movies) Create(ctx context.Context, movie domain.Movie) (domain.Movie, error) {
	ts := now()
	movie.AverageRating = 0
	movie.NumberOfRatings = 0
	movie.CreatedAt = ts
	movie.UpdatedAt = ts
	doc := toMovieDoc(movie)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.Movie{}, translate(err)
	}
	return doc.domain(), nil
}

func (r *movies) findOne(ctx context.Context, filter bson.M) (domain.Movie, error) {
	var doc movieDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return domain.Movie{}, translate(err)
	}
	return doc.domain(), nil
}

func (r *movies) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *movies) GetByTitle(ctx context.Context, title string) (domain.Movie, error) {
	return r.findOne(ctx, bson.M{"title": title})
}

func containsInsensitive(q string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
}

func (r *movies) List(ctx context.Context, filters repository.MovieListFilters) ([]domain.Movie, error) {
	filter := bson.M{}
	if q := strings.TrimSpace(filters.Search); q != "" {
		filter["title"] = containsInsensitive(q)
	}
	if g := strings.TrimSpace(filters.Genre); g != "" {
		filter["genre"] = containsInsensitive(g)
	}

	field, ok := movieSortFields[filters.SortBy]
	if !ok {
		field = movieSortFields[repository.SortByReleaseDate]
	}
	direction := 1
	if filters.Descending {
		direction = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: field, Value: direction}, {Key: "_id", Value: direction}})
	if filters.Limit > 0 {
		opts.SetLimit(int64(filters.Limit))
	}
	if filters.Offset > 0 {
		opts.SetSkip(int64(filters.Offset))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find movies: %w", err)
	}
	docs, err := decodeAll[movieDoc](ctx, cursor)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Movie, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.domain())
	}
	return items, nil
}

func (r *movies) Replace(ctx context.Context, id string, attrs domain.MovieAttributes) (domain.Movie, error) {
	update := bson.M{"$set": bson.M{
		"title":       attrs.Title,
		"description": attrs.Description,
		"releaseDate": attrs.ReleaseDate.UTC(),
		"genre":       attrs.Genre,
		"director":    attrs.Director,
		"cast":        attrs.Cast,
		"posterUrl":   attrs.PosterURL,
		"trailerUrl":  attrs.TrailerURL,
		"updatedAt":   now(),
	}}
	var doc movieDoc
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return domain.Movie{}, translate(err)
	}
	return doc.domain(), nil
}

func (r *movies) UpdateAggregate(ctx context.Context, id string, agg domain.RatingAggregate) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"averageRating":   agg.Average,
		"numberOfRatings": agg.Count,
		"updatedAt":       now(),
	}})
	if err != nil {
		return fmt.Errorf("update aggregate: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *movies) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type ratings struct {
	coll   *mongo.Collection
	movies *mongo.Collection
	users  *mongo.Collection
}

// Upsert relies on the unique (movieId, userId) index. The new id is only
// written on insert, so comparing it with the returned document tells
// whether a record was created.
func (r *ratings) Upsert(ctx context.Context, rating domain.Rating) (domain.Rating, bool, error) {
	if err := exists(ctx, r.movies, rating.MovieID); err != nil {
		return domain.Rating{}, false, err
	}
	if err := userExists(ctx, r.users, rating.UserID); err != nil {
		return domain.Rating{}, false, err
	}
	ts := now()
	filter := bson.M{"movieId": rating.MovieID, "userId": rating.UserID}
	update := bson.M{
		"$set":         bson.M{"value": rating.Value, "updatedAt": ts},
		"$setOnInsert": bson.M{"_id": rating.ID, "createdAt": ts},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc ratingDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent insert won the race; the retry takes the update path.
		err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return domain.Rating{}, false, translate(err)
	}
	return doc.domain(), doc.ID == rating.ID, nil
}

func (r *ratings) findOne(ctx context.Context, filter bson.M) (domain.Rating, error) {
	var doc ratingDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return domain.Rating{}, translate(err)
	}
	return doc.domain(), nil
}

func (r *ratings) GetByID(ctx context.Context, id string) (domain.Rating, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ratings) Get(ctx context.Context, movieID, userID string) (domain.Rating, error) {
	return r.findOne(ctx, bson.M{"movieId": movieID, "userId": userID})
}

func (r *ratings) ListByMovie(ctx context.Context, movieID string) ([]domain.Rating, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"movieId": movieID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find ratings: %w", err)
	}
	docs, err := decodeAll[ratingDoc](ctx, cursor)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Rating, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.domain())
	}
	return items, nil
}

func (r *ratings) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ratings) DeleteByMovie(ctx context.Context, movieID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"movieId": movieID})
	if err != nil {
		return 0, fmt.Errorf("delete ratings: %w", err)
	}
	return res.DeletedCount, nil
}

type comments struct {
	coll   *mongo.Collection
	movies *mongo.Collection
	users  *mongo.Collection
}

func (r *comments) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	if err := exists(ctx, r.movies, comment.MovieID); err != nil {
		return domain.Comment{}, err
	}
	if err := userExists(ctx, r.users, comment.UserID); err != nil {
		return domain.Comment{}, err
	}
	doc := commentDoc{
		ID: comment.ID, UserID: comment.UserID, MovieID: comment.MovieID,
		Content: comment.Content, AuthorName: comment.AuthorName, CreatedAt: now(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.Comment{}, translate(err)
	}
	return doc.domain(), nil
}

func (r *comments) GetByID(ctx context.Context, id string) (domain.Comment, error) {
	var doc commentDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return domain.Comment{}, translate(err)
	}
	return doc.domain(), nil
}

func (r *comments) ListByMovie(ctx context.Context, movieID string) ([]domain.Comment, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"movieId": movieID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	docs, err := decodeAll[commentDoc](ctx, cursor)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Comment, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.domain())
	}
	return items, nil
}

func (r *comments) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *comments) DeleteByMovie(ctx context.Context, movieID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"movieId": movieID})
	if err != nil {
		return 0, fmt.Errorf("delete comments: %w", err)
	}
	return res.DeletedCount, nil
}

type users struct {
	coll *mongo.Collection
}

func (r *users) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ts := now()
	doc := userDoc{
		ID: user.ID, Email: user.Email, PasswordHash: user.PasswordHash, Name: user.Name,
		Role: string(user.Role), CreatedAt: ts, UpdatedAt: ts,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.User{}, translate(err)
	}
	return doc.domain(), nil
}

func (r *users) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return domain.User{}, translate(err)
	}
	return doc.domain(), nil
}

func (r *users) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *users) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *users) NamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	docs, err := decodeAll[userDoc](ctx, cursor)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		names[d.ID] = d.Name
	}
	return names, nil
}

type contacts struct {
	coll *mongo.Collection
}

func (r *contacts) Create(ctx context.Context, contact domain.Contact) (domain.Contact, error) {
	doc := contactDoc{ID: contact.ID, Name: contact.Name, Email: contact.Email, Content: contact.Content, CreatedAt: now()}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.Contact{}, translate(err)
	}
	return doc.domain(), nil
}

func (r *contacts) List(ctx context.Context) ([]domain.Contact, error) {
	cursor, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find contacts: %w", err)
	}
	docs, err := decodeAll[contactDoc](ctx, cursor)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Contact, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.domain())
	}
	return items, nil
}
