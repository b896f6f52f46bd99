package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/store"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	st *store.Store
}

const movieColumns = `
    id,
    title,
    description,
    release_date,
    genre,
    director,
    cast_members,
    poster_url,
    trailer_url,
    average_rating,
    number_of_ratings,
    created_at,
    updated_at
`

var movieSortColumns = map[string]string{
	SortByTitle:         "title",
	SortByReleaseDate:   "release_date",
	SortByAverageRating: "average_rating",
}

// Create inserts a new movie row and returns the stored entity.
func (r *MoviesRepository) Create(ctx context.Context, movie domain.Movie) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (id, title, description, release_date, genre, director, cast_members, poster_url, trailer_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING %s
    `, movieColumns)

	row := r.st.Querier(ctx).QueryRow(ctx, query,
		movie.ID, movie.Title, movie.Description, movie.ReleaseDate, movie.Genre,
		movie.Director, movie.Cast, movie.PosterURL, movie.TrailerURL)
	created, err := scanMovie(row)
	if err != nil {
		return domain.Movie{}, translate(err)
	}
	return created, nil
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.st.Querier(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return domain.Movie{}, translate(err)
	}
	return movie, nil
}

// GetByTitle fetches the movie with exactly this title.
func (r *MoviesRepository) GetByTitle(ctx context.Context, title string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE title = $1`, movieColumns)
	movie, err := scanMovie(r.st.Querier(ctx).QueryRow(ctx, query, title))
	if err != nil {
		return domain.Movie{}, translate(err)
	}
	return movie, nil
}

// List returns movies that match the provided filters.
func (r *MoviesRepository) List(ctx context.Context, filters MovieListFilters) ([]domain.Movie, error) {
	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(filters.Search); q != "" {
		where = append(where, fmt.Sprintf("title ILIKE %s", arg(likePattern(q))))
	}
	if g := strings.TrimSpace(filters.Genre); g != "" {
		where = append(where, fmt.Sprintf("genre ILIKE %s", arg(likePattern(g))))
	}

	column, ok := movieSortColumns[filters.SortBy]
	if !ok {
		column = movieSortColumns[SortByReleaseDate]
	}
	direction := "ASC"
	if filters.Descending {
		direction = "DESC"
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(movieColumns)
	queryBuilder.WriteString(" FROM movies")

	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction))
	if filters.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d", filters.Limit))
	}
	if filters.Offset > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" OFFSET %d", filters.Offset))
	}

	rows, err := r.st.Querier(ctx).Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Replace overwrites the editable attributes of the movie identified by id.
func (r *MoviesRepository) Replace(ctx context.Context, id string, attrs domain.MovieAttributes) (domain.Movie, error) {
	query := fmt.Sprintf(`
        UPDATE movies
        SET title = $2,
            description = $3,
            release_date = $4,
            genre = $5,
            director = $6,
            cast_members = $7,
            poster_url = $8,
            trailer_url = $9,
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, movieColumns)

	row := r.st.Querier(ctx).QueryRow(ctx, query, id,
		attrs.Title, attrs.Description, attrs.ReleaseDate, attrs.Genre,
		attrs.Director, attrs.Cast, attrs.PosterURL, attrs.TrailerURL)
	movie, err := scanMovie(row)
	if err != nil {
		return domain.Movie{}, translate(err)
	}
	return movie, nil
}

// UpdateAggregate stores the derived rating fields of a movie.
func (r *MoviesRepository) UpdateAggregate(ctx context.Context, id string, agg domain.RatingAggregate) error {
	const query = `
        UPDATE movies
        SET average_rating = $2,
            number_of_ratings = $3,
            updated_at = now()
        WHERE id = $1
    `
	tag, err := r.st.Querier(ctx).Exec(ctx, query, id, agg.Average, agg.Count)
	if err != nil {
		return fmt.Errorf("update aggregate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the movie row.
func (r *MoviesRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.st.Querier(ctx).Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.ReleaseDate,
		&movie.Genre,
		&movie.Director,
		&movie.Cast,
		&movie.PosterURL,
		&movie.TrailerURL,
		&movie.AverageRating,
		&movie.NumberOfRatings,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}

// likePattern escapes LIKE metacharacters and wraps q for substring search.
func likePattern(q string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(q) + "%"
}
