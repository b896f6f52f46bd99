package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/store"
)

// RatingsRepository provides helpers for movie ratings.
type RatingsRepository struct {
	st *store.Store
}

const ratingColumns = `id, user_id, movie_id, rating, created_at, updated_at`

// Upsert inserts or updates a rating and indicates whether it was newly created.
// On conflict the stored id and created_at are kept.
func (r *RatingsRepository) Upsert(ctx context.Context, rating domain.Rating) (domain.Rating, bool, error) {
	query := fmt.Sprintf(`
        INSERT INTO ratings (id, user_id, movie_id, rating)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (movie_id, user_id)
        DO UPDATE SET rating = EXCLUDED.rating, updated_at = now()
        RETURNING %s, (xmax = 0) AS inserted
    `, ratingColumns)

	var stored domain.Rating
	var value int16
	var inserted bool
	err := r.st.Querier(ctx).QueryRow(ctx, query, rating.ID, rating.UserID, rating.MovieID, rating.Value).Scan(
		&stored.ID,
		&stored.UserID,
		&stored.MovieID,
		&value,
		&stored.CreatedAt,
		&stored.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return domain.Rating{}, false, translate(err)
	}
	stored.Value = int(value)
	return stored, inserted, nil
}

// GetByID retrieves a rating by its identifier.
func (r *RatingsRepository) GetByID(ctx context.Context, id string) (domain.Rating, error) {
	query := fmt.Sprintf(`SELECT %s FROM ratings WHERE id = $1`, ratingColumns)
	rating, err := scanRating(r.st.Querier(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return domain.Rating{}, translate(err)
	}
	return rating, nil
}

// Get retrieves a rating for a specific user/movie combination.
func (r *RatingsRepository) Get(ctx context.Context, movieID, userID string) (domain.Rating, error) {
	query := fmt.Sprintf(`SELECT %s FROM ratings WHERE movie_id = $1 AND user_id = $2`, ratingColumns)
	rating, err := scanRating(r.st.Querier(ctx).QueryRow(ctx, query, movieID, userID))
	if err != nil {
		return domain.Rating{}, translate(err)
	}
	return rating, nil
}

// ListByMovie returns every rating of a movie, oldest first.
func (r *RatingsRepository) ListByMovie(ctx context.Context, movieID string) ([]domain.Rating, error) {
	query := fmt.Sprintf(`SELECT %s FROM ratings WHERE movie_id = $1 ORDER BY created_at, id`, ratingColumns)
	rows, err := r.st.Querier(ctx).Query(ctx, query, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Rating, 0)
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a single rating.
func (r *RatingsRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.st.Querier(ctx).Exec(ctx, `DELETE FROM ratings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByMovie removes all ratings of a movie and reports how many went.
func (r *RatingsRepository) DeleteByMovie(ctx context.Context, movieID string) (int64, error) {
	tag, err := r.st.Querier(ctx).Exec(ctx, `DELETE FROM ratings WHERE movie_id = $1`, movieID)
	if err != nil {
		return 0, fmt.Errorf("delete ratings: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var rating domain.Rating
	var value int16
	err := row.Scan(
		&rating.ID,
		&rating.UserID,
		&rating.MovieID,
		&value,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		return domain.Rating{}, err
	}
	rating.Value = int(value)
	return rating, nil
}
