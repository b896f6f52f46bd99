package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/store"
)

// CommentsRepository persists comments in PostgreSQL.
type CommentsRepository struct {
	st *store.Store
}

const commentColumns = `id, user_id, movie_id, content, author_name, created_at`

func (r *CommentsRepository) Create(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	query := fmt.Sprintf(`
        INSERT INTO comments (id, user_id, movie_id, content, author_name)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, commentColumns)
	created, err := scanComment(r.st.Querier(ctx).QueryRow(ctx, query,
		comment.ID, comment.UserID, comment.MovieID, comment.Content, comment.AuthorName))
	if err != nil {
		return domain.Comment{}, translate(err)
	}
	return created, nil
}

func (r *CommentsRepository) GetByID(ctx context.Context, id string) (domain.Comment, error) {
	query := fmt.Sprintf(`SELECT %s FROM comments WHERE id = $1`, commentColumns)
	comment, err := scanComment(r.st.Querier(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return domain.Comment{}, translate(err)
	}
	return comment, nil
}

func (r *CommentsRepository) ListByMovie(ctx context.Context, movieID string) ([]domain.Comment, error) {
	query := fmt.Sprintf(`SELECT %s FROM comments WHERE movie_id = $1 ORDER BY created_at DESC, id DESC`, commentColumns)
	rows, err := r.st.Querier(ctx).Query(ctx, query, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CommentsRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.st.Querier(ctx).Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CommentsRepository) DeleteByMovie(ctx context.Context, movieID string) (int64, error) {
	tag, err := r.st.Querier(ctx).Exec(ctx, `DELETE FROM comments WHERE movie_id = $1`, movieID)
	if err != nil {
		return 0, fmt.Errorf("delete comments: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanComment(row pgx.Row) (domain.Comment, error) {
	var c domain.Comment
	if err := row.Scan(&c.ID, &c.UserID, &c.MovieID, &c.Content, &c.AuthorName, &c.CreatedAt); err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}
