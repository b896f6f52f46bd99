package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/store"
)

// UsersRepository persists accounts in PostgreSQL.
type UsersRepository struct {
	st *store.Store
}

const userColumns = `id, email, password_hash, name, role, created_at, updated_at`

func (r *UsersRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	query := fmt.Sprintf(`
        INSERT INTO users (id, email, password_hash, name, role)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, userColumns)
	created, err := scanUser(r.st.Querier(ctx).QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, string(user.Role)))
	if err != nil {
		return domain.User{}, translate(err)
	}
	return created, nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(r.st.Querier(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return domain.User{}, translate(err)
	}
	return user, nil
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	user, err := scanUser(r.st.Querier(ctx).QueryRow(ctx, query, email))
	if err != nil {
		return domain.User{}, translate(err)
	}
	return user, nil
}

func (r *UsersRepository) NamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	rows, err := r.st.Querier(ctx).Query(ctx, `SELECT id, name FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}
