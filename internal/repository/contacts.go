package repository

import (
	"context"
	"fmt"

	"github.com/Clark-Hu/movie-review/internal/domain"
	"github.com/Clark-Hu/movie-review/internal/store"
)

// ContactsRepository persists contact-form messages in PostgreSQL.
type ContactsRepository struct {
	st *store.Store
}

func (r *ContactsRepository) Create(ctx context.Context, contact domain.Contact) (domain.Contact, error) {
	const query = `
        INSERT INTO contacts (id, name, email, content)
        VALUES ($1,$2,$3,$4)
        RETURNING id, name, email, content, created_at
    `
	var c domain.Contact
	err := r.st.Querier(ctx).QueryRow(ctx, query, contact.ID, contact.Name, contact.Email, contact.Content).
		Scan(&c.ID, &c.Name, &c.Email, &c.Content, &c.CreatedAt)
	if err != nil {
		return domain.Contact{}, fmt.Errorf("insert contact: %w", translate(err))
	}
	return c, nil
}

func (r *ContactsRepository) List(ctx context.Context) ([]domain.Contact, error) {
	rows, err := r.st.Querier(ctx).Query(ctx,
		`SELECT id, name, email, content, created_at FROM contacts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Contact, 0)
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
