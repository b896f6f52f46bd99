package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-review/internal/domain"
)

func TestContacts(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ann")

	_, err := f.svc.Contacts.Add(f.ctx, ContactInput{Name: "Ann", Email: "ann@example.com", Content: "hi"})
	require.NoError(t, err)
	_, err = f.svc.Contacts.Add(f.ctx, ContactInput{Name: "Ben", Email: "not-an-email", Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Contacts.List(f.ctx, u)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	list, err := f.svc.Contacts.List(f.ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ann", list[0].Name)
}
