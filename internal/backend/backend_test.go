package backend

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-review/internal/config"
)

func TestOpenMemory(t *testing.T) {
	b, err := Open(context.Background(), config.Config{StoreDriver: config.DriverMemory}, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	defer b.Close()

	assert.NotNil(t, b.Repo.Movies)
	assert.Nil(t, b.Postgres)
	assert.NoError(t, b.HealthCheck(context.Background()))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Config{StoreDriver: "sqlite"}, log.New(io.Discard, "", 0))
	assert.Error(t, err)
}
