// Package backend opens the record store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Clark-Hu/movie-review/internal/config"
	"github.com/Clark-Hu/movie-review/internal/repository"
	"github.com/Clark-Hu/movie-review/internal/repository/memrepo"
	"github.com/Clark-Hu/movie-review/internal/repository/mongorepo"
	"github.com/Clark-Hu/movie-review/internal/store"
)

// Backend is an opened record store.
type Backend struct {
	Driver string
	Repo   *repository.Repository

	// Postgres is set only for the postgres driver.
	Postgres *store.Store

	health func(ctx context.Context) error
	close  func()
}

// HealthCheck verifies the backing store is reachable.
func (b *Backend) HealthCheck(ctx context.Context) error {
	if b.health == nil {
		return nil
	}
	return b.health(ctx)
}

// Close releases the backing store.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open connects to the store named by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (*Backend, error) {
	if logger == nil {
		logger = log.Default()
	}
	connTimeout := time.Duration(cfg.DBConnTimeoutSecs) * time.Second

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		st, err := store.New(ctx, cfg.DBURL, store.Options{
			MaxConns:               int32(cfg.DBMaxConns),
			MinConns:               int32(cfg.DBMinConns),
			MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
			MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
			ConnTimeout:            connTimeout,
			StatementCacheCapacity: cfg.DBStatementCache,
			Logger:                 logger,
		})
		if err != nil {
			return nil, err
		}
		if cfg.DBAutoMigrate {
			applied, err := st.Migrate(ctx)
			if err != nil {
				st.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			for _, name := range applied {
				logger.Printf("backend: applied migration %s", name)
			}
		}
		return &Backend{
			Driver:   cfg.StoreDriver,
			Repo:     repository.New(st),
			Postgres: st,
			health:   st.HealthCheck,
			close:    st.Close,
		}, nil

	case config.DriverMongo:
		ms, err := mongorepo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, mongorepo.Options{
			Transactions: cfg.MongoTransactions,
			Timeout:      connTimeout,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		if err := ms.EnsureIndexes(ctx); err != nil {
			_ = ms.Close(context.Background())
			return nil, err
		}
		return &Backend{
			Driver: cfg.StoreDriver,
			Repo:   ms.Repository(),
			health: ms.HealthCheck,
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := ms.Close(closeCtx); err != nil {
					logger.Printf("backend: mongo disconnect: %v", err)
				}
			},
		}, nil

	case config.DriverMemory:
		logger.Println("backend: using in-memory store; data is lost on exit")
		return &Backend{Driver: cfg.StoreDriver, Repo: memrepo.New().Repository()}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
