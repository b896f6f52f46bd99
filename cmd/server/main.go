package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Clark-Hu/movie-review/internal/auth"
	"github.com/Clark-Hu/movie-review/internal/backend"
	"github.com/Clark-Hu/movie-review/internal/config"
	httpserver "github.com/Clark-Hu/movie-review/internal/http"
	"github.com/Clark-Hu/movie-review/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[movie-review] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	b, err := backend.Open(dbCtx, cfg, logger)
	if err != nil {
		log.Fatalf("open %s store: %v", cfg.StoreDriver, err)
	}
	defer b.Close()

	tokens, err := auth.NewTokenManager(cfg.TokenSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		log.Fatalf("init token manager: %v", err)
	}

	svc := service.New(b.Repo, service.Options{
		Tokens:           tokens,
		Hasher:           auth.NewPasswordHasher(cfg.BcryptCost),
		AllowAdminSignup: cfg.AllowAdminSignup,
		Logger:           logger,
	})
	server := httpserver.New(cfg, b, svc, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
