package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/movie-review/internal/auth"
	"github.com/Clark-Hu/movie-review/internal/backend"
	"github.com/Clark-Hu/movie-review/internal/config"
	"github.com/Clark-Hu/movie-review/internal/service"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Driver  string
	Verbose bool
	Timeout time.Duration
}

// NewRootCommand creates the moviectl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "moviectl",
		Short: "Operator tooling for the movie-review service",
		Long: `Operator tooling for the movie-review service.

Storage settings come from the same environment variables as the server
(STORE_DRIVER, DB_URL, MONGO_URI, ...); a .env file is honoured.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "override STORE_DRIVER (postgres|mongo|memory)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log store activity to stderr")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "overall deadline for the command")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewRecomputeCommand(opts))

	return cmd
}

// session is an opened store plus the services built on it.
type session struct {
	backend *backend.Backend
	svc     *service.Services
	logger  *log.Logger
}

func (s *session) Close() {
	s.backend.Close()
}

// openSession loads storage configuration and connects to the selected store.
// The returned cancel func must be called once the command finishes.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, context.Context, context.CancelFunc, error) {
	if opts.Driver != "" {
		if err := os.Setenv("STORE_DRIVER", strings.ToLower(opts.Driver)); err != nil {
			return nil, nil, nil, err
		}
	}
	cfg, err := config.LoadStorage()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config: %w", err)
	}

	out := io.Discard
	if opts.Verbose {
		out = cmd.ErrOrStderr()
	}
	logger := log.New(out, "[moviectl] ", log.LstdFlags)

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	b, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}

	svc := service.New(b.Repo, service.Options{
		Hasher: auth.NewPasswordHasher(cfg.BcryptCost),
		Logger: logger,
	})
	return &session{backend: b, svc: svc, logger: logger}, ctx, cancel, nil
}
