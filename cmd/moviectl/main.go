// Command moviectl performs operator tasks against the movie-review store:
// schema migration, admin provisioning, catalogue seeding and aggregate repair.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "moviectl:", err)
		os.Exit(1)
	}
}
