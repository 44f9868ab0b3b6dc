// Command dockhand manages the Docker lifecycle of the web application:
// multi-stage image builds, prod/dev containers, log streaming, health
// checks, and Docker Compose workflows.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dockhand-dev/dockhand/internal/cli"
)

// Build-time variables injected via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=abc123 -X main.date=2026-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	// Ctrl-C and SIGTERM cancel the command context, so long-running
	// verbs (logs --follow, health polling, compose runs) unwind
	// instead of dying mid-operation.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx, cli.NewRootCommand())
}
