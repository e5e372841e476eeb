package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/teachsync/internal/cli"
)

// Version information (set via ldflags during build)
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// Cancel on interrupt so watch and lock waits return cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCommand()
	cmd.Version = fmt.Sprintf("%s (commit: %s)", Version, Commit)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	// ExitErrors have already been reported by the command's formatter.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(cli.ExitCommandError)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
