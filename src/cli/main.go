package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sofmeright/bandbox/src/cli/cmd"
)

func main() {
	// Closed pipes surface as EPIPE write errors, handled by the commands.
	signal.Ignore(syscall.SIGPIPE)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
