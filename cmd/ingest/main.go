// Command ingest validates, classifies and publishes incoming data files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oceandata/ingest/internal/adapters/driving/cli"
)

// version is set by the linker: -ldflags "-X main.version=1.2.3".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
