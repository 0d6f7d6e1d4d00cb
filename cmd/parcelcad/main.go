package main

import (
	"context"
	"os"
	"os/signal"

	"parcelcad/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cli.Root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
