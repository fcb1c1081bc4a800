package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"request-throttler/internal/cmd"
)

var version = "dev"

func main() {
	cmd.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		cancel()
		os.Exit(1)
	}
}
