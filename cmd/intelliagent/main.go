package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/intelliagent/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(app.Build).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
