// Package main is the entry point for the iconkit CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zjrosen/iconkit/cmd"
)

// Set via -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd.SetVersion(version + " (" + commit + ", " + date + ")")
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
