package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tildaslashalef/prreview/internal/app"
	"github.com/tildaslashalef/prreview/internal/commands"
)

// Version information - populated at build time
var (
	Version    = "dev"
	BuildTime  = "unknown"
	CommitHash = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cliApp := commands.NewApp(commands.BuildInfo{
		Version:    Version,
		BuildTime:  BuildTime,
		CommitHash: CommitHash,
	}, app.Options{})

	code := commands.Execute(ctx, cliApp, os.Args)
	stop()
	os.Exit(code)
}
