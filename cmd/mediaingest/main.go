package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mediaingest/internal/config"
	appErrors "mediaingest/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// After the first signal a second one terminates the process.
		<-ctx.Done()
		stop()
	}()

	cfg, err := config.Load()
	if err != nil {
		exitWithError(appErrors.Wrap(appErrors.InvalidConfig, "config", "", err))
	}

	if err := newRootCommand(&cfg).ExecuteContext(ctx); err != nil {
		stop()
		exitWithError(err)
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, appErrors.UserMessage(err))
	os.Exit(1)
}
