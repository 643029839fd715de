package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, errNotAccepted) && !errors.Is(err, errVerifyFailed) {
		fmt.Fprintln(os.Stderr, err)
	}
	stop()
	os.Exit(1)
}
