package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/TFMV/icetour/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		cli.PrintError(os.Stdout, os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
