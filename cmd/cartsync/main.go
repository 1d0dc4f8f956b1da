package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cartsync/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCommand()

	if err := cmd.ExecuteContext(ctx); err != nil {
		if msg := cli.Render(err); msg != "" {
			fmt.Fprint(os.Stderr, msg)
		}
		stop()
		os.Exit(cli.ExitCode(err))
	}
}
