package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// run executes the command with args and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, newStore storeFactory) int {
	a := newApp(newStore, stderr)

	cmd := a.command()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		a.logger.Error("s3-static-sync failed", "err", err)
		return exitCodeFor(err)
	}
	return Success
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, newAWSStore)
	stop()
	os.Exit(code)
}
