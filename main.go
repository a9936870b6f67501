// ./main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/honeybadger-loader/cmd"
)

// main is the entry point for the honeybadger-loader CLI.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cmd.ExitCode(cmd.Execute(ctx))
	stop()
	os.Exit(code)
}
