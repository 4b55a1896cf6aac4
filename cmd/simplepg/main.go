package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/vvka-141/simplepg/internal/cli"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(simplepg.ExitPanic)
		}
	}()

	if os.Getenv("SIMPLEPG_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	// Ctrl-C aborts a pending reconnect delay instead of waiting it out.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(simplepg.ExitCodeForError(err))
	}
}
