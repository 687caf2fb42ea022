package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dexterwatch/internal/stubserver"
)

// main launches dexterstub, a scripted Dexter backend for local testing.
func main() {
	os.Exit(run())
}

// run executes dexterstub and returns an exit code.
func run() int {
	addr := flag.String("addr", "127.0.0.1:8000", "listen address")
	scriptPath := flag.String("script", "", "path to a JSONL event script (empty = built-in demo)")
	delay := flag.Duration("delay", 250*time.Millisecond, "pause between streamed events")
	flag.Parse()

	script := stubserver.DemoScript()
	if *scriptPath != "" {
		loaded, err := stubserver.LoadScript(*scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "script error: %v\n", err)
			return 1
		}
		script = loaded
	}

	handler := stubserver.NewHandler(stubserver.Config{
		Script: script,
		Delay:  *delay,
	})

	server := &http.Server{
		Addr:    *addr,
		Handler: handler,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "dexterstub listening on %s (%d scripted events)\n", *addr, len(script))

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		return 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	return 0
}
