package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"deckhand/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override deckhand config path (optional)")
	serverURL := flag.String("server", "", "override backend server URL (optional)")
	location := flag.String("open", "/", "location to open at launch, e.g. /deck/PX4QJT")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		ServerURL:  *serverURL,
		Location:   *location,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "deckhand: %v\n", err)
		return 1
	}
	return 0
}
