package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/votascan/votascan/app/query"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	app := query.Initialize(ctx, cfgPath)
	app.Start(ctx)
}
