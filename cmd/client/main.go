package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/postkeeper/internal/client/cli"
	"github.com/dmitrijs2005/postkeeper/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	app.Run(ctx)

}
