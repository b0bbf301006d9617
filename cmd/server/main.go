package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/scribblenest/internal/logging"
	"github.com/dmitrijs2005/scribblenest/internal/server"
	"github.com/dmitrijs2005/scribblenest/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server stopped with error", "error", err)
		os.Exit(1)
	}

}
