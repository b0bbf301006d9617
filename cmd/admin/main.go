package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/scribblenest/internal/admin"
	"github.com/dmitrijs2005/scribblenest/internal/logging"
	"github.com/dmitrijs2005/scribblenest/internal/server/config"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/repomanager"
)

func main() {

	if len(os.Args) < 2 || !admin.IsCommand(os.Args[1]) {
		admin.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSON(os.Stderr, cfg.LogLevel)

	store, err := repomanager.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "store unavailable", "error", err)
		os.Exit(1)
	}

	err = admin.NewApp(cfg, logger, store, os.Stdin, os.Stdout).Run(ctx, os.Args[1:2])
	if cerr := store.Close(ctx); cerr != nil {
		logger.Warn(ctx, "store close", "error", cerr)
	}
	if err != nil {
		logger.Error(ctx, "command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}

}
