package main

import (
	"context"
	"fmt"
	"os"

	"checklist-safety/common/database"
	logpkg "checklist-safety/common/logger"
	"checklist-safety/internal/cli"
	"checklist-safety/internal/config"
	"checklist-safety/internal/repository"
	"checklist-safety/internal/service"
)

func openStore(ctx context.Context) (repository.Store, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logpkg.NewLogger(cfg.Log.Level, "console", "checklist-tool")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, db, err := service.OpenStore(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return store, func() error {
		_ = log.Sync()
		return database.Close(db)
	}, nil
}

func main() {
	if err := cli.NewRootCommand(openStore).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
