// Package main is the entry point for the pacer CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/pacer/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pacer/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pacer/internal/adapters/driving/cli"
	"github.com/custodia-labs/pacer/internal/core/services"
	"github.com/custodia-labs/pacer/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return err
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("%v; using defaults", err)
		defaults := settingsService.GetDefaults()
		defaults.Storage.DataDir = configStore.GetString(services.KeyDataDir)
		settings = &defaults
	}

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	fingerprints := store.FingerprintStore()
	indexer := services.NewIndexer(fingerprints)
	integrity := services.NewIntegrityService(fingerprints, indexer)
	cli.SetServices(cli.Services{
		Indexer:    indexer,
		Suggestion: services.NewSuggestionService(fingerprints, store.OwnerDirectory(), settings.Suggestion),
		Integrity:  integrity,
		Settings:   settingsService,
		Sweeper:    services.NewIntegritySweeper(integrity, settings.Integrity.Interval),
	})
	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.ExecuteContext(ctx)
}
