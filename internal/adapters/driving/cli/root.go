// Package cli provides the pacer command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pacer/internal/core/domain"
	"github.com/custodia-labs/pacer/internal/core/ports/driving"
	"github.com/custodia-labs/pacer/internal/logger"
)

var (
	version = "dev"
	verbose bool

	indexerService    driving.IndexerHooks
	suggestionService driving.SuggestionService
	integrityService  driving.IntegrityService
	settingsService   driving.SettingsService
	sweeper           driving.IntegritySweeper
)

// Services holds the core services the commands drive.
type Services struct {
	Indexer    driving.IndexerHooks
	Suggestion driving.SuggestionService
	Integrity  driving.IntegrityService
	Settings   driving.SettingsService

	// Sweeper runs next to watch and mcp serve. Optional.
	Sweeper driving.IntegritySweeper
}

var rootCmd = &cobra.Command{
	Use:   "pacer",
	Short: "Suggest slide durations from your own timing history",
	Long: `pacer indexes the slides you have already timed and suggests a duration
for a new slide by finding near-identical slides in your own decks.

Example usage:
  pacer index talks/*.yaml            # index decks
  pacer suggest --owner alice \
    --title "Introduction to ML" \
    --content "What is ML"            # suggest a duration
  pacer watch ./talks --owner alice   # keep the index in sync with a directory`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// SetServices injects the core services.
func SetServices(s Services) {
	indexerService = s.Indexer
	suggestionService = s.Suggestion
	integrityService = s.Integrity
	settingsService = s.Settings
	sweeper = s.Sweeper
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, so long-running commands
// such as watch and mcp serve stop when it is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// currentSettings returns the configured settings, or the defaults when no
// settings service is wired.
func currentSettings() (domain.Settings, error) {
	if settingsService == nil {
		return domain.DefaultSettings(), nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	return *settings, nil
}

// withSweeper runs fn with the integrity sweeper alongside. The sweeper
// stops when fn returns.
func withSweeper(ctx context.Context, fn func(context.Context) error) error {
	if sweeper == nil {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sweeper.Start(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return fn(gctx)
	})
	return g.Wait()
}

// ownerError maps an unresolved owner to an authorisation failure.
func ownerError(ownerID string, err error) error {
	if errors.Is(err, domain.ErrUnknownOwner) {
		return fmt.Errorf("owner %q is not authorised: %w", ownerID, err)
	}
	return err
}
