package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and change pacer settings stored in ~/.pacer/config.toml.`,
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting.

Keys:
  suggestion.title_threshold    title similarity a match must exceed (default 0.95)
  suggestion.content_threshold  content similarity a match must exceed (default 0.90)
  mcp.rate_limit                MCP requests per second per owner (default 5)
  mcp.burst                     MCP burst per owner (default 10)
  storage.data_dir              fingerprint database directory (default ~/.pacer/data)
  watch.owner                   owner for watched decks that name none
  integrity.interval            drift sweep interval for watch and mcp serve (default 1h, 0 disables)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}
	watchOwner := settings.Watch.Owner
	if watchOwner == "" {
		watchOwner = "(not set)"
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	cmd.Println("[Suggestion]")
	cmd.Printf("  Title threshold: %.2f\n", settings.Suggestion.TitleThreshold)
	cmd.Printf("  Content threshold: %.2f\n", settings.Suggestion.ContentThreshold)
	cmd.Println()
	cmd.Println("[MCP]")
	cmd.Printf("  Rate limit: %.1f/s per owner\n", settings.MCP.RateLimit)
	cmd.Printf("  Burst: %d\n", settings.MCP.Burst)
	cmd.Println()
	cmd.Println("[Storage]")
	cmd.Printf("  Data dir: %s\n", dataDir)
	cmd.Println()
	cmd.Println("[Watch]")
	cmd.Printf("  Owner: %s\n", watchOwner)
	cmd.Println()
	cmd.Println("[Integrity]")
	if settings.Integrity.Interval > 0 {
		cmd.Printf("  Sweep interval: %s\n", settings.Integrity.Interval)
	} else {
		cmd.Println("  Sweep interval: disabled")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}
