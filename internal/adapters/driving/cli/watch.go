package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pacer/internal/adapters/driving/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Keep the index in sync with a directory of decks",
	Long: `Index every deck in a directory, then watch it for changes.

Creating or saving a deck re-indexes it; deleting or renaming it removes its
slides from the index. Decks that name no owner are indexed under --owner,
or watch.owner from the config when the flag is not given.

Deck ids are global: a deck without an id takes its file name, so two
owners' talk.md decks collide. Give shared file names an explicit id in the
deck (front matter "id:" for Markdown).

While watching, stored fingerprints are checked for drift and repaired every
integrity.interval (default 1h).

Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("owner", "", "owner for decks that do not name one")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch directory: %s is not a directory", dir)
	}

	owner, err := cmd.Flags().GetString("owner")
	if err != nil {
		return fmt.Errorf("getting owner flag: %w", err)
	}
	if owner == "" {
		settings, err := currentSettings()
		if err != nil {
			return err
		}
		owner = settings.Watch.Owner
	}

	w := watch.New(indexerService, dir, owner)
	if err := w.Open(); err != nil {
		return err
	}
	defer w.Close()

	stats, err := w.Sync(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Indexed %d deck(s): %s\n", len(w.Tracked()), formatStats(stats))
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)

	return withSweeper(cmd.Context(), w.Run)
}
