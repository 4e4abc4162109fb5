package cli

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pacer/internal/adapters/driven/deckfile"
	"github.com/custodia-labs/pacer/internal/core/domain"
)

// maxParallelDecks bounds concurrent deck indexing.
const maxParallelDecks = 4

var indexCmd = &cobra.Command{
	Use:   "index <deck>...",
	Short: "Index slide decks",
	Long: `Index one or more deck files (.json, .yaml, .yml, .md).

Each deck is compared against what is already stored for it, so re-running
index on an unchanged deck writes nothing. Decks are indexed in parallel.

Deck ids are global: a deck without an id takes its file name, so two
owners' talk.md decks collide with an owner mismatch. Give shared file names
an explicit id in the deck (front matter "id:" for Markdown).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

var removeCmd = &cobra.Command{
	Use:   "remove <owner> <document>",
	Short: "Remove a deck from the index",
	Args:  cobra.ExactArgs(2),
	RunE:  runRemove,
}

func init() {
	indexCmd.Flags().String("owner", "", "owner for decks that do not name one")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(removeCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer not configured")
	}
	owner, err := cmd.Flags().GetString("owner")
	if err != nil {
		return fmt.Errorf("getting owner flag: %w", err)
	}

	var (
		mu    sync.Mutex
		total domain.IndexStats
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(maxParallelDecks)
	for _, path := range args {
		g.Go(func() error {
			doc, err := deckfile.Load(path, owner)
			if err != nil {
				return err
			}
			stats, err := indexerService.Reindex(ctx, *doc)
			if errors.Is(err, domain.ErrOwnerMismatch) {
				return fmt.Errorf("%s: deck id %q is taken by another owner, give the deck its own id: %w",
					path, doc.ID, err)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			mu.Lock()
			defer mu.Unlock()
			total.Add(stats)
			cmd.Printf("%s (%s): %s\n", doc.ID, doc.OwnerID, formatStats(stats))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	cmd.Printf("Indexed %d deck(s): %s\n", len(args), formatStats(total))
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer not configured")
	}

	stats, err := indexerService.OnDocumentDeleted(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	cmd.Printf("Removed %s: %d fingerprint(s)\n", args[1], stats.Deleted)
	return nil
}

func formatStats(s domain.IndexStats) string {
	return fmt.Sprintf("%d inserted, %d updated, %d deleted, %d unchanged",
		s.Inserted, s.Updated, s.Deleted, s.Unchanged)
}
