package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pacer/internal/core/domain"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest a duration for a slide",
	Long: `Suggest a duration for a slide from your own timed slides.

Only slides with a near-identical title and content are used. When there
are none, no suggestion is made.`,
	Example: `  pacer suggest --owner alice --title "Introduction to ML" \
    --content "What is ML" --content "Supervised vs unsupervised"`,
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().String("owner", "", "owner whose history to search (required)")
	suggestCmd.Flags().String("title", "", "slide title (required)")
	suggestCmd.Flags().StringArray("content", nil, "content fragment, repeatable")
	suggestCmd.Flags().Bool("json", false, "print the suggestion as JSON")
	_ = suggestCmd.MarkFlagRequired("owner")
	_ = suggestCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(suggestCmd)
}

// suggestOutput is the --json shape.
type suggestOutput struct {
	Found      bool                       `json:"found"`
	Rounded    *domain.RoundedSuggestion  `json:"rounded,omitempty"`
	Statistics *domain.DurationSuggestion `json:"statistics,omitempty"`
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	if suggestionService == nil {
		return errors.New("suggestion service not configured")
	}

	owner, _ := cmd.Flags().GetString("owner")
	title, _ := cmd.Flags().GetString("title")
	content, _ := cmd.Flags().GetStringArray("content")
	asJSON, _ := cmd.Flags().GetBool("json")
	if content == nil {
		content = []string{}
	}

	suggestion, err := suggestionService.Suggest(cmd.Context(), domain.SuggestionRequest{
		OwnerID: owner,
		Title:   title,
		Content: content,
	})
	if err != nil {
		return ownerError(owner, err)
	}

	if asJSON {
		out := suggestOutput{Found: suggestion != nil}
		if suggestion != nil {
			rounded := suggestion.Rounded()
			out.Rounded = &rounded
			out.Statistics = suggestion
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if suggestion == nil {
		cmd.Println("No suggestion: no similar timed slides found.")
		return nil
	}

	r := suggestion.Rounded()
	bold := color.New(color.Bold).SprintFunc()
	cmd.Printf("Suggested duration: %s (median %d, range %d-%d min)\n",
		bold(fmt.Sprintf("%d min", r.AverageDuration)), r.MedianDuration, r.P25, r.P75)
	cmd.Printf("Confidence: %s from %d similar slide(s), cv %.2f\n",
		confidenceColor(r.Confidence)(string(r.Confidence)), r.SampleSize, suggestion.CoefficientOfVariation)
	cmd.Printf("Similarity: title %.2f, content %.2f\n",
		suggestion.AvgTitleSimilarity, suggestion.AvgContentSimilarity)
	return nil
}

func confidenceColor(c domain.Confidence) func(a ...any) string {
	switch c {
	case domain.ConfidenceHigh:
		return color.New(color.FgGreen).SprintFunc()
	case domain.ConfidenceMedium:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgRed).SprintFunc()
	}
}
