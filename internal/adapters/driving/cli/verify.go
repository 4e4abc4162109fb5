package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check stored fingerprints for drift",
	Long: `Recompute the normalised title and content of every stored fingerprint
and report those that no longer match. With --repair, drifted fingerprints
are rewritten from their raw fields.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("owner", "", "check one owner (default: all)")
	verifyCmd.Flags().Bool("repair", false, "rewrite drifted fingerprints")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	if integrityService == nil {
		return errors.New("integrity service not configured")
	}
	owner, _ := cmd.Flags().GetString("owner")
	repair, _ := cmd.Flags().GetBool("repair")

	report, err := integrityService.Verify(cmd.Context(), owner, repair)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	cmd.Printf("Checked %d fingerprint(s)\n", report.Checked)
	if report.Clean() {
		cmd.Println("No drift found.")
		return nil
	}

	for _, fp := range report.Drifted {
		cmd.Printf("  drift: %s/%s (%s)\n", fp.SourceDocumentID, fp.SourceSlideID, fp.OwnerID)
	}
	if repair {
		cmd.Printf("Repaired %d of %d.\n", report.Repaired, len(report.Drifted))
		return nil
	}
	return fmt.Errorf("%d drifted fingerprint(s); run with --repair", len(report.Drifted))
}
