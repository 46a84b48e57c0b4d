package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arcanaland/planche/internal/pipeline"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the description file and photos without rendering",
	Long: `Validate reads the description file, the photo directory and the ledger, then reports
malformed description lines as errors and excluded cards as warnings.
Nothing is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		batch, err := pipeline.Prepare(p, log)
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}

		var warnings []string
		for _, rej := range batch.Results.Rejected {
			warnings = append(warnings, fmt.Sprintf("card %d (%s): %s", rej.Card.Number, rej.Card.Title, rej.Reason))
		}
		described := make(map[int]bool, len(batch.Deck.Cards))
		for _, c := range batch.Deck.Cards {
			described[c.Number] = true
		}
		for _, n := range batch.Photos.Numbers() {
			if !described[n] {
				path, _ := batch.Photos.Lookup(n)
				warnings = append(warnings, fmt.Sprintf("photo %s has no description", path))
			}
		}

		fmt.Println("Validation Results:")
		fmt.Println("-------------------")

		if len(batch.Deck.Issues) == 0 {
			fmt.Printf("✅ %d cards read, %d ready to render.\n", len(batch.Deck.Cards), len(batch.Results.Accepted))
		} else {
			fmt.Printf("❌ %d malformed description lines:\n", len(batch.Deck.Issues))
			for i, issue := range batch.Deck.Issues {
				fmt.Printf("%d. %s\n", i+1, issue)
			}
		}

		if len(warnings) > 0 {
			fmt.Println("\nWarnings:")
			for i, warn := range warnings {
				fmt.Printf("%d. %s\n", i+1, warn)
			}
		}

		if len(batch.Deck.Issues) > 0 {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}
