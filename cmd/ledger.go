package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/arcanaland/planche/internal/ledger"
)

var ledgerPage int

// ledgerCmd represents the ledger command group
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the list of already rendered cards",
	Long:  `Commands for inspecting the ledger of cards that were already rendered.`,
}

// ledgerListCmd represents the ledger ls command
var ledgerListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List rendered cards by page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		l, err := ledger.Load(p.LedgerPath, log)
		if err != nil {
			return err
		}

		if l.Len() == 0 {
			fmt.Println("No card rendered yet.")
			fmt.Println("The ledger will be written to:", p.LedgerPath)
			return nil
		}

		entries := l.Entries()
		if cmd.Flags().Changed("page") {
			entries = l.Page(ledgerPage)
			if len(entries) == 0 {
				return fmt.Errorf("page %d not found in %s", ledgerPage, p.LedgerPath)
			}
		}

		tw := newTable(os.Stdout)
		tw.AppendHeader(table.Row{"Page", "Number", "Title"})
		for _, e := range entries {
			tw.AppendRow(table.Row{e.Page, e.Number, e.Title})
		}
		tw.AppendFooter(table.Row{"", len(entries), fmt.Sprintf("last page %d", l.MaxPage())})
		tw.Render()
		return nil
	},
}

func init() {
	RootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerListCmd)

	ledgerListCmd.Flags().IntVarP(&ledgerPage, "page", "p", 0, "Only list the cards of this page")
}
