package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"github.com/arcanaland/planche/internal/config"
	"github.com/arcanaland/planche/internal/pipeline"
	"github.com/arcanaland/planche/internal/validator"
)

// terminalWidth returns the width of stdout, 80 when it is not a terminal
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetAllowedRowLength(terminalWidth())
	return tw
}

func printSummary(w io.Writer, p *config.Pipeline, stats *pipeline.Stats) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"", "Count"})
	tw.AppendRow(table.Row{"Cards read", stats.Cards})
	tw.AppendRow(table.Row{"Cards rendered", stats.Rendered})
	tw.AppendRow(table.Row{"Malformed lines", stats.Malformed})
	for _, reason := range []validator.Reason{validator.MissingPhoto, validator.UnknownType, validator.AlreadyRendered} {
		tw.AppendRow(table.Row{"Excluded: " + string(reason), stats.Rejected[reason]})
	}
	tw.AppendFooter(table.Row{"Output", humanize.Bytes(uint64(stats.Bytes))})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	tw.Render()

	if len(stats.Pages) == 0 {
		fmt.Fprintln(w, color.YellowString("No new page."))
		return
	}

	pages := make([]string, 0, len(stats.Pages))
	for _, n := range stats.Pages {
		pages = append(pages, strconv.Itoa(n))
	}
	verb := "Written"
	if stats.DryRun {
		verb = "Would write"
	}
	fmt.Fprintf(w, "%s %s %s\n", color.GreenString("✅"), color.CyanString("%s pages:", verb), color.HiWhiteString(strings.Join(pages, ", ")))
	for _, f := range stats.Files {
		fmt.Fprintln(w, "  "+f)
	}
	if !stats.DryRun {
		fmt.Fprintf(w, "%s %s\n", color.CyanString("Ledger:"), p.LedgerPath)
	}
}
