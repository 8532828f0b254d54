package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/mamadbah2/kain/internal/domain/models"
	"github.com/mamadbah2/kain/internal/ledger"
	"github.com/mamadbah2/kain/internal/service/stock"
	"github.com/mamadbah2/kain/internal/spreadsheet"
)

type summaryCmd struct {
	file  string
	item  string
	title string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the stock summary of a workbook" }
func (*summaryCmd) Usage() string {
	return `kainctl summary -f <file.xlsx> [-item <name>] [-title <business>]

  Imports the workbook into a fresh ledger and prints the balance of every item.
  Negative balances are flagged.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "workbook to read")
	f.StringVar(&c.item, "item", "", "restrict the summary to one item name")
	f.StringVar(&c.title, "title", "Stock Summary", "heading of the report")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -f is required")
		return subcommands.ExitUsageError
	}

	records, err := loadWorkbook(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	summaries := stock.TotalsByItem(records)
	if c.item != "" {
		summaries = []models.StockSummary{stock.ItemTotals(records, c.item)}
	}

	if err := printMarkdown(stockMarkdown(c.title, time.Now(), len(records), summaries)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// loadWorkbook imports path into a new ledger and returns its records.
func loadWorkbook(path string) ([]models.Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := spreadsheet.Import(file)
	if err != nil {
		return nil, err
	}

	l := ledger.New()
	l.AppendBatch(rows)
	return l.All(), nil
}

func stockMarkdown(title string, on time.Time, count int, summaries []models.StockSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%s, %d transactions\n\n", on.Format(models.DateLayout), count)

	if len(summaries) == 0 {
		b.WriteString("_No transactions._\n")
		return b.String()
	}

	b.WriteString("| No | Item | In | Out | Balance |\n")
	b.WriteString("|---:|:-----|---:|----:|--------:|\n")
	for i, s := range summaries {
		balance := fmt.Sprintf("%d", s.Balance)
		if s.Negative() {
			balance = "**" + balance + "**"
		}
		fmt.Fprintf(&b, "| %d | %s | %d | %d | %s |\n", i+1, tableCell(s.ItemName), s.TotalIn, s.TotalOut, balance)
	}

	if negative := stock.NegativeItems(summaries); len(negative) > 0 {
		names := make([]string, 0, len(negative))
		for _, s := range negative {
			names = append(names, s.ItemName)
		}
		fmt.Fprintf(&b, "\n> Negative stock: %s\n", strings.Join(names, ", "))
	}
	return b.String()
}

// tableCell keeps a user-typed name from splitting a markdown table row.
func tableCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func printMarkdown(md string) error {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
