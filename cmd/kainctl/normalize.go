package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/mamadbah2/kain/internal/spreadsheet"
)

type normalizeCmd struct {
	in  string
	out string
}

func (*normalizeCmd) Name() string     { return "normalize" }
func (*normalizeCmd) Synopsis() string { return "rewrite a workbook in the export layout" }
func (*normalizeCmd) Usage() string {
	return `kainctl normalize -f <in.xlsx> -o <out.xlsx>

  Imports a workbook with the usual defaults (missing dates become today,
  MASUK/KELUAR become IN/OUT) and writes it back with fresh ids, running
  balances and the StockSummary sheet.
`
}

func (c *normalizeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "f", "", "workbook to read")
	f.StringVar(&c.out, "o", "", "workbook to write")
}

func (c *normalizeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.in == "" || c.out == "" {
		fmt.Fprintln(os.Stderr, "Error: -f and -o are required")
		return subcommands.ExitUsageError
	}

	records, err := loadWorkbook(c.in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	file, err := os.Create(c.out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := spreadsheet.WriteWorkbook(file, records); err != nil {
		file.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := file.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("wrote %d transactions to %s\n", len(records), c.out)
	return subcommands.ExitSuccess
}
