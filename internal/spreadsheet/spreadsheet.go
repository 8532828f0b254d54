// Package spreadsheet converts between the ledger and xlsx workbooks.
//
// An exported workbook has two sheets. Sheet "Transactions" lists the
// ledger in order, with the running balance of each row. Sheet
// "StockSummary" lists the totals per item. Import reads the first sheet
// back using the Transactions headers.
package spreadsheet

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mamadbah2/kain/internal/domain/models"
	"github.com/mamadbah2/kain/internal/service/stock"
)

const (
	TransactionsSheet = "Transactions"
	SummarySheet      = "StockSummary"

	ColNo             = "No"
	ColDate           = "Date"
	ColItemName       = "ItemName"
	ColCustomer       = "Customer"
	ColAddress        = "Address"
	ColDirection      = "Direction"
	ColQuantity       = "Quantity"
	ColRunningBalance = "RunningBalance"
	ColTotalIn        = "TotalIn"
	ColTotalOut       = "TotalOut"
	ColBalance        = "Balance"

	emptyCustomer = "-"
)

// TransactionHeaders is the header row of the Transactions sheet.
var TransactionHeaders = []string{ColNo, ColDate, ColItemName, ColCustomer, ColAddress, ColDirection, ColQuantity, ColRunningBalance}

// SummaryHeaders is the header row of the StockSummary sheet.
var SummaryHeaders = []string{ColNo, ColItemName, ColTotalIn, ColTotalOut, ColBalance}

// ErrImportParse indicates the uploaded file is not a readable workbook.
var ErrImportParse = errors.New("unreadable workbook")

// ImportParseError wraps the reason a workbook could not be read.
type ImportParseError struct {
	Err error
}

func (e *ImportParseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrImportParse, e.Err)
}

func (e *ImportParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrImportParse) true for any *ImportParseError.
func (e *ImportParseError) Is(target error) bool {
	return target == ErrImportParse
}

// FileName returns the export file name for businessName on the given day.
func FileName(businessName string, on time.Time) string {
	name := strings.Join(strings.Fields(businessName), "_")
	return fmt.Sprintf("Report_%s_%s.xlsx", name, on.Format(models.DateLayout))
}

// TransactionRows renders the Transactions table, header included.
func TransactionRows(records []models.Transaction) [][]interface{} {
	balances := stock.RunningBalances(records)

	rows := make([][]interface{}, 0, len(records)+1)
	rows = append(rows, headerRow(TransactionHeaders))
	for i, tx := range records {
		customer := tx.Customer
		if customer == "" {
			customer = emptyCustomer
		}
		rows = append(rows, []interface{}{
			i + 1,
			tx.Date,
			tx.ItemName,
			customer,
			tx.Address,
			string(tx.Direction),
			tx.Quantity,
			balances[i],
		})
	}
	return rows
}

// SummaryRows renders the StockSummary table, header included.
func SummaryRows(summaries []models.StockSummary) [][]interface{} {
	rows := make([][]interface{}, 0, len(summaries)+1)
	rows = append(rows, headerRow(SummaryHeaders))
	for i, s := range summaries {
		rows = append(rows, []interface{}{i + 1, s.ItemName, s.TotalIn, s.TotalOut, s.Balance})
	}
	return rows
}

func headerRow(headers []string) []interface{} {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}
