package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DateLayout is the calendar date format used for transaction dates.
const DateLayout = "2006-01-02"

// Direction tells whether a transaction adds stock or takes it away.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Sign returns +1 for IN and -1 for everything else.
func (d Direction) Sign() int {
	if d == DirectionIn {
		return 1
	}
	return -1
}

// Transaction is a single stock movement recorded in the ledger.
type Transaction struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	ItemName  string    `json:"itemName"`
	Customer  string    `json:"customer"`
	Address   string    `json:"address"`
	Direction Direction `json:"direction"`
	Quantity  int       `json:"quantity"`
}

// Key returns the grouping key of the transaction's item.
func (t Transaction) Key() string {
	return ItemKey(t.ItemName)
}

// Draft is a transaction as submitted by a user, before validation.
// Quantity is kept as entered.
type Draft struct {
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	ItemName  string `json:"itemName" validate:"required"`
	Customer  string `json:"customer"`
	Address   string `json:"address"`
	Direction string `json:"direction" validate:"omitempty,oneof=IN OUT"`
	Quantity  string `json:"quantity" validate:"required,numeric"`
}

// ImportRow holds the raw cell values of one imported spreadsheet row.
// Missing columns are left empty.
type ImportRow struct {
	Date      string
	ItemName  string
	Customer  string
	Address   string
	Direction string
	Quantity  string
}

// ItemKey normalizes an item name for case-insensitive grouping.
func ItemKey(name string) string {
	return cases.Lower(language.Und).String(name)
}

// StockSummary holds the derived totals of one item.
type StockSummary struct {
	ItemName string `json:"itemName"`
	TotalIn  int    `json:"totalIn"`
	TotalOut int    `json:"totalOut"`
	Balance  int    `json:"balance"`
}

// Negative reports whether the item is oversold.
func (s StockSummary) Negative() bool {
	return s.Balance < 0
}

// FilterAll disables the direction or item filter.
const FilterAll = "ALL"

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	Search    string
	Direction string
	Item      string
}

// Matches reports whether t passes every active criterion.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Direction != "" && f.Direction != FilterAll && string(t.Direction) != f.Direction {
		return false
	}
	if f.Item != "" && f.Item != FilterAll && t.ItemName != f.Item {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := ItemKey(f.Search)
	return strings.Contains(ItemKey(t.ItemName), needle) ||
		strings.Contains(ItemKey(t.Customer), needle) ||
		strings.Contains(ItemKey(t.Address), needle)
}
