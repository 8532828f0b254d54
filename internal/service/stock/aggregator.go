// Package stock derives balances from a ledger snapshot. Every function is
// pure and recomputes from the records it is given.
package stock

import (
	"errors"

	"github.com/mamadbah2/kain/internal/domain/models"
)

// ErrTransactionNotFound indicates the requested id is not in the records.
var ErrTransactionNotFound = errors.New("transaction not found")

// RunningBalance returns the stock of the item of transaction id as of that
// transaction's position. The result may be negative.
func RunningBalance(records []models.Transaction, id int64) (int, error) {
	idx := -1
	for i, tx := range records {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, ErrTransactionNotFound
	}

	key := records[idx].Key()
	balance := 0
	for _, tx := range records[:idx+1] {
		if tx.Key() == key {
			balance += tx.Direction.Sign() * tx.Quantity
		}
	}
	return balance, nil
}

// RunningBalances returns the running balance at every position, in one pass.
func RunningBalances(records []models.Transaction) []int {
	out := make([]int, len(records))
	totals := make(map[string]int)
	for i, tx := range records {
		key := tx.Key()
		totals[key] += tx.Direction.Sign() * tx.Quantity
		out[i] = totals[key]
	}
	return out
}

// TotalsByItem groups records by item, in first-seen order.
func TotalsByItem(records []models.Transaction) []models.StockSummary {
	index := make(map[string]int)
	summaries := make([]models.StockSummary, 0)

	for _, tx := range records {
		key := tx.Key()
		pos, ok := index[key]
		if !ok {
			pos = len(summaries)
			index[key] = pos
			summaries = append(summaries, models.StockSummary{ItemName: tx.ItemName})
		}

		s := &summaries[pos]
		if tx.Direction == models.DirectionIn {
			s.TotalIn += tx.Quantity
		} else {
			s.TotalOut += tx.Quantity
		}
		s.Balance = s.TotalIn - s.TotalOut
	}
	return summaries
}

// TotalsForFilteredSet computes TotalsByItem over a caller-selected subset.
func TotalsForFilteredSet(subset []models.Transaction) []models.StockSummary {
	return TotalsByItem(subset)
}

// ItemTotals returns the stock card of one item. Records are matched on
// the exact item name, the way the item selector filters them.
func ItemTotals(records []models.Transaction, itemName string) models.StockSummary {
	summary := models.StockSummary{ItemName: itemName}
	for _, tx := range records {
		if tx.ItemName != itemName {
			continue
		}
		if tx.Direction == models.DirectionIn {
			summary.TotalIn += tx.Quantity
		} else {
			summary.TotalOut += tx.Quantity
		}
	}
	summary.Balance = summary.TotalIn - summary.TotalOut
	return summary
}

// Filter keeps the records matching f, preserving order.
func Filter(records []models.Transaction, f models.TransactionFilter) []models.Transaction {
	out := make([]models.Transaction, 0, len(records))
	for _, tx := range records {
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// NegativeItems returns the oversold items.
func NegativeItems(summaries []models.StockSummary) []models.StockSummary {
	out := make([]models.StockSummary, 0)
	for _, s := range summaries {
		if s.Negative() {
			out = append(out, s)
		}
	}
	return out
}
