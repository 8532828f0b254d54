package ledger

import (
	"strconv"
	"strings"

	"github.com/mamadbah2/kain/internal/domain/models"
)

// emptyCustomer is how a missing customer is written in exported sheets.
const emptyCustomer = "-"

// DefaultRow turns a raw imported row into a transaction without an id.
// today is used when the row has no date.
func DefaultRow(row models.ImportRow, today string) models.Transaction {
	date := strings.TrimSpace(row.Date)
	if date == "" {
		date = today
	}

	customer := row.Customer
	if customer == emptyCustomer {
		customer = ""
	}

	return models.Transaction{
		Date:      date,
		ItemName:  row.ItemName,
		Customer:  customer,
		Address:   row.Address,
		Direction: ParseDirection(row.Direction),
		Quantity:  ParseQuantity(row.Quantity),
	}
}

// ParseDirection maps an imported direction cell to a Direction.
// Empty cells count as IN and unknown values as OUT.
func ParseDirection(value string) models.Direction {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "IN", "MASUK":
		return models.DirectionIn
	default:
		return models.DirectionOut
	}
}

// ParseQuantity reads the leading integer of value, or 0 when there is none.
func ParseQuantity(value string) int {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}

	end := 0
	if end < len(value) && (value[end] == '-' || value[end] == '+') {
		end++
	}
	digits := end
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}

	n, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}
	return n
}
