// Package ledger holds the ordered, in-memory log of stock transactions.
package ledger

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mamadbah2/kain/internal/domain/models"
)

// Ledger is an append-only sequence of transactions. Position in the
// sequence matters: running balances are computed in ledger order, not by date.
//
// A Ledger is safe for concurrent use. Mutations are serialized and every
// read returns a consistent snapshot.
type Ledger struct {
	mu       sync.RWMutex
	records  []models.Transaction
	lastID   int64
	now      func() time.Time
	validate *validator.Validate
}

// Option customizes a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now for id assignment and date defaulting.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		records:  make([]models.Transaction, 0),
		now:      time.Now,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append validates the draft, assigns it a fresh id and stores it at the end
// of the ledger. On a validation failure nothing is stored.
func (l *Ledger) Append(draft models.Draft) (models.Transaction, error) {
	draft.ItemName = strings.TrimSpace(draft.ItemName)
	draft.Quantity = strings.TrimSpace(draft.Quantity)
	draft.Direction = strings.ToUpper(strings.TrimSpace(draft.Direction))
	draft.Date = strings.TrimSpace(draft.Date)

	if err := l.validate.Struct(draft); err != nil {
		return models.Transaction{}, newValidationError(err)
	}

	qty, err := strconv.Atoi(draft.Quantity)
	if err != nil {
		return models.Transaction{}, &ValidationError{Fields: map[string]string{"Quantity": "must be a whole number"}}
	}

	direction := models.DirectionIn
	if draft.Direction != "" {
		direction = models.Direction(draft.Direction)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	date := draft.Date
	if date == "" {
		date = now.Format(models.DateLayout)
	}

	tx := models.Transaction{
		ID:        l.nextID(now),
		Date:      date,
		ItemName:  draft.ItemName,
		Customer:  draft.Customer,
		Address:   draft.Address,
		Direction: direction,
		Quantity:  qty,
	}
	l.records = append(l.records, tx)
	return tx, nil
}

// AppendBatch defaults every imported row and appends them in input order.
// Malformed fields are defaulted, never rejected.
func (l *Ledger) AppendBatch(rows []models.ImportRow) []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	today := now.Format(models.DateLayout)

	stored := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		tx := DefaultRow(row, today)
		tx.ID = l.nextID(now)
		stored = append(stored, tx)
	}
	l.records = append(l.records, stored...)
	return stored
}

// All returns a copy of the ledger in order.
func (l *Ledger) All() []models.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Transaction, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of stored transactions.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// DistinctItemNames returns one name per item, spelled as first seen,
// sorted ascending.
func (l *Ledger) DistinctItemNames() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]struct{}, len(l.records))
	names := make([]string, 0)
	for _, tx := range l.records {
		key := tx.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, tx.ItemName)
	}
	sort.Strings(names)
	return names
}

// nextID must be called with mu held.
func (l *Ledger) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id
	return id
}
