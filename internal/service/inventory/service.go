package inventory

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/kain/internal/domain/models"
	"github.com/mamadbah2/kain/internal/ledger"
	"github.com/mamadbah2/kain/internal/service/stock"
	"github.com/mamadbah2/kain/internal/spreadsheet"
)

// Settings describes the business the tracker is running for.
type Settings struct {
	BusinessName string `json:"appName"`
	Subtitle     string `json:"subtitle"`
}

// TransactionView is a ledger record as listed to users.
type TransactionView struct {
	No int `json:"no"`
	models.Transaction
	RunningBalance int  `json:"runningBalance"`
	Negative       bool `json:"negative"`
}

// ImportResult reports how many rows a workbook import appended.
type ImportResult struct {
	InsertedCount int `json:"insertedCount"`
}

// Service is the application context that owns the session ledger.
type Service struct {
	ledger   *ledger.Ledger
	settings Settings
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a service around the given ledger.
func NewService(l *ledger.Ledger, settings Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if l == nil {
		l = ledger.New()
	}
	return &Service{ledger: l, settings: settings, logger: logger, now: time.Now}
}

// Settings returns the business settings.
func (s *Service) Settings() Settings {
	return s.settings
}

// AddTransaction validates and appends a user-submitted draft.
func (s *Service) AddTransaction(_ context.Context, draft models.Draft) (models.Transaction, error) {
	tx, err := s.ledger.Append(draft)
	if err != nil {
		s.logger.Debug("draft rejected", zap.String("item", draft.ItemName), zap.Error(err))
		return models.Transaction{}, err
	}

	s.logger.Info("transaction recorded",
		zap.Int64("id", tx.ID),
		zap.String("item", tx.ItemName),
		zap.String("direction", string(tx.Direction)),
		zap.Int("quantity", tx.Quantity))
	return tx, nil
}

// Transactions lists the ledger records matching f. Running balances are
// computed over the whole ledger, so filtering does not change them.
func (s *Service) Transactions(f models.TransactionFilter) []TransactionView {
	records := s.ledger.All()
	balances := stock.RunningBalances(records)

	views := make([]TransactionView, 0, len(records))
	for i, tx := range records {
		if !f.Matches(tx) {
			continue
		}
		views = append(views, TransactionView{
			No:             i + 1,
			Transaction:    tx,
			RunningBalance: balances[i],
			Negative:       balances[i] < 0,
		})
	}
	return views
}

// FilteredStock totals the records matching f per item. Unlike ItemStock it
// honors every filter, so the totals follow the listing the user is looking at.
func (s *Service) FilteredStock(f models.TransactionFilter) []models.StockSummary {
	return stock.TotalsForFilteredSet(stock.Filter(s.ledger.All(), f))
}

// RunningBalance returns the item balance as of transaction id.
func (s *Service) RunningBalance(id int64) (int, error) {
	return stock.RunningBalance(s.ledger.All(), id)
}

// StockSummary returns totals for every item in first-seen order.
func (s *Service) StockSummary() []models.StockSummary {
	return stock.TotalsByItem(s.ledger.All())
}

// ItemStock returns the stock card of a single item.
func (s *Service) ItemStock(itemName string) models.StockSummary {
	return stock.ItemTotals(s.ledger.All(), itemName)
}

// ItemNames returns the item selector choices.
func (s *Service) ItemNames() []string {
	return s.ledger.DistinctItemNames()
}

// Snapshot returns a copy of the whole ledger.
func (s *Service) Snapshot() []models.Transaction {
	return s.ledger.All()
}

// ImportWorkbook appends every row of the workbook in r. A file that cannot
// be read leaves the ledger untouched.
func (s *Service) ImportWorkbook(_ context.Context, r io.Reader) (ImportResult, error) {
	rows, err := spreadsheet.Import(r)
	if err != nil {
		s.logger.Warn("workbook import failed", zap.Error(err))
		return ImportResult{}, err
	}

	stored := s.ledger.AppendBatch(rows)
	s.logger.Info("workbook imported", zap.Int("inserted", len(stored)), zap.Int("ledger_size", s.ledger.Len()))
	return ImportResult{InsertedCount: len(stored)}, nil
}

// ExportWorkbook writes the report workbook to w and returns its file name.
func (s *Service) ExportWorkbook(_ context.Context, w io.Writer) (string, error) {
	records := s.ledger.All()
	name := spreadsheet.FileName(s.settings.BusinessName, s.now())

	if err := spreadsheet.WriteWorkbook(w, records); err != nil {
		return "", fmt.Errorf("export workbook: %w", err)
	}

	s.logger.Info("workbook exported", zap.String("file", name), zap.Int("transactions", len(records)))
	return name, nil
}
