package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/kain/internal/domain/models"
	"github.com/mamadbah2/kain/internal/repository/mongodb"
	repo "github.com/mamadbah2/kain/internal/repository/sheets"
	"github.com/mamadbah2/kain/internal/service/stock"
	"github.com/mamadbah2/kain/internal/spreadsheet"
)

var (
	// ErrArchiveDisabled indicates no report archive is configured.
	ErrArchiveDisabled = errors.New("report archive is not configured")
	// ErrNoReport indicates the archive holds no report yet.
	ErrNoReport = errors.New("no stock report archived yet")
)

// SnapshotSource hands out a consistent copy of the ledger.
type SnapshotSource interface {
	Snapshot() []models.Transaction
}

// Service builds stock reports and publishes them to the optional sinks.
type Service struct {
	source       SnapshotSource
	sheets       repo.Repository
	archive      mongodb.Repository
	businessName string
	logger       *zap.Logger
	now          func() time.Time
}

// NewService wires a new reporting service instance. sheets and archive may be nil.
func NewService(source SnapshotSource, sheets repo.Repository, archive mongodb.Repository, businessName string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:       source,
		sheets:       sheets,
		archive:      archive,
		businessName: businessName,
		logger:       logger,
		now:          time.Now,
	}
}

// ReportLogSheet receives one line per published report.
const ReportLogSheet = "ReportLog"

// buildReport derives the report of one ledger snapshot.
func (s *Service) buildReport(records []models.Transaction) models.StockReport {
	summaries := stock.TotalsByItem(records)
	now := s.now()

	return models.StockReport{
		Date:             now,
		BusinessName:     s.businessName,
		TransactionCount: len(records),
		Items:            summaries,
		NegativeItems:    stock.NegativeItems(summaries),
		CreatedAt:        now.UTC(),
	}
}

// Publish builds a report, archives it and mirrors the tables to Google Sheets.
// Every sink is attempted; the first failure is returned.
func (s *Service) Publish(ctx context.Context) (models.StockReport, error) {
	records := s.source.Snapshot()
	report := s.buildReport(records)
	var firstErr error

	if s.archive != nil {
		if err := s.archive.SaveStockReport(ctx, report); err != nil {
			s.logger.Error("failed to archive stock report", zap.Error(err))
			firstErr = fmt.Errorf("archive report: %w", err)
		}
	}

	if s.sheets != nil {
		if err := s.mirror(ctx, report, records); err != nil {
			s.logger.Error("failed to mirror report to sheets", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	s.logger.Info("stock report published",
		zap.Int("items", len(report.Items)),
		zap.Int("negative_items", len(report.NegativeItems)),
		zap.Int("transactions", report.TransactionCount))
	return report, firstErr
}

func (s *Service) mirror(ctx context.Context, report models.StockReport, records []models.Transaction) error {
	if err := s.sheets.ReplaceSheet(ctx, spreadsheet.SummarySheet, spreadsheet.SummaryRows(report.Items)); err != nil {
		return fmt.Errorf("mirror summary: %w", err)
	}
	if err := s.sheets.ReplaceSheet(ctx, spreadsheet.TransactionsSheet, spreadsheet.TransactionRows(records)); err != nil {
		return fmt.Errorf("mirror transactions: %w", err)
	}
	if err := s.sheets.AppendRows(ctx, ReportLogSheet, [][]interface{}{reportLogRow(report)}); err != nil {
		return fmt.Errorf("append report log: %w", err)
	}
	return nil
}

// LatestReport returns the most recently archived stock report.
func (s *Service) LatestReport(ctx context.Context) (models.StockReport, error) {
	if s.archive == nil {
		return models.StockReport{}, ErrArchiveDisabled
	}

	report, err := s.archive.LatestStockReport(ctx)
	if err != nil {
		return models.StockReport{}, fmt.Errorf("load latest report: %w", err)
	}
	if report == nil {
		return models.StockReport{}, ErrNoReport
	}
	return *report, nil
}

func reportLogRow(report models.StockReport) []interface{} {
	return []interface{}{
		report.Date.Format(models.DateLayout),
		report.TransactionCount,
		len(report.Items),
		len(report.NegativeItems),
	}
}

// FormatSummary renders summaries as a plain-text chat message.
func FormatSummary(businessName string, on time.Time, summaries []models.StockSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock %s (%s)", businessName, on.Format(models.DateLayout))

	if len(summaries) == 0 {
		b.WriteString(": no transactions yet.")
		return b.String()
	}

	for i, sm := range summaries {
		fmt.Fprintf(&b, "\n%d. %s: %d (in %d, out %d)", i+1, sm.ItemName, sm.Balance, sm.TotalIn, sm.TotalOut)
		if sm.Negative() {
			b.WriteString(" MINUS")
		}
	}
	return b.String()
}

// FormatItem renders a single item's stock card.
func FormatItem(sm models.StockSummary) string {
	if sm.TotalIn == 0 && sm.TotalOut == 0 {
		return fmt.Sprintf("%s: no transactions recorded.", sm.ItemName)
	}
	msg := fmt.Sprintf("%s: balance %d (in %d, out %d).", sm.ItemName, sm.Balance, sm.TotalIn, sm.TotalOut)
	if sm.Negative() {
		msg += " Stock is negative."
	}
	return msg
}

// FormatAlert renders the oversold warning, or "" when nothing is negative.
func FormatAlert(report models.StockReport) string {
	if len(report.NegativeItems) == 0 {
		return ""
	}
	names := make([]string, 0, len(report.NegativeItems))
	for _, sm := range report.NegativeItems {
		names = append(names, fmt.Sprintf("%s (%d)", sm.ItemName, sm.Balance))
	}
	return fmt.Sprintf("Negative stock at %s: %s", report.BusinessName, strings.Join(names, ", "))
}
