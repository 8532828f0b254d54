package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/kain/internal/config"
)

// rawInput keeps item names like "001" and dates as typed text.
const rawInput = "RAW"

var errEmptySheet = errors.New("sheet name must not be empty")

// Repository mirrors report tables into a Google spreadsheet.
type Repository interface {
	AppendRows(ctx context.Context, sheet string, rows [][]interface{}) error
	ReplaceSheet(ctx context.Context, sheet string, rows [][]interface{}) error
}

// GoogleSheetRepository implements Repository with the Sheets v4 API.
type GoogleSheetRepository struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository authenticates with a service account file.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	svc, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendRows adds rows below the last filled row of sheet.
func (r *GoogleSheetRepository) AppendRows(ctx context.Context, sheet string, rows [][]interface{}) error {
	sheet, err := sheetName(sheet)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	_, err = r.values.Append(r.spreadsheetID, sheet, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption(rawInput).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %d rows to %s: %w", len(rows), sheet, err)
	}

	r.logger.Debug("rows appended", zap.String("sheet", sheet), zap.Int("rows", len(rows)))
	return nil
}

// ReplaceSheet clears sheet and writes rows from A1.
func (r *GoogleSheetRepository) ReplaceSheet(ctx context.Context, sheet string, rows [][]interface{}) error {
	sheet, err := sheetName(sheet)
	if err != nil {
		return err
	}

	if _, err := r.values.Clear(r.spreadsheetID, sheet, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	_, err = r.values.Update(r.spreadsheetID, sheet+"!A1", &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption(rawInput).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write sheet %s: %w", sheet, err)
	}

	r.logger.Debug("sheet replaced", zap.String("sheet", sheet), zap.Int("rows", len(rows)))
	return nil
}

func sheetName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errEmptySheet
	}
	return s, nil
}
