package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/kain/internal/domain/models"
	"github.com/mamadbah2/kain/internal/service/stock"
)

// Export builds the two-sheet report workbook. The caller must Close it.
func Export(records []models.Transaction) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), TransactionsSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename first sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}

	if err := writeRows(f, TransactionsSheet, TransactionRows(records)); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeRows(f, SummarySheet, SummaryRows(stock.TotalsByItem(records))); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteWorkbook writes the report workbook for records to w.
func WriteWorkbook(w io.Writer, records []models.Transaction) error {
	f, err := Export(records)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell for row %d: %w", i+1, err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// Import reads the first sheet of the workbook in r. Each non-blank row after
// the header becomes one ImportRow. Columns are found by exact header text;
// missing columns leave the field empty.
func Import(r io.Reader) ([]models.ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ImportParseError{Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ImportParseError{Err: fmt.Errorf("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ImportParseError{Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}
	if len(rows) == 0 {
		return []models.ImportRow{}, nil
	}
	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ImportParseError{Err: fmt.Errorf("read raw values of %q: %w", sheets[0], err)}
	}
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	cell := func(row []string, header string) string {
		idx, ok := columns[header]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	out := make([]models.ImportRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		var rawRow []string
		if i+1 < len(raw) {
			rawRow = raw[i+1]
		}
		out = append(out, models.ImportRow{
			Date:      normalizeDate(cell(row, ColDate), cell(rawRow, ColDate), date1904),
			ItemName:  cell(row, ColItemName),
			Customer:  cell(row, ColCustomer),
			Address:   cell(row, ColAddress),
			Direction: cell(row, ColDirection),
			Quantity:  cell(row, ColQuantity),
		})
	}
	return out, nil
}

// normalizeDate rewrites a date-formatted cell to DateLayout. Such a cell
// displays something like "1/2/25" but stores an Excel serial number.
// Text cells and plain numbers come back unchanged.
func normalizeDate(display, raw string, date1904 bool) string {
	if display == raw {
		return display
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return display
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return display
	}
	return t.Format(models.DateLayout)
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
