package receipt

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	summaryFilename = "Rapido_Bills_Summary.xlsx"
	summarySheet    = "Sheet1"
	maxColumnWidth  = 80
	dateFormat      = "yyyy-mm-dd hh:mm:ss"
	hyperlinkColor  = "0563C1"
)

var summaryHeaders = []string{
	"Original File",
	"Date",
	"Ride ID",
	"Vehicle Number",
	"Pickup Location",
	"Drop Location",
	"Fare Amount",
}

// Exporter writes the spreadsheet index for a batch of receipts
type Exporter interface {
	Export(path string, receipts []*Receipt) error
}

// XLSXExporter implements Exporter with an Excel workbook. The first column
// links every row to its receipt's document.
type XLSXExporter struct{}

// NewXLSXExporter creates a new XLSXExporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// summaryRow returns the cell values of a receipt in header order
func summaryRow(r *Receipt) []any {
	var date any = ""
	if r.RideTime != nil {
		date = *r.RideTime
	}
	return []any{r.SourceName, date, r.RideID, r.VehiclePlate, r.Pickup, r.Drop, r.Fare}
}

// renderedWidth is the number of characters a cell value takes when shown
func renderedWidth(v any) int {
	switch val := v.(type) {
	case string:
		return utf8.RuneCountInString(val)
	case float64:
		s := strconv.FormatFloat(val, 'f', -1, 64)
		if val == float64(int64(val)) {
			s += ".0"
		}
		return len(s)
	default:
		// date-times render as "2006-01-02 15:04:05"
		return 19
	}
}

// Export writes receipts to a workbook at path
func (e *XLSXExporter) Export(path string, receipts []*Receipt) error {
	f := excelize.NewFile()
	defer f.Close()

	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: hyperlinkColor, Underline: "single"},
	})
	if err != nil {
		return fmt.Errorf("creating hyperlink style: %w", err)
	}
	numFmt := dateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("creating date style: %w", err)
	}

	widths := make([]int, len(summaryHeaders))
	header := make([]any, len(summaryHeaders))
	for i, h := range summaryHeaders {
		header[i] = h
		widths[i] = utf8.RuneCountInString(h)
	}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range receipts {
		row := i + 2
		values := summaryRow(r)
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(summarySheet, cell, v); err != nil {
				return fmt.Errorf("writing cell %s: %w", cell, err)
			}
			widths[col] = max(widths[col], renderedWidth(v))
		}

		dateCell, err := excelize.CoordinatesToCellName(2, row)
		if err != nil {
			return err
		}
		if r.RideTime != nil {
			if err := f.SetCellStyle(summarySheet, dateCell, dateCell, dateStyle); err != nil {
				return fmt.Errorf("styling date: %w", err)
			}
		}

		linkCell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellHyperLink(summarySheet, linkCell, r.DestinationPath, "External"); err != nil {
			return fmt.Errorf("linking %s: %w", r.SourceName, err)
		}
		if err := f.SetCellStyle(summarySheet, linkCell, linkCell, linkStyle); err != nil {
			return fmt.Errorf("styling hyperlink: %w", err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(summarySheet, col, col, float64(min(w+2, maxColumnWidth))); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
