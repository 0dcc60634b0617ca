package scanning

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PlainText implements the Scanner interface with a pure Go PDF reader.
// Documents are validated with pdfcpu first so that corrupt files fail
// with a readable error instead of a partial text dump.
type PlainText struct {
	conf *model.Configuration
}

// NewPlainText creates a new PlainText scanner
func NewPlainText() *PlainText {
	// pdfcpu would otherwise create a config dir under the user's home
	api.DisableConfigDir()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &PlainText{conf: conf}
}

// ScanText validates the document and returns its text row by row
func (p *PlainText) ScanText(pdfData []byte) (string, error) {
	if err := api.Validate(bytes.NewReader(pdfData), p.conf); err != nil {
		return "", fmt.Errorf("validating PDF: %w", err)
	}

	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	var text strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		rows, err := pageRows(page)
		if err != nil {
			return "", fmt.Errorf("reading text of page %d: %w", pageIndex, err)
		}
		for _, row := range rows {
			text.WriteString(row)
			text.WriteString("\n")
		}
	}

	return text.String(), nil
}

// rowTolerance is how far apart, in points, two glyphs' baselines may be
// while still belonging to the same line
const rowTolerance = 2.0

// pageRows returns the page's lines top to bottom. Glyphs are grouped by
// their own baseline rather than by text object, so a block that moves
// between lines with Td or T* still yields one row per line.
func pageRows(page pdf.Page) (rows []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed content stream: %v", r)
		}
	}()

	glyphs := page.Content().Text
	sort.Stable(pdf.TextVertical(glyphs))

	var row []pdf.Text
	flush := func() {
		if len(row) == 0 {
			return
		}
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		var line strings.Builder
		for _, g := range row {
			line.WriteString(g.S)
		}
		rows = append(rows, line.String())
		row = row[:0]
	}

	for _, g := range glyphs {
		if g.S == "" || strings.ContainsAny(g.S, "\r\n") {
			continue
		}
		if len(row) > 0 && math.Abs(row[0].Y-g.Y) > rowTolerance {
			flush()
		}
		row = append(row, g)
	}
	flush()

	return rows, nil
}

// Close is a no-op for the plain text reader
func (p *PlainText) Close() error {
	return nil
}
