package scanning

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Fitz implements the Scanner interface using MuPDF
type Fitz struct{}

// NewFitz creates a new Fitz scanner
func NewFitz() *Fitz {
	return &Fitz{}
}

// ScanText extracts the text of every page, one page after another
func (f *Fitz) ScanText(pdfData []byte) (string, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	var text strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		pageText, err := doc.Text(page)
		if err != nil {
			return "", fmt.Errorf("extracting text from page %d: %w", page+1, err)
		}
		if pageText == "" {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}

	return text.String(), nil
}

// Close is a no-op, documents are closed after each scan
func (f *Fitz) Close() error {
	return nil
}
