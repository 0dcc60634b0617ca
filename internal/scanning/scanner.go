package scanning

import (
	"fmt"
	"time"
)

// ReceiptData contains the fields extracted from a ride receipt
type ReceiptData struct {
	RideTime     *time.Time // nil when no date could be parsed
	RideID       string
	VehiclePlate string
	Pickup       string
	Drop         string
	Fare         float64 // 0 when no fare was found
}

// Scanner defines the interface for pulling raw text out of a receipt document
type Scanner interface {
	// ScanText returns the extractable text of a PDF document
	ScanText(pdfData []byte) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}

const (
	EngineFitz  = "fitz"
	EnginePlain = "pdf"
)

// NewScanner returns the scanner registered under engine
func NewScanner(engine string) (Scanner, error) {
	switch engine {
	case EngineFitz, "":
		return NewFitz(), nil
	case EnginePlain:
		return NewPlainText(), nil
	default:
		return nil, fmt.Errorf("unknown text engine %q (valid: %s, %s)", engine, EngineFitz, EnginePlain)
	}
}
