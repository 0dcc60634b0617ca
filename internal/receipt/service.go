package receipt

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zombor/rapido-bills/internal/scanning"
)

// RefinedDirName is the sub-folder receiving renamed copies and the summary
const RefinedDirName = "Refined"

var (
	// ErrNoDocuments is returned when a folder holds no PDF files
	ErrNoDocuments = errors.New("no PDF files found in folder")
	// ErrNoReceipts is returned when none of the documents could be processed
	ErrNoReceipts = errors.New("no valid receipts were processed")
)

// IDGenerator generates unique IDs for receipts and batches
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles receipt operations
type Service struct {
	db          DB
	scanner     scanning.Scanner
	openStorage StorageFactory
	exporter    Exporter
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service writing refined copies to local storage
func NewService(db DB, scanner scanning.Scanner, exporter Exporter) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		openStorage: openLocalStorage,
		exporter:    exporter,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, openStorage StorageFactory, exporter Exporter, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		openStorage: openStorage,
		exporter:    exporter,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// listDocuments returns the PDF files directly inside folder, sorted by name
func listDocuments(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("reading folder: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// extractReceipt reads one document and returns the receipt found in it
func (s *Service) extractReceipt(path string) (*Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	text, err := s.scanner.ScanText(data)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", filepath.Base(path), err)
	}

	fields := scanning.ParseReceipt(scanning.NewReceiptText(text))
	return newReceipt(s.idGenerator.Generate(), filepath.Base(path), path, fields), nil
}

// ProcessFolder extracts every PDF receipt in folder, stores renamed copies
// in its Refined sub-folder and writes the spreadsheet summary there.
// Documents that fail are logged and recorded on the batch; only a batch
// without any receipt is an error.
func (s *Service) ProcessFolder(folder string) (*Batch, []*Receipt, error) {
	names, err := listDocuments(folder)
	if err != nil {
		return nil, nil, err
	}
	if len(names) == 0 {
		return nil, nil, ErrNoDocuments
	}

	refinedFolder := filepath.Join(folder, RefinedDirName)
	store, err := s.openStorage(refinedFolder)
	if err != nil {
		return nil, nil, fmt.Errorf("opening refined folder: %w", err)
	}

	now := s.timeSource.Now()
	batch := &Batch{
		ID:            s.idGenerator.Generate(),
		Folder:        folder,
		RefinedFolder: refinedFolder,
		ReceiptIDs:    []string{},
		Failures:      []Failure{},
		CreatedAt:     now,
	}

	receipts := make([]*Receipt, 0, len(names))
	var copied []string
	for _, name := range names {
		r, err := s.extractReceipt(filepath.Join(folder, name))
		if err == nil {
			var stored string
			stored, err = copyRefined(store, r)
			if stored != "" {
				copied = append(copied, stored)
			}
		}
		if err != nil {
			slog.Error("Failed to process receipt", "file", name, "error", err)
			batch.Failures = append(batch.Failures, Failure{File: name, Error: err.Error()})
			continue
		}

		r.BatchID = batch.ID
		r.CreatedAt = now
		receipts = append(receipts, r)
		batch.ReceiptIDs = append(batch.ReceiptIDs, r.ID)
	}

	if len(receipts) == 0 {
		return batch, nil, ErrNoReceipts
	}

	batch.SummaryPath = filepath.Join(refinedFolder, summaryFilename)
	if err := s.exporter.Export(batch.SummaryPath, receipts); err != nil {
		discardCopies(store, append(copied, summaryFilename))
		return nil, nil, fmt.Errorf("exporting summary: %w", err)
	}
	batch.TotalFare = totalFare(receipts)

	for _, r := range receipts {
		if err := s.db.SaveReceipt(r); err != nil {
			return nil, nil, fmt.Errorf("saving receipt to database: %w", err)
		}
	}
	if err := s.db.SaveBatch(batch); err != nil {
		return nil, nil, fmt.Errorf("saving batch to database: %w", err)
	}

	slog.Info("Processed receipts",
		"folder", folder,
		"receipts", len(receipts),
		"failures", len(batch.Failures),
		"summary", batch.SummaryPath,
	)

	return batch, receipts, nil
}

// discardCopies removes the files a failed batch left in the refined folder
// so that a later run numbers its copies from the same starting point
func discardCopies(store Storage, filenames []string) {
	for _, name := range filenames {
		if err := store.Remove(name); err != nil {
			slog.Warn("Failed to remove refined copy", "file", name, "error", err)
		}
	}
}

// GetReceipt retrieves a receipt by ID
func (s *Service) GetReceipt(id string) (*Receipt, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// ListReceipts returns all receipts
func (s *Service) ListReceipts() ([]*Receipt, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	return receipts, nil
}

// GetReceiptFile retrieves the document a receipt points at
func (s *Service) GetReceiptFile(id string) ([]byte, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}

	data, err := os.ReadFile(receipt.DestinationPath)
	if err != nil {
		return nil, fmt.Errorf("reading receipt file: %w", err)
	}
	return data, nil
}

// GetBatch retrieves a batch by ID
func (s *Service) GetBatch(id string) (*Batch, error) {
	batch, err := s.db.GetBatch(id)
	if err != nil {
		return nil, fmt.Errorf("getting batch: %w", err)
	}
	return batch, nil
}

// GetBatchWithReceipts retrieves a batch with its receipts
func (s *Service) GetBatchWithReceipts(id string) (*Batch, []*Receipt, error) {
	batch, err := s.db.GetBatch(id)
	if err != nil {
		return nil, nil, fmt.Errorf("getting batch: %w", err)
	}

	receipts := make([]*Receipt, 0, len(batch.ReceiptIDs))
	for _, receiptID := range batch.ReceiptIDs {
		receipt, err := s.db.GetReceipt(receiptID)
		if err != nil {
			return nil, nil, fmt.Errorf("getting receipt %s: %w", receiptID, err)
		}
		receipts = append(receipts, receipt)
	}

	return batch, receipts, nil
}

// GetBatchSummary returns the spreadsheet written for a batch
func (s *Service) GetBatchSummary(id string) ([]byte, error) {
	batch, err := s.db.GetBatch(id)
	if err != nil {
		return nil, fmt.Errorf("getting batch: %w", err)
	}

	data, err := os.ReadFile(batch.SummaryPath)
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	return data, nil
}

// ListBatches returns all batches
func (s *Service) ListBatches() ([]*Batch, error) {
	batches, err := s.db.ListBatches()
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	return batches, nil
}
