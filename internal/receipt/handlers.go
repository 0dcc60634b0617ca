package receipt

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON encodes v with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleListReceipts returns a list of all receipts
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.service.ListReceipts()
	if err != nil {
		slog.Error("Error listing receipts", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, receipts)
}

// handleGetReceipt returns a single receipt
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.service.GetReceipt(r.PathValue("id"))
	if err != nil {
		corsError(w, "Receipt not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

// handleGetReceiptFile returns the PDF a receipt points at
func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.GetReceiptFile(r.PathValue("id"))
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Write(data)
}

// handleCreateBatch processes a folder of receipts
func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Folder string `json:"folder"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Folder == "" {
		jsonError(w, "folder is required", http.StatusBadRequest)
		return
	}

	batch, receipts, err := s.service.ProcessFolder(filepath.Clean(req.Folder))
	if err != nil {
		slog.Error("Error processing folder", "folder", req.Folder, "error", err)
		code := http.StatusInternalServerError
		if errors.Is(err, ErrNoDocuments) || errors.Is(err, ErrNoReceipts) {
			code = http.StatusUnprocessableEntity
		}
		jsonError(w, err.Error(), code)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"batch":    batch,
		"receipts": receipts,
	})
}

// handleListBatches returns a list of all batches
func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := s.service.ListBatches()
	if err != nil {
		slog.Error("Error listing batches", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, batches)
}

// handleGetBatch returns a batch with its receipts
func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	batch, receipts, err := s.service.GetBatchWithReceipts(r.PathValue("id"))
	if err != nil {
		corsError(w, "Batch not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"batch":    batch,
		"receipts": receipts,
	})
}

// handleGetBatchSummary returns the batch spreadsheet
func (s *Server) handleGetBatchSummary(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.GetBatchSummary(r.PathValue("id"))
	if err != nil {
		corsError(w, "Summary not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+summaryFilename+`"`)
	w.Write(data)
}
