package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/zombor/receipt-processor/internal/points"
)

// maxReceiptSize bounds the request body of a receipt submission (1MB)
const maxReceiptSize = int64(1 << 20)

// Client facing error messages. Validation failures are never broken down
// by cause.
const (
	invalidReceiptMessage = "The receipt is invalid."
	notFoundMessage       = "No receipt found for that ID."
	internalErrorMessage  = "Internal server error"
)

type processResponse struct {
	ID string `json:"id"`
}

type pointsResponse struct {
	Points int `json:"points"`
}

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleProcessReceipt scores a submitted receipt and returns its new ID
func (s *Server) handleProcessReceipt(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxReceiptSize))
	if err != nil {
		slog.Debug("Error reading receipt body", "error", err)
		corsError(w, invalidReceiptMessage, http.StatusBadRequest)
		return
	}

	record, err := s.service.ProcessReceipt(data)
	if err != nil {
		if errors.Is(err, points.ErrInvalidReceipt) {
			corsError(w, invalidReceiptMessage, http.StatusBadRequest)
			return
		}
		slog.Error("Error processing receipt", "error", err)
		corsError(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, processResponse{ID: record.ID})
}

// handleGetPoints returns the points awarded to a receipt
func (s *Server) handleGetPoints(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, notFoundMessage, http.StatusNotFound)
		return
	}

	awarded, err := s.service.GetPoints(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			corsError(w, notFoundMessage, http.StatusNotFound)
			return
		}
		slog.Error("Error getting points", "id", id, "error", err)
		corsError(w, internalErrorMessage, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pointsResponse{Points: awarded})
}
