// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package processrecipe

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/curioswitch/recetta/internal/extract"
	"github.com/curioswitch/recetta/internal/recipedb"
)

// Extractor converts raw OCR text into a structured recipe record.
type Extractor interface {
	Extract(ctx context.Context, text string) (*recipedb.Record, error)
}

// NewHandler returns the OCR processing handler.
func NewHandler(extractor Extractor) *Handler {
	return &Handler{extractor: extractor}
}

// Handler turns raw OCR text into a structured recipe record.
type Handler struct {
	extractor Extractor
}

type request struct {
	Text string `json:"text"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Use POST"})
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing or invalid 'text'."})
		return
	}

	record, err := h.extractor.Extract(ctx, req.Text)
	if err != nil {
		if errors.Is(err, extract.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing or invalid 'text'."})
			return
		}
		slog.ErrorContext(ctx, "Recipe extraction failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "AI processing failed",
			"details": err.Error(),
		})
		return
	}

	slog.InfoContext(ctx, "Recipe extracted",
		slog.String("title", record.Title),
		slog.String("category", string(record.Category)))
	writeJSON(w, http.StatusOK, record)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
