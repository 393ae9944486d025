// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package regenerateimage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/curioswitch/go-usegcp/middleware/firebaseauth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/curioswitch/recetta/internal/joblock"
	"github.com/curioswitch/recetta/internal/recipedb"
)

// Store fetches recipe documents.
type Store interface {
	Get(ctx context.Context, id string) (*recipedb.Recipe, error)
}

// Locks queues image regenerations.
type Locks interface {
	RequestRegen(ctx context.Context, id string, placeholderURL string) error
}

// NewHandler returns the regeneration handler. placeholderURL replaces
// the recipe image while the new one is queued, empty deletes it.
func NewHandler(store Store, locks Locks, placeholderURL string) *Handler {
	return &Handler{
		store:          store,
		locks:          locks,
		placeholderURL: placeholderURL,
	}
}

// Handler queues a manual image regeneration for a recipe owned by the
// authenticated user. Must be mounted behind firebaseauth middleware.
type Handler struct {
	store          Store
	locks          Locks
	placeholderURL string
}

type request struct {
	RecipeID string `json:"recipeId"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Use POST"})
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RecipeID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing recipeId"})
		return
	}

	uid := firebaseauth.TokenFromContext(ctx).UID

	recipe, err := h.store.Get(ctx, req.RecipeID)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "Recipe not found"})
			return
		}
		h.fail(ctx, w, err)
		return
	}
	if recipe.UserID != uid {
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "Forbidden"})
		return
	}

	if err := h.locks.RequestRegen(ctx, req.RecipeID, h.placeholderURL); err != nil {
		if errors.Is(err, joblock.ErrRegenLimit) {
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "regen_limit_reached"})
			return
		}
		h.fail(ctx, w, err)
		return
	}

	slog.InfoContext(ctx, "Image regeneration queued",
		slog.String("recipeId", req.RecipeID), slog.String("userId", uid))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	slog.ErrorContext(ctx, "Image regeneration request failed", slog.Any("error", err))
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"error":   "Failed",
		"details": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
