// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package processrecipe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/curioswitch/recetta/internal/extract"
	"github.com/curioswitch/recetta/internal/recipedb"
)

type fakeExtractor struct {
	rec *recipedb.Record
	err error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (*recipedb.Record, error) {
	return f.rec, f.err
}

func TestServeHTTPMethodNotAllowed(t *testing.T) {
	h := NewHandler(&fakeExtractor{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/process-recipe", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestServeHTTPInvalidBody(t *testing.T) {
	h := NewHandler(&fakeExtractor{err: extract.ErrInvalidInput})
	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json"},
		{"short text", `{"text":"trop"}`},
		{"missing text", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/process-recipe", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestServeHTTPSuccess(t *testing.T) {
	h := NewHandler(&fakeExtractor{rec: &recipedb.Record{
		Title:    "Tarte Aux Pommes",
		Category: recipedb.CategoryDessert,
		Servings: 6,
	}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/process-recipe",
		strings.NewReader(`{"text":"Tarte aux pommes avec 4 pommes"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got recipedb.Record
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Title != "Tarte Aux Pommes" || got.Category != recipedb.CategoryDessert || got.Servings != 6 {
		t.Errorf("response = %+v", got)
	}
}

func TestServeHTTPModelFailure(t *testing.T) {
	h := NewHandler(&fakeExtractor{err: errors.New("genai is down")})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/process-recipe",
		strings.NewReader(`{"text":"Tarte aux pommes avec 4 pommes"}`)))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["error"] != "AI processing failed" {
		t.Errorf("error = %v, want %q", body["error"], "AI processing failed")
	}
	if body["details"] != "genai is down" {
		t.Errorf("details = %v", body["details"])
	}
}
