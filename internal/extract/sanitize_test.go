// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package extract

import (
	"strings"
	"testing"

	"github.com/curioswitch/recetta/internal/recipedb"
)

func TestSanitizeCategories(t *testing.T) {
	tests := []struct {
		in   string
		want recipedb.Category
	}{
		{"entrée", recipedb.CategoryStarter},
		{"Entree", recipedb.CategoryStarter},
		{"ENTRÉE", recipedb.CategoryStarter},
		{"plat", recipedb.CategoryMain},
		{"dessert", recipedb.CategoryDessert},
		{"Déssert", recipedb.CategoryDessert},
		{"boisson", recipedb.CategoryDrink},
		{"", recipedb.CategoryMain},
		{"apéritif", recipedb.CategoryMain},
		{"garbage", recipedb.CategoryMain},
	}
	for _, tt := range tests {
		got := Sanitize(map[string]any{"category": tt.in}).Category
		if got != tt.want {
			t.Errorf("Sanitize category %q = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"missing", nil, DefaultTitle},
		{"empty", "", DefaultTitle},
		{"whitespace", "   ", DefaultTitle},
		{"title cased", "tarte aux pommes", "Tarte Aux Pommes"},
		{"shouting normalized", "TARTE AUX POMMES", "Tarte Aux Pommes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := map[string]any{}
			if tt.in != nil {
				m["title"] = tt.in
			}
			if got := Sanitize(m).Title; got != tt.want {
				t.Errorf("title = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeTitleCapped(t *testing.T) {
	long := strings.Repeat("a", recipedb.MaxTitleLen+40)
	got := Sanitize(map[string]any{"title": long}).Title
	if len([]rune(got)) != recipedb.MaxTitleLen {
		t.Errorf("title length = %d, want %d", len([]rune(got)), recipedb.MaxTitleLen)
	}
}

func TestSanitizeServings(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"number", float64(4), 4},
		{"numeric string", "6 personnes", 6},
		{"rounded", 3.6, 4},
		{"negative clamped", float64(-2), 0},
		{"huge clamped", float64(900), 50},
		{"garbage", "beaucoup", 0},
		{"missing", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(map[string]any{"servings": tt.in}).Servings; got != tt.want {
				t.Errorf("servings = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSanitizeLists(t *testing.T) {
	var ings []any
	for range recipedb.MaxListItems + 10 {
		ings = append(ings, "farine")
	}
	rec := Sanitize(map[string]any{
		"ingredients": ings,
		"steps":       []any{"1) Couper les pommes", "2. Mélanger", " 3 - Cuire", "Servir"},
	})
	if len(rec.Ingredients) != recipedb.MaxListItems {
		t.Errorf("ingredients length = %d, want %d", len(rec.Ingredients), recipedb.MaxListItems)
	}
	wantSteps := []string{"Couper les pommes", "Mélanger", "Cuire", "Servir"}
	if len(rec.Steps) != len(wantSteps) {
		t.Fatalf("steps length = %d, want %d", len(rec.Steps), len(wantSteps))
	}
	for i, want := range wantSteps {
		if rec.Steps[i] != want {
			t.Errorf("step %d = %q, want %q", i, rec.Steps[i], want)
		}
	}
}

func TestSanitizeIngredientNoiseFiltered(t *testing.T) {
	rec := Sanitize(map[string]any{
		"ingredients": []any{
			"200 g de farine",
			"https://recettes.example.com",
			"scannez le QR code",
			"2 oeufs",
			"prix: 3€",
		},
	})
	want := []string{"200 g de farine", "2 oeufs"}
	if len(rec.Ingredients) != len(want) {
		t.Fatalf("ingredients = %v, want %v", rec.Ingredients, want)
	}
	for i := range want {
		if rec.Ingredients[i] != want[i] {
			t.Errorf("ingredient %d = %q, want %q", i, rec.Ingredients[i], want[i])
		}
	}
}

func TestSanitizeNonObject(t *testing.T) {
	rec := Sanitize("just a string")
	if rec.Title != DefaultTitle {
		t.Errorf("title = %q, want %q", rec.Title, DefaultTitle)
	}
	if rec.Category != recipedb.CategoryMain {
		t.Errorf("category = %q, want %q", rec.Category, recipedb.CategoryMain)
	}
}
