// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import "testing"

func TestFoldDiacritics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"velouté", "veloute"},
		{"entrée", "entree"},
		{"pâtes fraîches", "pates fraiches"},
		{"no accents", "no accents"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FoldDiacritics(tt.in); got != tt.want {
			t.Errorf("FoldDiacritics(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"entrée", CategoryStarter},
		{"ENTREE", CategoryStarter},
		{" plat ", CategoryMain},
		{"Dessert", CategoryDessert},
		{"boisson", CategoryDrink},
		{"", CategoryMain},
		{"accompagnement", CategoryMain},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.in); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHasGeneratedImage(t *testing.T) {
	tests := []struct {
		name   string
		recipe Recipe
		want   bool
	}{
		{"no image", Recipe{}, false},
		{"real image", Recipe{ImageURL: "https://example.com/i.jpg"}, true},
		{"placeholder", Recipe{ImageURL: "https://example.com/p.png", ImageIsPlaceholder: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.recipe.HasGeneratedImage(); got != tt.want {
				t.Errorf("HasGeneratedImage() = %t, want %t", got, tt.want)
			}
		})
	}
}
