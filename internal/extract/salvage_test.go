// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package extract

import (
	"strings"
	"testing"

	"github.com/curioswitch/recetta/internal/recipedb"
)

func TestSalvageIngredientsFromBullets(t *testing.T) {
	raw := "Tarte aux pommes\n- 4 pommes\n- 200 g de farine\n• 100 g de sucre\npas une puce"
	rec := Salvage(recipedb.Record{}, raw)
	want := []string{"4 pommes", "200 g de farine", "100 g de sucre"}
	if len(rec.Ingredients) != len(want) {
		t.Fatalf("ingredients = %v, want %v", rec.Ingredients, want)
	}
	for i := range want {
		if rec.Ingredients[i] != want[i] {
			t.Errorf("ingredient %d = %q, want %q", i, rec.Ingredients[i], want[i])
		}
	}
}

func TestSalvageKeepsExistingIngredients(t *testing.T) {
	rec := Salvage(recipedb.Record{Ingredients: []string{"4 pommes"}}, "- 200 g de farine")
	if len(rec.Ingredients) != 1 || rec.Ingredients[0] != "4 pommes" {
		t.Errorf("ingredients = %v, want [4 pommes]", rec.Ingredients)
	}
}

func TestSalvageStepsFromParagraphs(t *testing.T) {
	raw := strings.Join([]string{
		"TARTE AUX POMMES MAISON", // all-caps heading, skipped
		"Coût",                    // metadata heading, skipped
		"3 - DESSERTS",            // chapter marker, skipped
		"trop court",              // below length threshold, skipped
		"Éplucher les pommes et les couper en fines lamelles régulières.",
		"Étaler la pâte dans le moule puis disposer les lamelles de pommes.",
	}, "\n\n")
	rec := Salvage(recipedb.Record{}, raw)
	if len(rec.Steps) != 2 {
		t.Fatalf("steps = %v, want 2 paragraphs", rec.Steps)
	}
	if !strings.HasPrefix(rec.Steps[0], "Éplucher les pommes") {
		t.Errorf("step 0 = %q", rec.Steps[0])
	}
}

func TestSalvageStepsCapped(t *testing.T) {
	paragraph := "Une étape suffisamment longue pour être retenue par le filtre."
	raw := strings.Repeat(paragraph+"\n\n", salvageMaxSteps+5)
	rec := Salvage(recipedb.Record{}, raw)
	if len(rec.Steps) != salvageMaxSteps {
		t.Errorf("steps length = %d, want %d", len(rec.Steps), salvageMaxSteps)
	}
}

func TestSalvageTimeFromText(t *testing.T) {
	rec := Salvage(recipedb.Record{}, "Laisser reposer 45 min avant de servir.")
	if rec.PreparationTime != "45 min" {
		t.Errorf("preparationTime = %q, want %q", rec.PreparationTime, "45 min")
	}

	rec = Salvage(recipedb.Record{CookingTime: "1 h"}, "Laisser reposer 45 min avant de servir.")
	if rec.PreparationTime != "" {
		t.Errorf("preparationTime = %q, want empty when a time already exists", rec.PreparationTime)
	}
}

func TestSalvageCorrectsRecoveredText(t *testing.T) {
	rec := Salvage(recipedb.Record{}, "- 2 càs de sucre")
	if len(rec.Ingredients) != 1 || rec.Ingredients[0] != "2 cuil. à soupe de sucre" {
		t.Errorf("ingredients = %v, want corrected spoon unit", rec.Ingredients)
	}
}
