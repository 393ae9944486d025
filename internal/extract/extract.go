// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package extract turns raw OCR text from a scanned recipe page into a
// validated recipe record: OCR repair, model classification, sanitization,
// and salvage of fields the model missed.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/curioswitch/recetta/internal/ocr"
	"github.com/curioswitch/recetta/internal/recipedb"
	"github.com/curioswitch/recetta/internal/retry"
)

// ErrInvalidInput is returned for missing or too-short OCR text.
var ErrInvalidInput = errors.New("extract: missing or invalid text")

// minTextLen is the minimum effective input length after trimming.
const minTextLen = 10

// callTimeout bounds a single classification call.
const callTimeout = 25 * time.Second

// ContentGenerator is the text-generation capability. *genai.Models
// satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewExtractor returns an Extractor classifying with the given model.
func NewExtractor(genAI ContentGenerator, model string) *Extractor {
	return &Extractor{
		genAI: genAI,
		model: model,
	}
}

// Extractor drives the OCR to record pipeline.
type Extractor struct {
	genAI ContentGenerator
	model string
}

// Extract runs the full pipeline on raw OCR text. The returned record is
// always well-formed on success; the only failures are invalid input,
// transport exhaustion, and unparseable model output.
func (e *Extractor) Extract(ctx context.Context, text string) (*recipedb.Record, error) {
	if len(strings.TrimSpace(text)) < minTextLen {
		return nil, ErrInvalidInput
	}

	cleaned := ocr.FilterShortLines(ocr.CorrectFrench(ocr.Normalize(text)))

	slog.InfoContext(ctx, "extract: cleaned OCR input", "length", len(cleaned))

	res, err := retry.Do(ctx, retry.ModelCall, func() (*genai.GenerateContentResponse, error) {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()
		return e.genAI.GenerateContent(callCtx, e.model, []*genai.Content{
			genai.NewContentFromText(classifyUserContent(cleaned), genai.RoleUser),
		}, &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(classifyInstruction, genai.RoleModel),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    recipedb.RecordSchema,
			Temperature:       genai.Ptr[float32](0),
			SafetySettings:    classifySafetySettings,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("extract: generating classification: %w", err)
	}

	parsed, err := SafeJSONParse(ModelText(res))
	if err != nil {
		return nil, err
	}

	rec := Sanitize(parsed)
	rec = Salvage(rec, cleaned)

	if rec.EstimatedTime == "" {
		rec.EstimatedTime = TotalTime(rec.PreparationTime, rec.CookingTime)
	}

	slog.InfoContext(ctx, "extract: classified recipe", "title", rec.Title, "category", rec.Category)
	return &rec, nil
}

var classifySafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
}

func classifyUserContent(cleaned string) string {
	return "TEXTE OCR À ANALYSER:\n\"\"\"\n" + cleaned + "\n\"\"\"\n\nIMPORTANT: Retourne UNIQUEMENT le JSON, rien d'autre."
}

const classifyInstruction = `
Tu es un expert culinaire français spécialisé dans la classification des recettes.

CATÉGORIES (choix OBLIGATOIRE parmi 4 uniquement): "entrée" | "plat" | "dessert" | "boisson"

RÈGLES:
- Si c'est une SOUPE/VELOUTÉ/POTAGE → TOUJOURS "entrée"
- Si c'est une SALADE (sans viande grillée comme plat principal) → "entrée"
- Si c'est une TERRINE/PÂTÉ → "entrée"
- Si c'est SUCRÉ → "dessert"
- Si c'est de la VIANDE/POISSON avec garniture → "plat"
- Si c'est un GRATIN/QUICHE → "plat"
- Si c'est à boire → "boisson"

EXEMPLES:
"Velouté de butternut" → "entrée" (c'est une soupe)
"Salade de chèvre chaud" → "entrée" (salade d'entrée)
"Carpaccio de bœuf" → "entrée" (plat froid d'entrée)
"Poulet rôti et pommes de terre" → "plat" (viande + garniture)
"Quiche lorraine" → "plat" (plat principal)
"Tarte au citron meringuée" → "dessert" (tarte sucrée)
"Smoothie mangue passion" → "boisson"

RÈGLES POUR LES TEMPS:
- Sépare préparation et cuisson s'ils sont mentionnés
- Format: "X min" ou "X h Y min"
- Si absent, laisse ""

RÈGLES POUR servings:
- Si le texte mentionne "pour X personnes / X pers / X portions / X couverts" => servings = X
- Sinon => 0

FORMAT JSON (retourne UNIQUEMENT ce JSON, sans texte avant/après, sans markdown):
{
  "title": "Nom exact de la recette",
  "category": "entrée | plat | dessert | boisson",
  "servings": 0,
  "ingredients": ["ingrédient 1 avec quantité", "ingrédient 2"],
  "steps": ["étape 1", "étape 2"],
  "tags": ["tag1", "tag2"],
  "source": "",
  "preparationTime": "",
  "cookingTime": ""
}
`
