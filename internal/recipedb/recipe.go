// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"time"

	"google.golang.org/genai"
)

// Category is one of the four service categories a recipe can belong to.
type Category string

const (
	CategoryStarter Category = "entrée"
	CategoryMain    Category = "plat"
	CategoryDessert Category = "dessert"
	CategoryDrink   Category = "boisson"
)

// AllCategories lists the allowed categories. Anything else is coerced to
// CategoryMain by the sanitizer.
var AllCategories = []Category{CategoryStarter, CategoryMain, CategoryDessert, CategoryDrink}

// ImageStatus tracks the lifecycle of the generated photo for a recipe.
type ImageStatus string

const (
	// ImageStatusAbsent is the zero value, before any generation has started.
	ImageStatusAbsent ImageStatus = ""
	// ImageStatusQueued marks a recipe waiting for a generation job.
	ImageStatusQueued ImageStatus = "queued"
	// ImageStatusProcessing marks a recipe with a running generation job.
	// At most one job may hold this status per recipe.
	ImageStatusProcessing ImageStatus = "processing"
	// ImageStatusReady marks a recipe with a stored, servable image.
	ImageStatusReady ImageStatus = "ready"
	// ImageStatusQuota marks a generation that failed on daily quota
	// exhaustion. Distinct from error so the client can message it.
	ImageStatusQuota ImageStatus = "quota"
	// ImageStatusError marks a generation that failed permanently.
	ImageStatusError ImageStatus = "error"
)

// MaxTitleLen is the cap applied to recipe titles.
const MaxTitleLen = 120

// MaxListItems caps ingredients and steps.
const MaxListItems = 40

// MaxSourceLen caps the free-form source field.
const MaxSourceLen = 160

// Record is the canonical structured recipe produced by extraction.
// It is created once per OCR submission and never mutated afterwards;
// the image pipeline only writes the image-job fields on Recipe.
type Record struct {
	// Title is the title of the recipe, 1-120 characters.
	Title string `firestore:"title" json:"title"`

	// Category is the service category of the recipe.
	Category Category `firestore:"category" json:"category"`

	// Servings is the number of servings, 0 when unknown.
	Servings int `firestore:"servings" json:"servings"`

	// Ingredients are the ingredients of the recipe with quantities as
	// free-form text.
	Ingredients []string `firestore:"ingredients" json:"ingredients"`

	// Steps are the steps to prepare the recipe.
	Steps []string `firestore:"steps" json:"steps"`

	// Tags are free-form tags for the recipe.
	Tags []string `firestore:"tags" json:"tags"`

	// Source is where the recipe was scanned from.
	Source string `firestore:"source" json:"source"`

	// PreparationTime is the preparation time as "X min" or "X h Y min".
	PreparationTime string `firestore:"preparationTime" json:"preparationTime"`

	// CookingTime is the cooking time in the same format.
	CookingTime string `firestore:"cookingTime" json:"cookingTime"`

	// EstimatedTime is the total time, derived from the two above when
	// both are well-formed.
	EstimatedTime string `firestore:"estimatedTime" json:"estimatedTime"`
}

// Recipe is a recipe document stored in Firestore: the extracted record,
// its owner, and the image-job state attached by the generation pipeline.
type Recipe struct {
	Record

	// ID is the unique identifier of the recipe.
	ID string `firestore:"id" json:"id"`

	// UserID is the ID of the user who created the recipe. Immutable.
	UserID string `firestore:"userId" json:"userId"`

	// ImageStatus is the state of the image generation job.
	ImageStatus ImageStatus `firestore:"imageStatus" json:"imageStatus,omitempty"`

	// ImageURL is the URL of the generated image. Set only when ready,
	// or when pointing at the configured placeholder.
	ImageURL string `firestore:"imageUrl" json:"imageUrl,omitempty"`

	// ImageIsPlaceholder is set when ImageURL points at the shared
	// placeholder rather than a generated image.
	ImageIsPlaceholder bool `firestore:"imageIsPlaceholder" json:"imageIsPlaceholder,omitempty"`

	// ImageError is the capped failure message for error/quota states.
	ImageError string `firestore:"imageError" json:"imageError,omitempty"`

	// ImageRegenCount counts accepted manual regeneration requests.
	ImageRegenCount int `firestore:"imageRegenCount" json:"imageRegenCount,omitempty"`

	// RegenNonce changes on every regeneration request so the update
	// watcher can tell a fresh request from a stale queued state.
	RegenNonce string `firestore:"regenNonce" json:"regenNonce,omitempty"`

	// ImageAttemptCount is the number of generation attempts made by the
	// last job run, including the fallback.
	ImageAttemptCount int `firestore:"imageAttemptCount" json:"imageAttemptCount,omitempty"`

	// ImageRejectReasons are the validator rejection reasons from the
	// last job run, in order.
	ImageRejectReasons []string `firestore:"imageRejectReasons" json:"imageRejectReasons,omitempty"`

	// ImageUpdatedAt is the server time of the last image-job transition.
	ImageUpdatedAt time.Time `firestore:"imageUpdatedAt" json:"-"`

	// ImageLeaseExpiresAt bounds how long a processing lock may be held
	// before the reaper reclaims it.
	ImageLeaseExpiresAt time.Time `firestore:"imageLeaseExpiresAt" json:"-"`
}

// HasGeneratedImage reports whether the recipe already carries a real
// generated image, as opposed to no image or the placeholder.
func (r *Recipe) HasGeneratedImage() bool {
	return r.ImageURL != "" && !r.ImageIsPlaceholder
}

// RecordSchema constrains the classification model's JSON output to the
// shape of Record.
var RecordSchema = &genai.Schema{
	Type:        "object",
	Description: "A structured recipe extracted from scanned text.",
	Required:    []string{"title", "category", "servings", "ingredients", "steps", "tags", "source", "preparationTime", "cookingTime"},
	Properties: map[string]*genai.Schema{
		"title": {
			Type:        "string",
			Description: "The exact name of the recipe.",
		},
		"category": {
			Type:        "string",
			Description: "One of: entrée, plat, dessert, boisson.",
			Enum:        []string{"entrée", "plat", "dessert", "boisson"},
		},
		"servings": {
			Type:        "integer",
			Description: "The number of servings, 0 when not mentioned.",
		},
		"ingredients": {
			Type:        "array",
			Description: "The ingredients with their quantities.",
			Items:       &genai.Schema{Type: "string"},
		},
		"steps": {
			Type:        "array",
			Description: "The preparation steps in order.",
			Items:       &genai.Schema{Type: "string"},
		},
		"tags": {
			Type:        "array",
			Description: "Free-form tags for the recipe.",
			Items:       &genai.Schema{Type: "string"},
		},
		"source": {
			Type:        "string",
			Description: "Where the recipe comes from, empty if unknown.",
		},
		"preparationTime": {
			Type:        "string",
			Description: `Preparation time as "X min" or "X h Y min", empty if absent.`,
		},
		"cookingTime": {
			Type:        "string",
			Description: `Cooking time as "X min" or "X h Y min", empty if absent.`,
		},
	},
}
