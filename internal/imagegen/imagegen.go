// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package imagegen runs the image generation job for one recipe:
// compile the prompt, call the image model, validate the result with a
// vision model, retry once in strict mode, then fall back to a generic
// dish prompt so a claimed job always terminates the document in ready,
// quota or error.
package imagegen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/genai"

	"github.com/curioswitch/recetta/internal/extract"
	"github.com/curioswitch/recetta/internal/prompt"
	"github.com/curioswitch/recetta/internal/recipedb"
	"github.com/curioswitch/recetta/internal/retry"
)

// maxPromptAttempts counts the recipe-specific generations before the
// generic fallback.
const maxPromptAttempts = 2

// maxErrorLen caps the stored imageError so a giant API error body does
// not bloat the document.
const maxErrorLen = 800

// validateTimeout bounds a single validation call.
const validateTimeout = 20 * time.Second

// ImageGenerator is the image-generation capability. *genai.Models
// satisfies it.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// ContentGenerator is the text-generation capability used for
// validation. *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ImageWriter uploads an image and returns its download URL.
type ImageWriter interface {
	WriteImage(ctx context.Context, path string, mimeType string, data []byte) (string, error)
}

// StatusPatcher merges image job fields into a recipe document.
type StatusPatcher interface {
	PatchImageJob(ctx context.Context, id string, fields map[string]any) error
}

// Config selects the models the runner calls.
type Config struct {
	// ImageModel is the image generation model, e.g. imagen-4.0.
	ImageModel string
	// ValidateModel is the vision model judging generated images.
	ValidateModel string
}

// NewRunner returns a Runner wired to the given capabilities.
func NewRunner(images ImageGenerator, validator ContentGenerator, files ImageWriter, store StatusPatcher, cfg Config) *Runner {
	return &Runner{
		images:    images,
		validator: validator,
		files:     files,
		store:     store,
		config:    cfg,
	}
}

// Runner executes claimed image jobs.
type Runner struct {
	images    ImageGenerator
	validator ContentGenerator
	files     ImageWriter
	store     StatusPatcher
	config    Config
}

// verdict is the validator's JSON output.
type verdict struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason"`
}

var verdictSchema = &genai.Schema{
	Type: "object",
	Properties: map[string]*genai.Schema{
		"ok":     {Type: "boolean"},
		"reason": {Type: "string"},
	},
	Required: []string{"ok"},
}

// Run executes the job for a recipe the caller has already claimed via
// joblock. It always resolves the document to a terminal status and only
// returns an error when even the failure patch could not be written.
func (r *Runner) Run(ctx context.Context, recipe *recipedb.Recipe) error {
	if recipe.Title == "" || recipe.UserID == "" {
		return r.fail(ctx, recipe.ID, recipedb.ImageStatusError, "Missing title or userId", 0, nil)
	}

	in := prompt.Input{
		Title:       recipe.Title,
		Category:    string(recipe.Category),
		Ingredients: recipe.Ingredients,
		Steps:       recipe.Steps,
	}

	var (
		image         *genai.Image
		rejectReasons []string
		attempts      int
		validated     bool
	)

	for attempt := 1; attempt <= maxPromptAttempts; attempt++ {
		in.Strict = attempt > 1
		attempts = attempt

		img, err := r.generate(ctx, prompt.Build(in))
		if err != nil {
			return r.failFromErr(ctx, recipe.ID, attempts, rejectReasons, err)
		}

		ok, reason, known := r.validate(ctx, recipe, img)
		if ok {
			image = img
			validated = known
			break
		}
		slog.InfoContext(ctx, "Generated image rejected",
			slog.String("recipeId", recipe.ID),
			slog.Int("attempt", attempt),
			slog.String("reason", reason))
		rejectReasons = append(rejectReasons, reason)
	}

	if image == nil {
		// Both recipe-specific attempts rejected. A generic dish image
		// beats no image, so generate once more without the recipe title
		// or ingredients and accept it unvalidated.
		genericTitle := "homemade dish"
		if recipedb.NormalizeCategory(string(recipe.Category)) == recipedb.CategoryDrink {
			genericTitle = "homemade drink"
		}
		attempts++
		img, err := r.generate(ctx, prompt.Build(prompt.Input{
			Title:    genericTitle,
			Category: string(recipe.Category),
			Strict:   true,
		}))
		if err != nil {
			return r.failFromErr(ctx, recipe.ID, attempts, rejectReasons, err)
		}
		image = img
	}

	path := fmt.Sprintf("recipes/%s/%s/ai_%d.jpg", recipe.UserID, recipe.ID, time.Now().UnixMilli())
	url, err := r.files.WriteImage(ctx, path, image.MIMEType, image.ImageBytes)
	if err != nil {
		return r.failFromErr(ctx, recipe.ID, attempts, rejectReasons, err)
	}

	patch := map[string]any{
		"imageStatus":         recipedb.ImageStatusReady,
		"imageUrl":            url,
		"imageIsPlaceholder":  firestore.Delete,
		"imageError":          firestore.Delete,
		"imageAttemptCount":   attempts,
		"imageLeaseExpiresAt": firestore.Delete,
	}
	if len(rejectReasons) > 0 {
		patch["imageRejectReasons"] = rejectReasons
	} else {
		patch["imageRejectReasons"] = firestore.Delete
	}
	if err := r.store.PatchImageJob(ctx, recipe.ID, patch); err != nil {
		return fmt.Errorf("imagegen: recording ready image for %s: %w", recipe.ID, err)
	}
	slog.InfoContext(ctx, "Recipe image ready",
		slog.String("recipeId", recipe.ID),
		slog.Int("attempts", attempts),
		slog.Bool("validated", validated))
	return nil
}

func (r *Runner) generate(ctx context.Context, p string) (*genai.Image, error) {
	res, err := retry.Do(ctx, retry.ModelCall, func() (*genai.GenerateImagesResponse, error) {
		return r.images.GenerateImages(ctx, r.config.ImageModel, p, &genai.GenerateImagesConfig{
			NumberOfImages: 1,
			AspectRatio:    "1:1",
			OutputMIMEType: "image/jpeg",
		})
	})
	if err != nil {
		return nil, fmt.Errorf("imagegen: generating image: %w", err)
	}
	if len(res.GeneratedImages) == 0 || res.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("imagegen: no image in model response")
	}
	return res.GeneratedImages[0].Image, nil
}

const validateInstruction = `You are a strict food photography reviewer. You are shown one generated image for a recipe.
Answer ok=true only if ALL hold:
- The image shows real, edible, plausible food matching the dish described.
- No text, letters, watermarks, logos or UI elements anywhere.
- No people, hands, faces or animals.
- Nothing non-food as the subject (no scenery, packaging, fashion, abstract art).
Otherwise answer ok=false with a short reason in English.`

// validate judges a generated image. The third return is false when the
// validator itself failed or returned garbage twice, in which case the
// image is accepted rather than burning a generation attempt on a broken
// judge.
func (r *Runner) validate(ctx context.Context, recipe *recipedb.Recipe, img *genai.Image) (ok bool, reason string, known bool) {
	question := fmt.Sprintf("Recipe: %q, category: %s. Is this image acceptable?", recipe.Title, recipe.Category)
	for try := 0; try < 2; try++ {
		v, err := r.validateOnce(ctx, question, img)
		if err != nil {
			slog.WarnContext(ctx, "Image validation failed, retrying",
				slog.String("recipeId", recipe.ID), slog.Any("error", err))
			continue
		}
		return v.OK, v.Reason, true
	}
	return true, "", false
}

func (r *Runner) validateOnce(ctx context.Context, question string, img *genai.Image) (*verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	res, err := r.validator.GenerateContent(ctx, r.config.ValidateModel, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.ImageBytes, mime),
			genai.NewPartFromText(question),
		}, genai.RoleUser),
	}, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(validateInstruction, genai.RoleModel),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    verdictSchema,
		Temperature:       genai.Ptr[float32](0),
	})
	if err != nil {
		return nil, fmt.Errorf("imagegen: validating image: %w", err)
	}
	text := extract.ModelText(res)
	var v verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("imagegen: unmarshalling validation verdict: %w", err)
	}
	return &v, nil
}

// failFromErr maps a pipeline error to the quota or error terminal
// status. Attempts made and validator rejections so far are persisted
// with the failure so a failed job is as inspectable as a finished one.
func (r *Runner) failFromErr(ctx context.Context, id string, attempts int, rejectReasons []string, err error) error {
	status := recipedb.ImageStatusError
	if retry.IsQuota(err) || retry.IsDailyQuota(err) {
		status = recipedb.ImageStatusQuota
	}
	slog.ErrorContext(ctx, "Image generation failed",
		slog.String("recipeId", id),
		slog.String("status", string(status)),
		slog.Any("error", err))
	return r.fail(ctx, id, status, err.Error(), attempts, rejectReasons)
}

func (r *Runner) fail(ctx context.Context, id string, status recipedb.ImageStatus, msg string, attempts int, rejectReasons []string) error {
	if rs := []rune(msg); len(rs) > maxErrorLen {
		msg = string(rs[:maxErrorLen])
	}
	patch := map[string]any{
		"imageStatus":         status,
		"imageError":          msg,
		"imageAttemptCount":   attempts,
		"imageLeaseExpiresAt": firestore.Delete,
	}
	if len(rejectReasons) > 0 {
		patch["imageRejectReasons"] = rejectReasons
	} else {
		patch["imageRejectReasons"] = firestore.Delete
	}
	if err := r.store.PatchImageJob(ctx, id, patch); err != nil {
		return fmt.Errorf("imagegen: recording failure for %s: %w", id, err)
	}
	return nil
}
