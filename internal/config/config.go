// Copyright (c) Choko (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package config

import (
	"time"

	"github.com/curioswitch/go-curiostack/config"
)

type Models struct {
	// Classify is the text model used for OCR classification, e.g. gemini-2.5-flash.
	Classify string `koanf:"classify"`

	// Image is the image generation model, e.g. imagen-4.0-generate-001.
	Image string `koanf:"image"`

	// Validate is the vision model used to judge generated images.
	Validate string `koanf:"validate"`
}

type Images struct {
	// Bucket is the storage bucket holding recipe images. Empty uses
	// <project>-public.
	Bucket string `koanf:"bucket"`

	// PlaceholderURL replaces a recipe's image while regeneration is
	// queued. Empty deletes the image field instead.
	PlaceholderURL string `koanf:"placeholderurl"`

	// RegenLimit caps manual regenerations per recipe.
	RegenLimit int `koanf:"regenlimit"`

	// LeaseTTL bounds how long one generation job may run.
	LeaseTTL time.Duration `koanf:"leasettl"`

	// ReapInterval is how often expired job leases are swept.
	ReapInterval time.Duration `koanf:"reapinterval"`
}

type Config struct {
	config.Common

	// Models selects the AI models used by the pipeline.
	Models Models `koanf:"models"`

	// Images is the configuration for image generation.
	Images Images `koanf:"images"`
}
