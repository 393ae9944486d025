// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/curioswitch/recetta/internal/recipedb"
)

// DefaultTitle replaces an empty extracted title.
const DefaultTitle = "Recette"

var (
	reStepPrefix      = regexp.MustCompile(`^\s*\d+\s*[).\-:]\s*`)
	reIngredientNoise = regexp.MustCompile(`(?i)https?://|www\.|@|€|\bqr\b|\bcode\b`)
	reFirstInt        = regexp.MustCompile(`(\d+)`)
	reWordStart       = regexp.MustCompile(`\b\w`)
)

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return ""
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int(math.Round(n))
	case int:
		return n
	case string:
		if m := reFirstInt.FindStringSubmatch(n); m != nil {
			i, _ := strconv.Atoi(m[1])
			return i
		}
	}
	return 0
}

func asStringList(v any, limit int) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, it := range items {
		s := strings.TrimSpace(asString(it))
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

func capRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func titleCase(s string) string {
	return reWordStart.ReplaceAllStringFunc(strings.ToLower(s), strings.ToUpper)
}

// Sanitize coerces arbitrary parsed model output into a bounded, typed
// record: scalar coercion with length caps, list caps, category whitelist,
// step enumeration stripping, and ingredient noise filtering. It never
// fails; missing or malformed fields become zero values or defaults.
func Sanitize(obj any) recipedb.Record {
	m, _ := obj.(map[string]any)

	out := recipedb.Record{
		Title:           titleCase(capRunes(strings.TrimSpace(asString(m["title"])), recipedb.MaxTitleLen)),
		Category:        recipedb.NormalizeCategory(asString(m["category"])),
		Servings:        asInt(m["servings"]),
		Ingredients:     asStringList(m["ingredients"], recipedb.MaxListItems),
		Steps:           asStringList(m["steps"], recipedb.MaxListItems),
		Tags:            asStringList(m["tags"], recipedb.MaxListItems),
		Source:          capRunes(strings.TrimSpace(asString(m["source"])), recipedb.MaxSourceLen),
		PreparationTime: capRunes(strings.TrimSpace(asString(m["preparationTime"])), 60),
		CookingTime:     capRunes(strings.TrimSpace(asString(m["cookingTime"])), 60),
		EstimatedTime:   capRunes(strings.TrimSpace(asString(m["estimatedTime"])), 60),
	}

	if out.Servings < 0 {
		out.Servings = 0
	}
	if out.Servings > 50 {
		out.Servings = 50
	}
	if out.Title == "" {
		out.Title = DefaultTitle
	}

	for i, s := range out.Steps {
		out.Steps[i] = reStepPrefix.ReplaceAllString(s, "")
	}

	kept := out.Ingredients[:0]
	for _, ing := range out.Ingredients {
		if !reIngredientNoise.MatchString(ing) {
			kept = append(kept, ing)
		}
	}
	out.Ingredients = kept

	return out
}
