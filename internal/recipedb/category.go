// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticsFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldDiacritics strips combining marks: "velouté" -> "veloute".
func FoldDiacritics(s string) string {
	out, _, err := transform.String(diacriticsFold, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeCategory maps arbitrary category text onto the whitelist,
// ignoring case and diacritics. Anything unrecognized becomes CategoryMain.
func NormalizeCategory(s string) Category {
	folded := FoldDiacritics(strings.ToLower(strings.TrimSpace(s)))
	switch folded {
	case "entree":
		return CategoryStarter
	case "plat":
		return CategoryMain
	case "dessert":
		return CategoryDessert
	case "boisson":
		return CategoryDrink
	default:
		return CategoryMain
	}
}
