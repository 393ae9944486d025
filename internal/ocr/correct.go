// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package ocr

import (
	"regexp"
	"strings"
)

// Rule is a single named text repair, a pure regexp rewrite. Rules are
// applied in declaration order so later rules see earlier output.
type Rule struct {
	Name string

	re   *regexp.Regexp
	repl string
}

// Apply runs the rule on text.
func (r Rule) Apply(text string) string {
	return r.re.ReplaceAllString(text, r.repl)
}

func rule(name, pattern, repl string) Rule {
	return Rule{Name: name, re: regexp.MustCompile(pattern), repl: repl}
}

// CorrectionRules are the French OCR repairs, ordered. Unit aliases and
// elisions come from recurring artifacts in scanned French cookbooks.
var CorrectionRules = []Rule{
	// Apostrophe variants.
	rule("apostrophes", "['´`]", "'"),

	// Unicode vulgar fractions.
	rule("fraction-half", "½", "1/2"),
	rule("fraction-quarter", "¼", "1/4"),
	rule("fraction-three-quarters", "¾", "3/4"),
	rule("fraction-third", "⅓", "1/3"),
	rule("fraction-two-thirds", "⅔", "2/3"),

	// Elided article glued into the next word: "lhuile" -> "l'huile".
	rule("glued-lh", `(?i)\blh([a-zà-ÿ])`, "l'h${1}"),

	// Spacing around digits.
	rule("digit-a-digit", `(\d)à(\d)`, "$1 à $2"),
	rule("digit-hyphen-digit", `(\d)-(\d)`, "$1 - $2"),
	rule("letter-digit", `(?i)([a-zà-ÿ])(\d)`, "$1 $2"),
	rule("digit-letter", `(?i)(\d)([a-zà-ÿ])`, "$1 $2"),

	// Words glued across a sentence boundary: "cuireAjoutez".
	rule("case-transition", `([a-zà-ÿ])([A-ZÀ-Ý])`, "$1 $2"),

	// Imperative verbs glued to "bien".
	rule("verb-bien", `(?i)\b(mélangez|ajoutez|faites|coupez|émincez|versez|chauffez|hachez|lavez)(bien)\b`, "$1 $2"),

	// Spoon units to the two canonical long forms.
	rule("tablespoon", `(?i)\bcuill?\.?\s*à\s*s(oupe)?\b`, "cuil. à soupe"),
	rule("tablespoon-cas-accent", `(?i)\bcàs\b`, "cuil. à soupe"),
	rule("tablespoon-cas", `(?i)\bcas\b`, "cuil. à soupe"),
	rule("tablespoon-cs", `(?i)\bcs\b`, "cuil. à soupe"),
	rule("teaspoon", `(?i)\bcuill?\.?\s*à\s*c(afé)?\b`, "cuil. à café"),
	rule("teaspoon-cac-accent", `(?i)\bcàc\b`, "cuil. à café"),
	rule("teaspoon-cac", `(?i)\bcac\b`, "cuil. à café"),

	// Mass and volume units to standard abbreviations.
	rule("grams-gr", `(?i)\bgr\b`, "g"),
	rule("grams-word", `(?i)\bgrammes?\b`, "g"),
	rule("milliliters", `(?i)\bmillilitres?\b`, "ml"),
	rule("centiliters", `(?i)\bcentilitres?\b`, "cl"),
	rule("liters", `(?i)\blitres?\b`, "l"),

	// Dropped-apostrophe elisions.
	rule("elision-oignon", `(?i)\bloignon\b`, "l'oignon"),
	rule("elision-ail", `(?i)\blail\b`, "l'ail"),
	rule("elision-huile", `(?i)\blhuile\b`, "l'huile"),
	rule("elision-revenir", `(?i)\brevenir\s+loignon\b`, "revenir l'oignon"),

	// Page furniture that OCR keeps as full lines.
	rule("page-footer", `(?im)^\s*page\s*\d+\s*/\s*\d+\s*$`, ""),
	rule("url-line", `(?im)^\s*(www\.)\S+\s*$`, ""),
	rule("copyright-line", `(?im)^\s*©\s*\d{4}.*$`, ""),
}

// CorrectFrench applies the correction rules in order followed by a final
// whitespace cleanup. Idempotent on already-clean text; text no rule
// matches passes through unchanged.
func CorrectFrench(text string) string {
	t := text
	for _, r := range CorrectionRules {
		t = r.Apply(t)
	}
	t = reSpaceRuns.ReplaceAllString(t, " ")
	t = reNewlineRuns.ReplaceAllString(t, "\n\n")
	return strings.TrimSpace(t)
}
