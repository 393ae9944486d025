// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package ocr repairs raw OCR text from scanned recipe pages before it is
// handed to the classification model. All transforms are pure and idempotent.
package ocr

import (
	"regexp"
	"strings"
)

var (
	reSpaceRuns    = regexp.MustCompile(`[ \t]+`)
	reNewlineRuns  = regexp.MustCompile(`\n{3,}`)
	reHyphenBreak  = regexp.MustCompile(`(\p{L}+)-\n(\p{L}+)`)
	reBulletGlyphs = regexp.MustCompile(`[•●▪◆◦]`)
	// Intra-class whitespace is [^\S\n] so removal never crosses a line
	// boundary and swallows recipe content after a heading.
	reChapterLine  = regexp.MustCompile(`(?im)^[^\S\n]*\d+[^\S\n]*-[A-Z &\-]+$`)
	reMetadataLine = regexp.MustCompile(`(?im)^[^\S\n]*(Coût|Difficulté|Préparation|Cuisson)[^\n]*$`)
)

// Normalize canonicalizes raw OCR text: line endings, soft hyphens,
// whitespace runs, words wrapped across line breaks, bullet glyphs, and
// page-furniture lines. It never fails and returns "" for empty input.
func Normalize(raw string) string {
	t := strings.ReplaceAll(raw, "\r\n", "\n")
	t = strings.ReplaceAll(t, "­", "")

	t = reSpaceRuns.ReplaceAllString(t, " ")
	t = reNewlineRuns.ReplaceAllString(t, "\n\n")

	// Rejoin words split by hyphenation across a line wrap.
	t = reHyphenBreak.ReplaceAllString(t, "${1}${2}")

	t = reBulletGlyphs.ReplaceAllString(t, "-")

	t = reChapterLine.ReplaceAllString(t, "")
	t = reMetadataLine.ReplaceAllString(t, "")

	var kept []string
	for _, line := range strings.Split(t, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// FilterShortLines drops lines whose trimmed content is two characters or
// less, which in practice is residual OCR noise.
func FilterShortLines(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) > 2 {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
