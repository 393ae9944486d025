// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package extract

import (
	"regexp"
	"strings"

	"github.com/curioswitch/recetta/internal/ocr"
	"github.com/curioswitch/recetta/internal/recipedb"
)

const (
	// salvageMinStepLen is the minimum paragraph length adopted as a step.
	salvageMinStepLen = 25
	// salvageMaxSteps caps steps recovered from raw text.
	salvageMaxSteps = 20
)

var (
	reTimeMention   = regexp.MustCompile(`(?i)\b(\d+\s*(?:min|minutes|h|heures))\b`)
	reBulletLine    = regexp.MustCompile(`^[-•]\s+`)
	reParagraphs    = regexp.MustCompile(`\n{2,}`)
	reMetaHeading   = regexp.MustCompile(`(?i)^(coût|difficulté|préparation|cuisson)$`)
	reChapterMarker = regexp.MustCompile(`^\d+\s*-`)
	reAllCapsLine   = regexp.MustCompile(`^[A-Z\s&\-]{10,}$`)
)

// Salvage recovers still-missing fields from the normalized source text
// when the model output is incomplete: bulleted lines become ingredients,
// long non-heading paragraphs become steps, and the first duration mention
// becomes the preparation time. Recovered text is re-run through the OCR
// corrector. Never fails.
func Salvage(rec recipedb.Record, rawText string) recipedb.Record {
	if rec.PreparationTime == "" && rec.CookingTime == "" && rec.EstimatedTime == "" {
		if m := reTimeMention.FindStringSubmatch(rawText); m != nil {
			rec.PreparationTime = m[1]
		}
	}

	if len(rec.Ingredients) == 0 {
		var guessed []string
		for _, line := range strings.Split(rawText, "\n") {
			line = strings.TrimSpace(line)
			if !reBulletLine.MatchString(line) {
				continue
			}
			if item := strings.TrimSpace(reBulletLine.ReplaceAllString(line, "")); item != "" {
				guessed = append(guessed, item)
			}
			if len(guessed) == recipedb.MaxListItems {
				break
			}
		}
		rec.Ingredients = guessed
	}

	if len(rec.Steps) == 0 {
		var stepLike []string
		for _, block := range reParagraphs.Split(rawText, -1) {
			block = strings.TrimSpace(block)
			if len([]rune(block)) <= salvageMinStepLen {
				continue
			}
			if reMetaHeading.MatchString(block) || reChapterMarker.MatchString(block) || reAllCapsLine.MatchString(block) {
				continue
			}
			stepLike = append(stepLike, block)
			if len(stepLike) == salvageMaxSteps {
				break
			}
		}
		rec.Steps = stepLike
	}

	for i, ing := range rec.Ingredients {
		rec.Ingredients[i] = ocr.CorrectFrench(ing)
	}
	for i, s := range rec.Steps {
		rec.Steps[i] = ocr.CorrectFrench(s)
	}

	return rec
}
