// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package extract

import (
	"encoding/json"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// ErrModelOutput is returned when the model response cannot be turned into
// a JSON document even after fallbacks.
var ErrModelOutput = errors.New("extract: model did not return valid JSON")

// ModelText pulls the text out of a generation response. Response shapes
// vary across SDK versions, so it tries the aggregate accessor first and
// falls back to concatenating the text parts of the first candidate.
func ModelText(res *genai.GenerateContentResponse) string {
	if res == nil {
		return ""
	}
	if t := res.Text(); t != "" {
		return t
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}
	var parts []string
	for _, p := range res.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// SafeJSONParse parses s strictly, then falls back to the first balanced
// {...} or [...] substring to cope with prose or markdown fences around
// the JSON document.
func SafeJSONParse(s string) (any, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil, ErrModelOutput
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, nil
	}

	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(raw, pair[0])
		end := strings.LastIndex(raw, pair[1])
		if start < 0 || end <= start {
			continue
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &v); err == nil {
			return v, nil
		}
	}
	return nil, ErrModelOutput
}
