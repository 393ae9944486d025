// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package extract

import (
	"errors"
	"testing"
)

func TestSafeJSONParse(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantTitle string
	}{
		{
			name:      "strict object",
			in:        `{"title":"Tarte"}`,
			wantTitle: "Tarte",
		},
		{
			name:      "markdown fenced",
			in:        "```json\n{\"title\":\"Tarte\"}\n```",
			wantTitle: "Tarte",
		},
		{
			name:      "prose around object",
			in:        `Voici la recette: {"title":"Tarte"} Bon appétit!`,
			wantTitle: "Tarte",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := SafeJSONParse(tt.in)
			if err != nil {
				t.Fatalf("SafeJSONParse(%q) error: %v", tt.in, err)
			}
			m, ok := v.(map[string]any)
			if !ok {
				t.Fatalf("SafeJSONParse(%q) = %T, want object", tt.in, v)
			}
			if m["title"] != tt.wantTitle {
				t.Errorf("title = %v, want %q", m["title"], tt.wantTitle)
			}
		})
	}
}

func TestSafeJSONParseArrayFallback(t *testing.T) {
	v, err := SafeJSONParse(`les étapes: ["couper", "cuire"]`)
	if err != nil {
		t.Fatalf("SafeJSONParse error: %v", err)
	}
	list, ok := v.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("SafeJSONParse = %v, want 2-element array", v)
	}
}

func TestSafeJSONParseInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "pas de json ici", "{broken"} {
		if _, err := SafeJSONParse(in); !errors.Is(err, ErrModelOutput) {
			t.Errorf("SafeJSONParse(%q) error = %v, want ErrModelOutput", in, err)
		}
	}
}
