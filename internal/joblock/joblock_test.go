// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package joblock

import (
	"errors"
	"testing"

	"cloud.google.com/go/firestore"

	"github.com/curioswitch/recetta/internal/recipedb"
)

func TestCanAcquire(t *testing.T) {
	tests := []struct {
		name          string
		recipe        recipedb.Recipe
		requireQueued bool
		want          error
	}{
		{
			name:   "create claims a fresh document",
			recipe: recipedb.Recipe{},
			want:   nil,
		},
		{
			name:   "create loses to a running job",
			recipe: recipedb.Recipe{ImageStatus: recipedb.ImageStatusProcessing},
			want:   ErrNotAcquired,
		},
		{
			name:   "create skips a recipe with a generated image",
			recipe: recipedb.Recipe{ImageStatus: recipedb.ImageStatusReady, ImageURL: "https://example.com/i.jpg"},
			want:   ErrNotAcquired,
		},
		{
			name:   "create claims past a placeholder image",
			recipe: recipedb.Recipe{ImageURL: "https://example.com/p.jpg", ImageIsPlaceholder: true},
			want:   nil,
		},
		{
			name:          "regen claims a queued document",
			recipe:        recipedb.Recipe{ImageStatus: recipedb.ImageStatusQueued},
			requireQueued: true,
			want:          nil,
		},
		{
			name:          "regen loses to a running job",
			recipe:        recipedb.Recipe{ImageStatus: recipedb.ImageStatusProcessing},
			requireQueued: true,
			want:          ErrNotAcquired,
		},
		{
			name:          "regen ignores an already handled document",
			recipe:        recipedb.Recipe{ImageStatus: recipedb.ImageStatusReady},
			requireQueued: true,
			want:          ErrNotAcquired,
		},
		{
			name:          "regen ignores a document never queued",
			recipe:        recipedb.Recipe{},
			requireQueued: true,
			want:          ErrNotAcquired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canAcquire(&tt.recipe, tt.requireQueued); !errors.Is(got, tt.want) {
				t.Errorf("canAcquire(%+v, %t) = %v, want %v", tt.recipe, tt.requireQueued, got, tt.want)
			}
		})
	}
}

func TestCanRegen(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		regenLimit int
		want       error
	}{
		{name: "first regen allowed", count: 0, regenLimit: 1, want: nil},
		{name: "cap reached", count: 1, regenLimit: 1, want: ErrRegenLimit},
		{name: "over cap", count: 2, regenLimit: 1, want: ErrRegenLimit},
		{name: "higher limit allows more", count: 2, regenLimit: 3, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipe := recipedb.Recipe{ImageRegenCount: tt.count}
			if got := canRegen(&recipe, tt.regenLimit); !errors.Is(got, tt.want) {
				t.Errorf("canRegen(count=%d, limit=%d) = %v, want %v", tt.count, tt.regenLimit, got, tt.want)
			}
		})
	}
}

func TestRegenPatch(t *testing.T) {
	withPlaceholder := regenPatch("https://example.com/placeholder.jpg")
	if withPlaceholder["imageUrl"] != "https://example.com/placeholder.jpg" {
		t.Errorf("imageUrl = %v, want placeholder", withPlaceholder["imageUrl"])
	}
	if withPlaceholder["imageIsPlaceholder"] != true {
		t.Errorf("imageIsPlaceholder = %v, want true", withPlaceholder["imageIsPlaceholder"])
	}
	if withPlaceholder["imageStatus"] != recipedb.ImageStatusQueued {
		t.Errorf("imageStatus = %v, want queued", withPlaceholder["imageStatus"])
	}
	if nonce, ok := withPlaceholder["regenNonce"].(string); !ok || nonce == "" {
		t.Errorf("regenNonce = %v, want a fresh nonce", withPlaceholder["regenNonce"])
	}

	without := regenPatch("")
	if without["imageUrl"] != firestore.Delete {
		t.Errorf("imageUrl = %v, want delete sentinel", without["imageUrl"])
	}
	if without["imageIsPlaceholder"] != firestore.Delete {
		t.Errorf("imageIsPlaceholder = %v, want delete sentinel", without["imageIsPlaceholder"])
	}

	if withPlaceholder["regenNonce"] == regenPatch("x")["regenNonce"] {
		t.Error("regenNonce should differ between requests")
	}
}

func TestShouldProcessUpdate(t *testing.T) {
	tests := []struct {
		name         string
		beforeStatus recipedb.ImageStatus
		beforeNonce  string
		after        recipedb.Recipe
		want         bool
	}{
		{
			name:  "not queued is ignored",
			after: recipedb.Recipe{ImageStatus: recipedb.ImageStatusReady},
			want:  false,
		},
		{
			name:  "processing echo is ignored",
			after: recipedb.Recipe{ImageStatus: recipedb.ImageStatusProcessing},
			want:  false,
		},
		{
			name:         "transition into queued processes",
			beforeStatus: recipedb.ImageStatusReady,
			after:        recipedb.Recipe{ImageStatus: recipedb.ImageStatusQueued, RegenNonce: "n1"},
			want:         true,
		},
		{
			name:         "fresh document becoming queued processes",
			beforeStatus: recipedb.ImageStatusAbsent,
			after:        recipedb.Recipe{ImageStatus: recipedb.ImageStatusQueued},
			want:         true,
		},
		{
			name:         "queued echo with same nonce is ignored",
			beforeStatus: recipedb.ImageStatusQueued,
			beforeNonce:  "n1",
			after:        recipedb.Recipe{ImageStatus: recipedb.ImageStatusQueued, RegenNonce: "n1"},
			want:         false,
		},
		{
			name:         "queued again with new nonce processes",
			beforeStatus: recipedb.ImageStatusQueued,
			beforeNonce:  "n1",
			after:        recipedb.Recipe{ImageStatus: recipedb.ImageStatusQueued, RegenNonce: "n2"},
			want:         true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldProcessUpdate(tt.beforeStatus, tt.beforeNonce, &tt.after)
			if got != tt.want {
				t.Errorf("ShouldProcessUpdate(%q, %q, %+v) = %t, want %t",
					tt.beforeStatus, tt.beforeNonce, tt.after, got, tt.want)
			}
		})
	}
}
