// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package joblock serializes image generation per recipe through
// Firestore transactions. Watcher deliveries are at-least-once and a
// create and an update event can race for the same document, so every
// worker must win a transactional status transition before doing any
// model work. Losing the transaction is the normal case for duplicate
// events, not an error worth surfacing.
package joblock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/curioswitch/recetta/internal/recipedb"
)

var (
	// ErrNotAcquired is returned when another worker holds the job or the
	// document no longer needs one.
	ErrNotAcquired = errors.New("joblock: job not acquired")

	// ErrRegenLimit is returned when a recipe has used up its manual
	// regeneration allowance.
	ErrRegenLimit = errors.New("joblock: regeneration limit reached")
)

// NewManager returns a Manager over the given Firestore client.
// leaseTTL bounds how long a worker may hold a processing claim before
// the reaper treats it as dead, regenLimit caps manual regenerations
// per recipe.
func NewManager(client *firestore.Client, leaseTTL time.Duration, regenLimit int) *Manager {
	return &Manager{
		client:     client,
		store:      recipedb.NewStore(client),
		leaseTTL:   leaseTTL,
		regenLimit: regenLimit,
	}
}

// Manager claims and releases image generation jobs.
type Manager struct {
	client     *firestore.Client
	store      *recipedb.Store
	leaseTTL   time.Duration
	regenLimit int
}

// AcquireForCreate claims the job for a newly created recipe. It fails
// with ErrNotAcquired when the recipe already has a generated image or
// another worker is processing it.
func (m *Manager) AcquireForCreate(ctx context.Context, id string) error {
	return m.acquire(ctx, id, false)
}

// AcquireForQueued claims the job for a queued regeneration. Unlike
// AcquireForCreate it requires imageStatus to be queued, so a stale
// update event for an already handled document loses the claim.
func (m *Manager) AcquireForQueued(ctx context.Context, id string) error {
	return m.acquire(ctx, id, true)
}

// canAcquire decides whether a worker may claim the job given the
// document state read inside the transaction. The regeneration path
// requires imageStatus to be queued, the create path only that no
// generated image exists yet.
func canAcquire(recipe *recipedb.Recipe, requireQueued bool) error {
	if recipe.ImageStatus == recipedb.ImageStatusProcessing {
		return ErrNotAcquired
	}
	if requireQueued {
		if recipe.ImageStatus != recipedb.ImageStatusQueued {
			return ErrNotAcquired
		}
		return nil
	}
	if recipe.HasGeneratedImage() {
		return ErrNotAcquired
	}
	return nil
}

func (m *Manager) acquire(ctx context.Context, id string, requireQueued bool) error {
	ref := m.store.Doc(id)
	err := m.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return fmt.Errorf("joblock: getting recipe %s: %w", id, err)
		}
		var recipe recipedb.Recipe
		if err := doc.DataTo(&recipe); err != nil {
			return fmt.Errorf("joblock: unmarshalling recipe %s: %w", id, err)
		}
		if err := canAcquire(&recipe, requireQueued); err != nil {
			return err
		}
		return tx.Set(ref, map[string]any{
			"imageStatus":         recipedb.ImageStatusProcessing,
			"imageError":          firestore.Delete,
			"imageLeaseExpiresAt": time.Now().Add(m.leaseTTL),
			"imageUpdatedAt":      firestore.ServerTimestamp,
		}, firestore.MergeAll)
	})
	if errors.Is(err, ErrNotAcquired) {
		return ErrNotAcquired
	}
	if err != nil {
		return fmt.Errorf("joblock: acquiring job for %s: %w", id, err)
	}
	return nil
}

// RequestRegen queues a manual regeneration for a recipe, replacing its
// current image with the placeholder. The old image URL is dropped
// inside the same transaction so clients never render a stale image
// against a queued status. placeholderURL may be empty, in which case
// the URL field is deleted.
func (m *Manager) RequestRegen(ctx context.Context, id string, placeholderURL string) error {
	ref := m.store.Doc(id)
	err := m.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return fmt.Errorf("joblock: getting recipe %s: %w", id, err)
		}
		var recipe recipedb.Recipe
		if err := doc.DataTo(&recipe); err != nil {
			return fmt.Errorf("joblock: unmarshalling recipe %s: %w", id, err)
		}
		if err := canRegen(&recipe, m.regenLimit); err != nil {
			return err
		}
		return tx.Set(ref, regenPatch(placeholderURL), firestore.MergeAll)
	})
	if errors.Is(err, ErrRegenLimit) {
		return ErrRegenLimit
	}
	if err != nil {
		return fmt.Errorf("joblock: requesting regen for %s: %w", id, err)
	}
	return nil
}

// canRegen enforces the manual regeneration allowance. The count is
// read inside the transaction, so two concurrent requests cannot both
// pass the cap.
func canRegen(recipe *recipedb.Recipe, regenLimit int) error {
	if recipe.ImageRegenCount >= regenLimit {
		return ErrRegenLimit
	}
	return nil
}

// regenPatch builds the queued transition. An empty placeholder URL
// deletes the image field instead of replacing it.
func regenPatch(placeholderURL string) map[string]any {
	patch := map[string]any{
		"imageStatus":     recipedb.ImageStatusQueued,
		"imageError":      firestore.Delete,
		"regenNonce":      uuid.NewString(),
		"imageRegenCount": firestore.Increment(1),
		"imageUpdatedAt":  firestore.ServerTimestamp,
	}
	if placeholderURL != "" {
		patch["imageUrl"] = placeholderURL
		patch["imageIsPlaceholder"] = true
	} else {
		patch["imageUrl"] = firestore.Delete
		patch["imageIsPlaceholder"] = firestore.Delete
	}
	return patch
}

// ShouldProcessUpdate reports whether an update event warrants starting
// a job. Only a transition into queued counts, and a document already
// queued before must carry a new nonce, otherwise echo events from our
// own status patches would retrigger generation forever.
func ShouldProcessUpdate(beforeStatus recipedb.ImageStatus, beforeNonce string, after *recipedb.Recipe) bool {
	if after.ImageStatus != recipedb.ImageStatusQueued {
		return false
	}
	if beforeStatus != recipedb.ImageStatusQueued {
		return true
	}
	return after.RegenNonce != beforeNonce
}

// ReapStale marks recipes stuck in processing past their lease as
// failed, so a crashed worker does not wedge a document forever.
// Returns the number of documents reaped.
func (m *Manager) ReapStale(ctx context.Context) (int, error) {
	iter := m.store.Collection().
		Where("imageStatus", "==", string(recipedb.ImageStatusProcessing)).
		Where("imageLeaseExpiresAt", "<", time.Now()).
		Documents(ctx)
	defer iter.Stop()

	reaped := 0
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return reaped, fmt.Errorf("joblock: listing stale jobs: %w", err)
		}
		if _, err := doc.Ref.Set(ctx, map[string]any{
			"imageStatus":         recipedb.ImageStatusError,
			"imageError":          "Image generation timed out",
			"imageLeaseExpiresAt": firestore.Delete,
			"imageUpdatedAt":      firestore.ServerTimestamp,
		}, firestore.MergeAll); err != nil {
			return reaped, fmt.Errorf("joblock: reaping stale job %s: %w", doc.Ref.ID, err)
		}
		reaped++
	}
	return reaped, nil
}
