// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package watcher drives image generation off the recipes collection.
// A snapshot listener stands in for database triggers: document adds
// start generation for new recipes, document modifications start it for
// queued regenerations. Snapshot diffs carry no before-image, so the
// watcher keeps the last seen status and nonce per document in memory
// and leaves correctness under races to the transactional job lock.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"

	"github.com/curioswitch/recetta/internal/imagegen"
	"github.com/curioswitch/recetta/internal/joblock"
	"github.com/curioswitch/recetta/internal/recipedb"
)

// maxConcurrentJobs bounds in-flight generations so a burst of imports
// does not fan out into unbounded model calls.
const maxConcurrentJobs = 4

// NewWatcher returns a Watcher over the given store, lock manager and
// runner. reapInterval is how often stale processing leases are swept.
func NewWatcher(store *recipedb.Store, locks *joblock.Manager, runner *imagegen.Runner, reapInterval time.Duration) *Watcher {
	return &Watcher{
		store:        store,
		locks:        locks,
		runner:       runner,
		reapInterval: reapInterval,
		seen:         map[string]docState{},
	}
}

// Watcher listens for recipe changes and dispatches image jobs.
type Watcher struct {
	store        *recipedb.Store
	locks        *joblock.Manager
	runner       *imagegen.Runner
	reapInterval time.Duration

	mu   sync.Mutex
	seen map[string]docState
}

type docState struct {
	status recipedb.ImageStatus
	nonce  string
}

// Run blocks listening for changes until ctx is canceled. The first
// snapshot covers every existing document; those are only primed into
// the state map, except queued ones, which are resumed. Jobs left in
// processing by a crash are handled by the reaper, not here.
func (w *Watcher) Run(ctx context.Context) error {
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(maxConcurrentJobs)

	iter := w.store.Collection().Snapshots(ctx)
	defer iter.Stop()

	primed := false
	for {
		snap, err := iter.Next()
		if err != nil {
			if ctx.Err() != nil {
				_ = grp.Wait()
				return nil
			}
			_ = grp.Wait()
			return fmt.Errorf("watcher: reading recipes snapshot: %w", err)
		}
		for _, change := range snap.Changes {
			w.handleChange(ctx, grp, change, primed)
		}
		primed = true
	}
}

func (w *Watcher) handleChange(ctx context.Context, grp *errgroup.Group, change firestore.DocumentChange, primed bool) {
	id := change.Doc.Ref.ID

	if change.Kind == firestore.DocumentRemoved {
		w.mu.Lock()
		delete(w.seen, id)
		w.mu.Unlock()
		return
	}

	var recipe recipedb.Recipe
	if err := change.Doc.DataTo(&recipe); err != nil {
		slog.ErrorContext(ctx, "Skipping undecodable recipe document",
			slog.String("recipeId", id), slog.Any("error", err))
		return
	}
	recipe.ID = id

	w.mu.Lock()
	prev, known := w.seen[id]
	w.seen[id] = docState{status: recipe.ImageStatus, nonce: recipe.RegenNonce}
	w.mu.Unlock()

	var acquire func(context.Context, string) error
	switch change.Kind {
	case firestore.DocumentAdded:
		if primed {
			if recipe.HasGeneratedImage() || recipe.ImageStatus == recipedb.ImageStatusProcessing {
				return
			}
		} else if recipe.ImageStatus != recipedb.ImageStatusQueued {
			// Existing document at startup, record state only.
			return
		}
		acquire = w.locks.AcquireForCreate
	case firestore.DocumentModified:
		if !known {
			prev = docState{}
		}
		if !joblock.ShouldProcessUpdate(prev.status, prev.nonce, &recipe) {
			return
		}
		acquire = w.locks.AcquireForQueued
	default:
		return
	}

	grp.Go(func() error {
		w.process(ctx, &recipe, acquire)
		return nil
	})
}

func (w *Watcher) process(ctx context.Context, recipe *recipedb.Recipe, acquire func(context.Context, string) error) {
	if err := acquire(ctx, recipe.ID); err != nil {
		if errors.Is(err, joblock.ErrNotAcquired) {
			return
		}
		slog.ErrorContext(ctx, "Failed to acquire image job",
			slog.String("recipeId", recipe.ID), slog.Any("error", err))
		return
	}
	slog.InfoContext(ctx, "Starting image generation",
		slog.String("recipeId", recipe.ID))
	if err := w.runner.Run(ctx, recipe); err != nil {
		slog.ErrorContext(ctx, "Image generation job failed",
			slog.String("recipeId", recipe.ID), slog.Any("error", err))
	}
}

// RunReaper sweeps expired processing leases until ctx is canceled.
func (w *Watcher) RunReaper(ctx context.Context) {
	ticker := time.NewTicker(w.reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.locks.ReapStale(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to reap stale image jobs", slog.Any("error", err))
			}
			if n > 0 {
				slog.InfoContext(ctx, "Reaped stale image jobs", slog.Int("count", n))
			}
		}
	}
}
