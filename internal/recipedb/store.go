// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package recipedb

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

// CollectionRecipes is the Firestore collection holding recipe documents.
const CollectionRecipes = "recipes"

// NewStore returns a Store over the given Firestore client.
func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

// Store reads and patches recipe documents.
type Store struct {
	client *firestore.Client
}

// Collection returns the recipes collection reference.
func (s *Store) Collection() *firestore.CollectionRef {
	return s.client.Collection(CollectionRecipes)
}

// Doc returns the document reference for a recipe ID.
func (s *Store) Doc(id string) *firestore.DocumentRef {
	return s.Collection().Doc(id)
}

// Get fetches a recipe by document ID. The returned recipe has ID set
// from the document path.
func (s *Store) Get(ctx context.Context, id string) (*Recipe, error) {
	doc, err := s.Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("recipedb: getting recipe %s: %w", id, err)
	}
	var recipe Recipe
	if err := doc.DataTo(&recipe); err != nil {
		return nil, fmt.Errorf("recipedb: unmarshalling recipe %s: %w", id, err)
	}
	recipe.ID = doc.Ref.ID
	return &recipe, nil
}

// PatchImageJob merges fields into a recipe document and stamps
// imageUpdatedAt server-side so clients can order status transitions.
func (s *Store) PatchImageJob(ctx context.Context, id string, fields map[string]any) error {
	patch := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		patch[k] = v
	}
	patch["imageUpdatedAt"] = firestore.ServerTimestamp
	if _, err := s.Doc(id).Set(ctx, patch, firestore.MergeAll); err != nil {
		return fmt.Errorf("recipedb: patching recipe %s: %w", id, err)
	}
	return nil
}
