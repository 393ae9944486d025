// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/curioswitch/go-curiostack/server"
	"github.com/curioswitch/go-usegcp/middleware/firebaseauth"
	"github.com/go-chi/chi/v5/middleware"
	"google.golang.org/genai"

	"github.com/curioswitch/recetta/internal/config"
	"github.com/curioswitch/recetta/internal/extract"
	"github.com/curioswitch/recetta/internal/file"
	"github.com/curioswitch/recetta/internal/handler/processrecipe"
	"github.com/curioswitch/recetta/internal/handler/regenerateimage"
	"github.com/curioswitch/recetta/internal/imagegen"
	"github.com/curioswitch/recetta/internal/images"
	"github.com/curioswitch/recetta/internal/joblock"
	"github.com/curioswitch/recetta/internal/recipedb"
	"github.com/curioswitch/recetta/internal/watcher"
)

//go:embed conf/*.yaml
var confFiles embed.FS

func main() {
	conf, _ := fs.Sub(confFiles, "conf")
	os.Exit(server.Main(&config.Config{}, conf, setupServer))
}

func setupServer(ctx context.Context, conf *config.Config, s *server.Server) error {
	mux := server.Mux(s)

	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: conf.Google.Project})
	if err != nil {
		return fmt.Errorf("main: create firebase app: %w", err)
	}

	fbAuth, err := fbApp.Auth(ctx)
	if err != nil {
		return fmt.Errorf("main: create firebase auth client: %w", err)
	}

	firestore, err := fbApp.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("main: create firestore client: %w", err)
	}
	defer func() {
		if err := firestore.Close(); err != nil {
			slog.ErrorContext(ctx, "main: close firestore client", "error", err)
		}
	}()

	storage, err := storage.NewGRPCClient(ctx)
	if err != nil {
		return fmt.Errorf("main: create storage client: %w", err)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			slog.ErrorContext(ctx, "main: close storage client", "error", err)
		}
	}()
	imagesBucket := conf.Images.Bucket
	if imagesBucket == "" {
		imagesBucket = conf.Google.Project + "-public"
	}

	genAI, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		Project: conf.Google.Project,
	})
	if err != nil {
		return fmt.Errorf("main: creating genai client: %w", err)
	}

	store := recipedb.NewStore(firestore)
	locks := joblock.NewManager(firestore, conf.Images.LeaseTTL, conf.Images.RegenLimit)
	imageWriter := images.NewWriter(file.NewWriter(storage, imagesBucket))
	runner := imagegen.NewRunner(genAI.Models, genAI.Models, imageWriter, store, imagegen.Config{
		ImageModel:    conf.Models.Image,
		ValidateModel: conf.Models.Validate,
	})
	extractor := extract.NewExtractor(genAI.Models, conf.Models.Classify)

	w := watcher.NewWatcher(store, locks, runner, conf.Images.ReapInterval)
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go func() {
		if err := w.Run(watchCtx); err != nil {
			slog.ErrorContext(watchCtx, "main: recipe watcher stopped", "error", err)
		}
	}()
	go w.RunReaper(watchCtx)

	fbMW := firebaseauth.NewMiddleware(fbAuth)
	mux.Use(middleware.Maybe(fbMW, func(r *http.Request) bool {
		return strings.HasPrefix(r.URL.Path, "/api/regenerate-image")
	}))

	mux.Method(http.MethodPost, "/api/process-recipe", processrecipe.NewHandler(extractor))
	mux.Method(http.MethodPost, "/api/regenerate-image",
		regenerateimage.NewHandler(store, locks, conf.Images.PlaceholderURL))

	if err := server.Start(ctx, s); err != nil {
		return fmt.Errorf("main: starting server: %w", err)
	}
	return nil
}
