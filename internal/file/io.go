// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package file

import (
	"context"
	"fmt"
	"net/url"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// NewWriter returns a Writer uploading to the given bucket.
func NewWriter(client *storage.Client, bucket string) *Writer {
	return &Writer{
		storage: client,
		bucket:  bucket,
	}
}

// Writer uploads files to Cloud Storage and returns Firebase download
// URLs for them.
type Writer struct {
	storage *storage.Client
	bucket  string
}

// WriteFile uploads data to path and returns a tokenized download URL.
// Objects are treated as immutable, the path embeds a timestamp so a
// regenerated image never overwrites a previous one.
func (w *Writer) WriteFile(ctx context.Context, path string, contentType string, data []byte) (string, error) {
	token := uuid.NewString()

	wc := w.storage.Bucket(w.bucket).Object(path).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=31536000, immutable"
	wc.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := wc.Write(data); err != nil {
		return "", fmt.Errorf("file: writing object: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("file: closing object writer: %w", err)
	}

	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		w.bucket, url.PathEscape(path), token), nil
}
