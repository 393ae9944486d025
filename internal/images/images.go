// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/curioswitch/recetta/internal/file"
)

const (
	// Side is the edge length of stored images in pixels.
	Side = 512

	jpegQuality = 80
)

// FileWriter uploads a file and returns its download URL.
type FileWriter interface {
	WriteFile(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// NewWriter returns a Writer uploading re-encoded images through files.
func NewWriter(files *file.Writer) *Writer {
	return &Writer{files: files}
}

// Writer normalizes generated images to square 512px JPEG before upload.
// Model output dimensions and format vary by model version, normalizing
// here keeps clients and storage costs stable.
type Writer struct {
	files FileWriter
}

// WriteImage re-encodes data as a Side x Side JPEG and uploads it to
// path, returning the download URL.
func (w *Writer) WriteImage(ctx context.Context, path string, mimeType string, data []byte) (string, error) {
	var img image.Image
	var err error
	switch mimeType {
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	default:
		return "", fmt.Errorf("images: unsupported mime type %s", mimeType)
	}
	if err != nil {
		return "", fmt.Errorf("images: decoding image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaleSquare(img), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("images: encoding jpeg: %w", err)
	}

	url, err := w.files.WriteFile(ctx, path, "image/jpeg", buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("images: writing image file: %w", err)
	}
	return url, nil
}

// scaleSquare center-crops img to a square and scales it to Side pixels.
func scaleSquare(img image.Image) image.Image {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	crop := image.Rect(0, 0, side, side).
		Add(image.Pt(b.Min.X+(b.Dx()-side)/2, b.Min.Y+(b.Dy()-side)/2))

	dst := image.NewRGBA(image.Rect(0, 0, Side, Side))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Src, nil)
	return dst
}
