// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

type fakeFiles struct {
	contentType string
	data        []byte
}

func (f *fakeFiles) WriteFile(_ context.Context, _ string, contentType string, data []byte) (string, error) {
	f.contentType = contentType
	f.data = data
	return "https://example.com/i.jpg", nil
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

func TestWriteImageResizesToSquare(t *testing.T) {
	files := &fakeFiles{}
	w := &Writer{files: files}

	url, err := w.WriteImage(context.Background(), "recipes/u/r/ai_1.jpg", "image/png", encodePNG(t, 1024, 768))
	if err != nil {
		t.Fatalf("WriteImage error: %v", err)
	}
	if url != "https://example.com/i.jpg" {
		t.Errorf("url = %q", url)
	}
	if files.contentType != "image/jpeg" {
		t.Errorf("content type = %q, want image/jpeg", files.contentType)
	}

	out, err := jpeg.Decode(bytes.NewReader(files.data))
	if err != nil {
		t.Fatalf("decoding uploaded jpeg: %v", err)
	}
	if b := out.Bounds(); b.Dx() != Side || b.Dy() != Side {
		t.Errorf("uploaded image is %dx%d, want %dx%d", b.Dx(), b.Dy(), Side, Side)
	}
}

func TestWriteImageUnsupportedMIME(t *testing.T) {
	w := &Writer{files: &fakeFiles{}}
	if _, err := w.WriteImage(context.Background(), "p", "image/webp", []byte{1, 2, 3}); err == nil {
		t.Error("WriteImage should reject unsupported mime types")
	}
}

func TestWriteImageBadData(t *testing.T) {
	w := &Writer{files: &fakeFiles{}}
	if _, err := w.WriteImage(context.Background(), "p", "image/jpeg", []byte("not an image")); err == nil {
		t.Error("WriteImage should fail on undecodable data")
	}
}
