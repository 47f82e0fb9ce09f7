// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/zeebo/blake3"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadImage(t *testing.T) {
	image := append(append([]byte(nil), pngHeader...), bytes.Repeat([]byte{7}, 64)...)
	sum := blake3.Sum256(image)
	wantDigest := hex.EncodeToString(sum[:])

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/images/upload" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Content-Digest"); got != "blake3="+wantDigest {
			t.Errorf("digest header = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		received, _ := io.ReadAll(file)
		if !bytes.Equal(received, image) || header.Filename != "shoes.png" {
			t.Errorf("received %d bytes named %q", len(received), header.Filename)
		}
		writeJSON(w, http.StatusOK, map[string]any{"imageId": "img-42", "filename": header.Filename, "size": len(received), "contentType": "image/png"})
	}), Credentials{AccessToken: "a", RefreshToken: "r"})

	upload, err := client.UploadImage(context.Background(), "/tmp/photos/shoes.png", bytes.NewReader(image))
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if upload.ImageID != "img-42" || upload.Digest != wantDigest {
		t.Errorf("upload = %+v", upload)
	}
	if got := client.ImageURL("img-42"); !strings.HasSuffix(got, "/api/images/img-42") {
		t.Errorf("ImageURL = %q", got)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler(), Credentials{})
	if _, err := client.UploadImage(context.Background(), "notes.txt", strings.NewReader("just text")); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestUploadRejectsOversize(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler(), Credentials{})
	oversize := io.MultiReader(bytes.NewReader(pngHeader), bytes.NewReader(make([]byte, MaxImageSize)))
	if _, err := client.UploadImage(context.Background(), "big.png", oversize); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}
