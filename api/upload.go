// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// MaxImageSize is the backend's upload limit: 5 MB.
const MaxImageSize = 5 << 20

// ErrInvalidImage is returned by UploadImage for data the backend would
// refuse: empty, over MaxImageSize, or not an image.
var ErrInvalidImage = errors.New("invalid image")

// Upload is the result of UploadImage.
type Upload struct {
	ImageID     string `json:"imageId"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	// Digest is the hex BLAKE3-256 of the uploaded bytes.
	Digest string `json:"-"`
}

// UploadImage sends an image as multipart/form-data field "file" to
// /images/upload. The content digest is sent as X-Content-Digest.
func (c *Client) UploadImage(ctx context.Context, filename string, reader io.Reader) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(reader, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidImage, filename)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidImage, filename, MaxImageSize)
	}
	contentType := http.DetectContentType(data)
	if len(contentType) < 6 || contentType[:6] != "image/" {
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidImage, filename, contentType)
	}

	digest := blake3.Sum256(data)
	digestHex := hex.EncodeToString(digest[:])

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	partHeader.Set("Content-Type", contentType)
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}

	req := &request{
		method:        http.MethodPost,
		path:          "/images/upload",
		body:          body.Bytes(),
		contentType:   writer.FormDataContentType(),
		header:        http.Header{"X-Content-Digest": {"blake3=" + digestHex}},
		authenticated: true,
	}
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	var upload Upload
	if err := json.Unmarshal(resp.body, &upload); err != nil || upload.ImageID == "" {
		return nil, &DecodeError{Method: req.method, Path: req.path, Reason: "upload response has no imageId", Err: err}
	}
	upload.Digest = digestHex
	return &upload, nil
}

// ImageURL resolves an image ID to its download URL.
func (c *Client) ImageURL(imageID string) string {
	return c.baseURL + "/images/" + url.PathEscape(imageID)
}
