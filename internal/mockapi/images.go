// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package mockapi

import (
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/zeebo/blake3"

	"github.com/jalai-group/jalai/api"
)

func (s *Server) imageRoutes(r *mux.Router) {
	r.HandleFunc("/images/upload", s.protect(s.handleUpload)).Methods(http.MethodPost)
	r.HandleFunc("/images/{id}", s.handleGetImage).Methods(http.MethodGet)
}

// handleUpload accepts one image in multipart field "file". When the
// client sends X-Content-Digest the BLAKE3 digest must match.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, caller api.User) {
	// Leave room for the multipart framing around a maximum-size file.
	r.Body = http.MaxBytesReader(w, r.Body, api.MaxImageSize+64<<10)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "File size exceeds 5MB")
			return
		}
		writeError(w, r, http.StatusBadRequest, "Multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, api.MaxImageSize+1))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Reading upload: "+err.Error())
		return
	}
	switch {
	case len(data) == 0:
		writeError(w, r, http.StatusBadRequest, "File is empty")
		return
	case len(data) > api.MaxImageSize:
		writeError(w, r, http.StatusRequestEntityTooLarge, "File size exceeds 5MB")
		return
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, r, http.StatusBadRequest, "Only image files are allowed")
		return
	}
	if claimed := r.Header.Get("X-Content-Digest"); claimed != "" {
		digest := blake3.Sum256(data)
		if !strings.EqualFold(strings.TrimPrefix(claimed, "blake3="), hex.EncodeToString(digest[:])) {
			writeError(w, r, http.StatusBadRequest, "Content digest mismatch")
			return
		}
	}

	upload := api.Upload{
		ImageID:     newID(),
		Filename:    header.Filename,
		Size:        int64(len(data)),
		ContentType: contentType,
	}
	s.store.mu.Lock()
	s.store.images[upload.ImageID] = &image{upload: upload, data: data}
	s.store.mu.Unlock()
	s.logger.Info("image uploaded", "id", upload.ImageID, "size", upload.Size, "owner", caller.ID)
	writeJSON(w, http.StatusCreated, upload)
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	stored, ok := s.store.images[mux.Vars(r)["id"]]
	s.store.mu.Unlock()
	if !ok {
		writeError(w, r, http.StatusNotFound, "Image not found")
		return
	}
	w.Header().Set("Content-Type", stored.upload.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(stored.data)))
	w.Write(stored.data)
}
