// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jalai-group/jalai/lib/testutil"
)

func TestHTTPServerLifecycle(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
		fmt.Fprintf(writer, "ok")
	})

	server := NewHTTPServer(HTTPServerConfig{
		Address:         "127.0.0.1:0",
		Handler:         handler,
		ShutdownTimeout: 2 * time.Second,
		Logger:          logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(ctx)
	}()

	testutil.Closed(t, server.Ready(), 5*time.Second, "server ready")

	response, err := http.Get(server.URL() + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", response.StatusCode)
	}
	responseBody, _ := io.ReadAll(response.Body)
	if string(responseBody) != "ok" {
		t.Errorf("body = %q, want %q", responseBody, "ok")
	}

	cancel()

	if err := testutil.Receive(t, serveDone, 5*time.Second, "server shutdown"); err != nil {
		t.Errorf("Serve() = %v, want nil", err)
	}
}

func TestHTTPServerPanicsOnMissingConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	tests := []struct {
		name   string
		config HTTPServerConfig
	}{
		{
			name:   "missing_address",
			config: HTTPServerConfig{Handler: handler, Logger: logger},
		},
		{
			name:   "missing_handler",
			config: HTTPServerConfig{Address: ":0", Logger: logger},
		},
		{
			name:   "missing_logger",
			config: HTTPServerConfig{Address: ":0", Handler: handler},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("NewHTTPServer did not panic")
				}
			}()
			NewHTTPServer(tt.config)
		})
	}
}

func TestRecoverAnswersJSON500(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), slog.New(slog.DiscardHandler))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", recorder.Code)
	}
	var body struct {
		Message string `json:"message"`
		Path    string `json:"path"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Message != "Internal server error" || body.Path != "/api/products" {
		t.Errorf("body = %+v", body)
	}
}
