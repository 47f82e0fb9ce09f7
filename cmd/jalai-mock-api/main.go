// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Jalai-mock-api is an in-memory stand-in for the JALAI backend. It
// serves the REST API under /api with seeded accounts (password
// "Password123"):
//
//   - admin@jalai.org: administrator
//   - client@jalai.org: client
//   - hope@jalai.org: approved orphanage
//   - sunrise@jalai.org: orphanage awaiting approval
//
// State is lost on exit. Point the client at it with
// JALAI_API_URL=http://127.0.0.1:8080/api.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/jalai-group/jalai/cmd/jalai/cli"
	"github.com/jalai-group/jalai/internal/mockapi"
	"github.com/jalai-group/jalai/lib/process"
	"github.com/jalai-group/jalai/lib/service"
	"github.com/jalai-group/jalai/lib/version"
)

type options struct {
	Address    string        `flag:"address"     env:"JALAI_MOCK_ADDRESS" default:"127.0.0.1:8080" desc:"TCP listen address"`
	AccessTTL  time.Duration `flag:"access-ttl"  default:"15m"  desc:"access token lifetime"`
	RefreshTTL time.Duration `flag:"refresh-ttl" default:"168h" desc:"refresh token lifetime"`
	Secret     string        `flag:"secret"      env:"JALAI_MOCK_SECRET" desc:"JWT signing secret (random when empty)"`
	Empty      bool          `flag:"empty"       desc:"start without seed data"`
	Verbose    bool          `flag:"verbose,v"   desc:"log every request at debug level"`
	Version    bool          `flag:"version"     desc:"print version information and exit"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	var opts options
	flagSet := cli.FlagsFromParams("jalai-mock-api", &opts)
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return cli.Validation("%w", err)
	}
	if opts.Version {
		fmt.Printf("jalai-mock-api %s\n", version.Full())
		return nil
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(cli.CommandHandler(level))

	var secret []byte
	if opts.Secret != "" {
		secret = []byte(opts.Secret)
	}

	server, err := mockapi.New(mockapi.Options{
		Logger:     logger,
		Secret:     secret,
		AccessTTL:  opts.AccessTTL,
		RefreshTTL: opts.RefreshTTL,
		Empty:      opts.Empty,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := service.NewHTTPServer(service.HTTPServerConfig{
		Address:         opts.Address,
		Handler:         server,
		ShutdownTimeout: 5 * time.Second,
		Logger:          logger,
	})
	go func() {
		select {
		case <-httpServer.Ready():
			logger.Info("mock backend listening",
				"url", httpServer.URL()+"/api",
				"version", version.Info(),
				"seeded", !opts.Empty,
			)
		case <-ctx.Done():
		}
	}()
	return httpServer.Serve(ctx)
}
