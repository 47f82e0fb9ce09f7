// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/cmd/jalai/cli"
	"github.com/jalai-group/jalai/form"
	"github.com/jalai-group/jalai/lib/cache"
	"github.com/jalai-group/jalai/lib/clock"
	"github.com/jalai-group/jalai/lib/config"
	"github.com/jalai-group/jalai/lib/sealed"
	"github.com/jalai-group/jalai/lib/tui"
	"github.com/jalai-group/jalai/lib/version"
	"github.com/jalai-group/jalai/lib/wizardui"
	"github.com/jalai-group/jalai/session"
	"github.com/jalai-group/jalai/view"
)

// Globals are the flags every command accepts.
type Globals struct {
	Config  string `flag:"config"     env:"JALAI_CONFIG" desc:"path to the YAML configuration file"`
	Verbose bool   `flag:"verbose,v"  desc:"log debug output to stderr"`
	NoColor bool   `flag:"no-color"   desc:"disable colored output (also NO_COLOR)"`
}

// Streams are the terminal streams commands read from and write to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StandardStreams are the process's stdin, stdout and stderr.
func StandardStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// App is the wired client state shared by a single command run.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Client   *api.Client
	Session  *session.Store
	Storage  session.Storage
	DebugLog *session.DebugLog
	Cache    *cache.Cache
	Streams  Streams

	// Status carries log records to the wizard's status line while one
	// is running.
	Status *wizardui.StatusHandler

	// Color enables ANSI styling on Streams.Out.
	Color bool
	Width int
}

// Open loads configuration, restores the persisted session and wires
// the API client. The caller must Close the App.
func Open(globals Globals, streams Streams, base *slog.Logger) (*App, error) {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return nil, cli.Validation("%w", err)
	}

	storage, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}
	debugLog := session.NewDebugLog(session.NewFileStorage(cfg.RuntimeStatePath()), clock.Real())
	status := wizardui.NewStatusHandler(base.Handler(), slog.LevelWarn)
	logger := slog.New(session.NewDebugLogHandler(status, debugLog, slog.LevelInfo))

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Storage:  storage,
		DebugLog: debugLog,
		Streams:  streams,
		Status:   status,
		Color:    !globals.NoColor && os.Getenv("NO_COLOR") == "" && cli.IsTerminal(streams.Out),
		Width:    80,
	}
	if cli.IsTerminal(streams.Out) {
		app.Width = cli.TerminalWidth(80)
	}

	if cfg.CacheEnabled() {
		app.Cache = cache.New(cache.Options{
			DefaultTTL:   cfg.CacheTTL(),
			Logger:       logger,
			SnapshotPath: filepath.Join(cfg.Paths.Cache, "responses.snapshot"),
			KeyPath:      filepath.Join(cfg.Paths.Cache, "snapshot.key"),
		})
	}

	// The store does not exist yet when the client is built; the hook
	// only runs after a request, by which time it does.
	client, err := api.NewClient(api.ClientConfig{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout()},
		Logger:     logger,
		Tokens:     session.NewCredentials(storage, logger),
		Cache:      app.Cache,
		CacheTTL:   cfg.CacheTTL(),
		OnSessionExpired: func() {
			if app.Session != nil {
				app.Session.HandleSessionExpired()
			}
		},
		UserAgent: version.UserAgent("jalai"),
	})
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	app.Client = client

	app.Session = session.NewStore(client, storage, logger)
	if err := app.Session.Initialize(); err != nil {
		if !errors.Is(err, session.ErrCorruptSession) {
			return nil, cli.Internal("restoring session: %w", err)
		}
		logger.Warn("discarded corrupt session, please log in again", "path", cfg.SessionPath())
	}

	if app.Cache != nil {
		app.Cache.SetScope(cacheScope(app.Session))
		if restored, err := app.Cache.Load(); err != nil {
			logger.Warn("loading response cache", "error", err)
		} else {
			logger.Debug("response cache restored", "entries", restored)
		}
		app.Session.OnChange(func(user *api.User) {
			if user == nil {
				app.Cache.SetScope("")
				return
			}
			app.Cache.SetScope(user.ID)
		})
	}
	return app, nil
}

func openStorage(cfg *config.Config) (*session.FileStorage, error) {
	if !cfg.Session.Seal {
		return session.NewFileStorage(cfg.SessionPath()), nil
	}
	keypair, err := sealed.LoadOrCreateIdentity(cfg.IdentityPath())
	if err != nil {
		return nil, cli.Internal("loading session identity: %w", err)
	}
	return session.NewSealedFileStorage(cfg.SessionPath(), keypair), nil
}

func cacheScope(store *session.Store) string {
	if user, ok := store.User(); ok {
		return user.ID
	}
	return ""
}

// Close persists the response cache.
func (a *App) Close() {
	if a.Cache == nil {
		return
	}
	pruned := a.Cache.Prune()
	if err := a.Cache.Save(); err != nil {
		a.Logger.Warn("saving response cache", "error", err)
		return
	}
	a.Logger.Debug("response cache saved", "pruned", pruned, "entries", a.Cache.Stats().Entries)
}

// Renderer returns a view renderer sized for Streams.Out.
func (a *App) Renderer() view.Renderer {
	return view.Renderer{Theme: tui.DefaultTheme, Width: a.Width}
}

// Printf writes to Streams.Out.
func (a *App) Printf(format string, args ...any) {
	fmt.Fprintf(a.Streams.Out, format, args...)
}

// Println writes to Streams.Out.
func (a *App) Println(args ...any) {
	fmt.Fprintln(a.Streams.Out, args...)
}

// Classify maps an error from the API, session, view or form layers to
// a categorized command error. Errors that are already categorized pass
// through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var toolError *cli.ToolError
	var exitError *cli.ExitError
	if errors.As(err, &toolError) || errors.As(err, &exitError) {
		return err
	}

	var apiError *api.Error
	var validationError *form.ValidationError
	switch {
	case errors.Is(err, wizardui.ErrAborted):
		return &cli.ExitError{Code: 130}
	case errors.Is(err, api.ErrSessionExpired):
		return cli.Unauthorized("%w (run 'jalai login')", err)
	case errors.Is(err, api.ErrNetwork):
		return &cli.ToolError{Category: cli.CategoryTransient, Err: detailError{detail: session.Describe(err), err: err}}
	case errors.Is(err, view.ErrPendingApproval):
		return cli.Forbidden("%w", err)
	case errors.Is(err, view.ErrNotReady):
		return cli.Internal("%w", err)
	case errors.Is(err, view.ErrDenied):
		return classifyDenied(err)
	case errors.As(err, &validationError), errors.Is(err, api.ErrInvalidImage):
		return cli.Validation("%w", err)
	case errors.As(err, &apiError):
		return classifyStatus(apiError, err)
	case errors.Is(err, context.Canceled):
		return &cli.ExitError{Code: 130}
	default:
		return cli.Internal("%w", err)
	}
}

func classifyDenied(err error) error {
	if errors.Is(err, errNotLoggedIn) {
		return cli.Unauthorized("%w", err)
	}
	return cli.Forbidden("%w", err)
}

func classifyStatus(apiError *api.Error, err error) error {
	switch status := apiError.StatusCode; {
	case status == http.StatusBadRequest || status == http.StatusRequestEntityTooLarge:
		return &cli.ToolError{Category: cli.CategoryValidation, Err: detailError{detail: apiError.Detail(), err: err}}
	case status == http.StatusUnauthorized:
		return cli.Unauthorized("%w", err)
	case status == http.StatusForbidden:
		return cli.Forbidden("%w", err)
	case status == http.StatusNotFound:
		return cli.NotFound("%w", err)
	case status == http.StatusConflict:
		return cli.Conflict("%w", err)
	case status >= 500:
		return cli.Transient("server error: %w", err)
	default:
		return cli.Internal("%w", err)
	}
}

// detailError replaces the message of err while keeping its chain
// reachable through errors.Is and errors.As.
type detailError struct {
	detail string
	err    error
}

func (e detailError) Error() string { return e.detail }
func (e detailError) Unwrap() error { return e.err }

// errNotLoggedIn marks a denial caused by a missing session rather
// than a role mismatch.
var errNotLoggedIn = errors.New("not logged in")

// gate evaluates g and returns nil when authorized, or the denial as a
// classified error.
func (a *App) gate(g view.Gate) (view.Decision, error) {
	decision := g.Evaluate(a.Session)
	err := decision.Err()
	if err == nil {
		return decision, nil
	}
	if decision.State == view.StateDenied && decision.Redirect == view.RedirectLogin {
		err = fmt.Errorf("%w: %w", err, errNotLoggedIn)
	}
	return decision, Classify(err)
}

// recheck re-reads the persisted session, which another jalai process
// may have changed while a wizard was open, and requires that want is
// still the signed-in user and still passes g.
func (a *App) recheck(g view.Gate, want api.User) error {
	if err := a.Session.Resync(); err != nil {
		if !errors.Is(err, session.ErrCorruptSession) {
			return cli.Internal("re-reading session: %w", err)
		}
		a.Logger.Warn("discarded corrupt session, please log in again", "error", err)
	}
	decision, err := a.gate(g)
	if err != nil {
		return err
	}
	if decision.User.ID != want.ID {
		return cli.Conflict("signed-in account changed to %s while the form was open (was %s)",
			decision.User.Email, want.Email)
	}
	return nil
}

// requireUser returns the signed-in user or an Unauthorized error.
func (a *App) requireUser() (api.User, error) {
	user, ok := a.Session.User()
	if !ok {
		return api.User{}, cli.Unauthorized("not logged in (run 'jalai login')")
	}
	return user, nil
}
