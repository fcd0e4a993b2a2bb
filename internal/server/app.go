// Package server wires configuration, storage, the model ensemble and the
// HTTP API into a runnable application with graceful shutdown.
package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/vedant281104/AgriShield/internal/config"
	"github.com/vedant281104/AgriShield/internal/inference"
	"github.com/vedant281104/AgriShield/internal/logging"
	"github.com/vedant281104/AgriShield/internal/pest"
	"github.com/vedant281104/AgriShield/internal/server/httpapi"
	"github.com/vedant281104/AgriShield/internal/storage"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	syncLog   func() error
	db        *storage.DB
	loader    *inference.Loader
	http      *httpapi.Server
	runServer func(ctx context.Context) error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, syncLog, err := NewLogger(c, os.Stdout)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger, syncLog: syncLog}

	store, db, err := OpenCredentialStore(ctx, c)
	if err != nil {
		return nil, err
	}
	app.db = db

	app.loader = NewModelLoader(c, logger)
	clf, err := LoadClassifier(ctx, c, app.loader, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.http = httpapi.NewServer(store, clf, pest.DefaultCatalog(), logger, httpapi.Options{
		SecretKey:       []byte(c.SecretKey),
		TokenValidity:   c.AccessTokenValidityDuration,
		MaxUploadBytes:  c.MaxUploadBytes,
		ShutdownTimeout: c.ShutdownTimeout,
	})
	app.runServer = func(ctx context.Context) error {
		return app.http.Run(ctx, c.HTTPAddr)
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	err := app.runServer(ctx)
	if err != nil {
		app.logger.Error(ctx, err.Error())
	}
	cancelFunc()
	return err
}

// Run serves until SIGINT/SIGTERM/SIGQUIT or until ctx is cancelled, then
// releases the database and model connections.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return errors.Join(runErr, app.Close())
}

// Close releases everything NewApp opened. It is safe to call more than once.
func (app *App) Close() error {
	var errs []error
	if app.loader != nil {
		errs = append(errs, app.loader.Close())
		app.loader = nil
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
		app.db = nil
	}
	if app.syncLog != nil {
		_ = app.syncLog()
	}
	return errors.Join(errs...)
}
