/*
Webapi is the executable for the main web server.
It connects to the external resources needed (database) and serves the Artistry
social portfolio APIs: accounts, sessions, artworks, comments, likes, search,
donations and live count notifications.

Usage:

	webapi [flags]

Flags and configurations are handled automatically by the code in `load-configuration.go`.

Return values (exit codes):

	0
		The program ended successfully (no errors, stopped by signal)

	> 0
		The program ended due to an error

Note that this program will verify the schema of the database against the latest
version available (embedded in the executable during the build).
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/artistry/webapi/pkg/artworks"
	"github.com/artistry/webapi/pkg/auth"
	"github.com/artistry/webapi/pkg/live"
	"github.com/artistry/webapi/pkg/rest"
	"github.com/artistry/webapi/pkg/storage/sqlite"
	"github.com/artistry/webapi/pkg/users"
	"github.com/ardanlabs/conf"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// main is the program entry point. The only purpose of this function is to call run() and set the exit code if there is
// any error
func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error: ", err)
		os.Exit(1)
	}
}

// run executes the program. The body of this function should perform the following steps:
// * reads the configuration
// * creates and configure the logger
// * connects to any external resources (like databases)
// * registers the API handlers
// * starts the principal web server
// * waits for any termination event: SIGTERM signal (UNIX), non-recoverable server error, etc.
// * closes the principal web server
func run() error {
	// Load Configuration and defaults
	cfg, err := loadConfiguration()
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil
		}
		return err
	}

	// Init logging
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	logger.Infof("application initializing")

	// initialise database before registering handlers for an immediate exit in case of issues
	storage, err := sqlite.New(logger, cfg.DB.Filename)
	if err != nil {
		logger.WithError(err).Error("error initialising storage")
		return fmt.Errorf("error while initialising storage: %w", err)
	}
	defer func() { _ = storage.Close() }()

	// Start (main) API server
	logger.Info("initializing API server")

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	e, err := rest.New(rest.Config{
		Logger: logger,
	})
	if err != nil {
		logger.WithError(err).Error("error creating the API server instance")
		return fmt.Errorf("creating the API server instance: %w", err)
	}

	// tag and log every request
	e.Use(rest.RequestLogger(logger))

	// setup handlers
	var notary = auth.NewNotary(cfg.Auth.TokenSecret, cfg.Auth.TokenDuration)
	var usersRepository = users.NewRepository(storage.Connection)
	var artworksStore = artworks.NewStore(storage.Connection)
	var hub = live.NewHub(16)

	auth.RegisterHandlers(e, notary, usersRepository)
	users.RegisterHandlers(e, usersRepository, notary)
	artworks.RegisterHandlers(e, artworksStore, usersRepository, notary, hub)
	live.RegisterHandlers(e, hub, artworksStore)

	// Apply CORS policy
	handler := applyCORSHandler(e.Handler())

	// create the API server; no write timeout, which would sever the long lived
	// websocket connections serving live count notifications
	server := http.Server{
		Addr:              cfg.Web.APIHost,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Web.ReadTimeout,
	}

	// Start the service listening for requests in a separate goroutine
	go func() {
		logger.Infof("API listening on %s", server.Addr)
		serverErrors <- server.ListenAndServe()
		logger.Infof("stopping API server")
	}()

	// Waiting for shutdown signal or POSIX signals
	select {
	case err := <-serverErrors:
		// Non-recoverable server error
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("signal %v received, start shutdown", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and load shed.
		err = server.Shutdown(ctx)
		if err != nil {
			logger.WithError(err).Warning("error during graceful shutdown of HTTP server")
			err = server.Close()
		}

		if err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
