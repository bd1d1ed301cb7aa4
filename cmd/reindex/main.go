/*
Reindex is a one-off maintenance job that rebuilds the search index of every stored
artwork from its current title, description and tags.

Usage:

	reindex [flags]

The job is idempotent: re-running it against unchanged artworks rewrites identical
index rows. Per-artwork failures are logged and skipped; the run reports how many
artworks were updated.

Return values (exit codes):

	0
		The run completed, possibly with skipped artworks (reported in the logs)

	> 0
		The run aborted due to an error
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/artistry/webapi/pkg/search"
	"github.com/artistry/webapi/pkg/storage/sqlite"
	"github.com/ardanlabs/conf"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

type configuration struct {
	Debug bool `conf:"default:false"`
	DB    struct {
		Filename string `conf:"default:artistry.db"`
	}
}

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error: ", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg configuration
	if err := conf.Parse(os.Args[1:], "ARTISTRY", &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, usageErr := conf.Usage("ARTISTRY", &cfg)
			if usageErr != nil {
				return fmt.Errorf("generating config usage: %w", usageErr)
			}
			fmt.Println(usage)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	storage, err := sqlite.New(logger, cfg.DB.Filename)
	if err != nil {
		return fmt.Errorf("error while initialising storage: %w", err)
	}
	defer func() { _ = storage.Close() }()

	// interrupts stop the run between artworks, never halfway through one
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reindexer = search.Reindexer{Connection: storage.Connection, Logger: logger}
	report, err := reindexer.Run(ctx)
	if err != nil {
		return fmt.Errorf("reindexing artworks: %w", err)
	}

	logger.Infof("reindex run complete: %d updated, %d failed", report.Updated, report.Failed)
	return nil
}
