package search

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Reindexer rebuilds the search index of every stored artwork from its current
// title, description and tags. Used by the one-off backfill job after index rule
// changes, and safe to re-run: unchanged inputs yield identical index rows.
type Reindexer struct {
	Connection *sql.DB
	Logger     logrus.FieldLogger
}

// Report tallies a single reindex run.
type Report struct {
	Updated int
	Failed  int
}

type artworkInputs struct {
	id          string
	title       string
	description string
	tags        []string
}

// Run recomputes and rewrites the index of each artwork in turn. Individual failures
// are logged and skipped rather than aborting the batch; the run isn't transactional
// across records, so a partial failure leaves earlier artworks updated.
func (r *Reindexer) Run(ctx context.Context) (report Report, err error) {

	artworks, err := r.collectArtworks(ctx)
	if err != nil {
		return report, fmt.Errorf("collecting artworks to reindex: %w", err)
	}

	for _, artwork := range artworks {
		if err = ctx.Err(); err != nil {
			return report, err
		}
		if err = r.reindexArtwork(ctx, artwork); err != nil {
			r.Logger.WithError(err).Warningf("couldn't reindex artwork %s", artwork.id)
			report.Failed++
			continue
		}
		report.Updated++
	}

	r.Logger.Infof("search index updated for %d artworks, %d failures", report.Updated, report.Failed)
	return report, nil
}

func (r *Reindexer) collectArtworks(ctx context.Context) ([]artworkInputs, error) {
	rows, err := r.Connection.QueryContext(ctx, `
		SELECT id, title, coalesce(description, '') FROM artworks ORDER BY added`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var artworks = make([]artworkInputs, 0)
	for rows.Next() {
		var artwork artworkInputs
		if err = rows.Scan(&artwork.id, &artwork.title, &artwork.description); err != nil {
			return nil, err
		}
		artworks = append(artworks, artwork)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	// fetch tags separately to avoid group concatenation quirks
	for i := range artworks {
		if artworks[i].tags, err = r.collectTags(ctx, artworks[i].id); err != nil {
			return nil, err
		}
	}
	return artworks, nil
}

func (r *Reindexer) collectTags(ctx context.Context, artworkId string) ([]string, error) {
	rows, err := r.Connection.QueryContext(ctx, `
		SELECT tag FROM artwork_tags WHERE artwork = ? ORDER BY position`, artworkId)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tags = make([]string, 0)
	var tag string
	for rows.Next() {
		if err = rows.Scan(&tag); err != nil {
			return tags, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// reindexArtwork replaces the artwork's index rows wholesale within one transaction;
// the index is always recomputed from scratch, never patched.
func (r *Reindexer) reindexArtwork(ctx context.Context, artwork artworkInputs) error {
	tx, err := r.Connection.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// rolling back after a transaction commit results in a safe NOP
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM search_index WHERE artwork = ?`, artwork.id); err != nil {
		return err
	}

	for _, token := range BuildIndex(artwork.title, artwork.description, artwork.tags) {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO search_index (artwork, token) VALUES (?, ?)`, artwork.id, token); err != nil {
			return err
		}
	}

	return tx.Commit()
}
