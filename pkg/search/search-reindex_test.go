package search

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/artistry/webapi/pkg/storage/sqlite"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestConnection(t *testing.T) *sql.DB {
	t.Helper()
	storage, err := sqlite.New(logrus.New(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return storage.Connection
}

func seedArtwork(t *testing.T, connection *sql.DB, id, title, description string, tags []string) {
	t.Helper()
	_, err := connection.Exec(`
		INSERT INTO artworks (id, title, description, picture_url, author_id, added, updated)
		VALUES (?, ?, ?, 'https://cdn.example.org/img.jpg', 'author', datetime('now'), datetime('now'))`,
		id, title, description)
	require.NoError(t, err)

	for position, tag := range tags {
		_, err = connection.Exec(`INSERT INTO artwork_tags (artwork, position, tag) VALUES (?, ?, ?)`,
			id, position, tag)
		require.NoError(t, err)
	}
}

func readIndex(t *testing.T, connection *sql.DB, artworkId string) []string {
	t.Helper()
	rows, err := connection.Query(`SELECT token FROM search_index WHERE artwork = ?`, artworkId)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var tokens []string
	var token string
	for rows.Next() {
		require.NoError(t, rows.Scan(&token))
		tokens = append(tokens, token)
	}
	require.NoError(t, rows.Err())
	sort.Strings(tokens)
	return tokens
}

func TestReindexerRebuildsStaleIndexes(t *testing.T) {
	connection := newTestConnection(t)

	// seed the author row the artworks reference
	_, err := connection.Exec(`
		INSERT INTO users (id, alias, name, email, password, created, updated)
		VALUES ('author', 'vermeer', 'Johannes', 'j@delft.example', 'x', datetime('now'), datetime('now'))`)
	require.NoError(t, err)

	seedArtwork(t, connection, "first", "Girl with Pearl", "oil portrait", []string{"dutch golden age"})
	seedArtwork(t, connection, "second", "View of Delft", "", nil)

	// a stale token that no longer derives from the record's fields
	_, err = connection.Exec(`INSERT INTO search_index (artwork, token) VALUES ('first', 'obsolete')`)
	require.NoError(t, err)

	reindexer := Reindexer{Connection: connection, Logger: logrus.New()}
	report, err := reindexer.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.Updated)
	require.Equal(t, 0, report.Failed)

	require.Equal(t,
		[]string{"dutch golden age", "girl", "oil", "pearl", "portrait", "with"},
		readIndex(t, connection, "first"))
	require.Equal(t,
		[]string{"delft", "of", "view"},
		readIndex(t, connection, "second"))
}

func TestReindexerIsIdempotent(t *testing.T) {
	connection := newTestConnection(t)

	_, err := connection.Exec(`
		INSERT INTO users (id, alias, name, email, password, created, updated)
		VALUES ('author', 'vermeer', 'Johannes', 'j@delft.example', 'x', datetime('now'), datetime('now'))`)
	require.NoError(t, err)

	seedArtwork(t, connection, "first", "The Milkmaid", "quiet kitchen scene", []string{"genre painting"})

	reindexer := Reindexer{Connection: connection, Logger: logrus.New()}

	_, err = reindexer.Run(context.Background())
	require.NoError(t, err)
	firstRun := readIndex(t, connection, "first")

	// the second run rewrites identical rows: no observable change
	report, err := reindexer.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)
	require.Equal(t, firstRun, readIndex(t, connection, "first"))
}
